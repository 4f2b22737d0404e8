package payment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBuilder() *Builder {
	return NewBuilder(Config{
		BaseURL:    "https://my.click.uz/services/pay/",
		ServiceID:  "30067",
		MerchantID: "22535",
		ReturnURL:  "https://t.me/bot",
	})
}

func TestBuildContainsAllParameters(t *testing.T) {
	b := newTestBuilder()

	url, err := b.Build(850000, "165884")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://my.click.uz/services/pay/?"))
	assert.Contains(t, url, "amount=850000.00")
	assert.Contains(t, url, "transaction_param=165884")
	assert.Contains(t, url, "service_id=30067")
	assert.Contains(t, url, "merchant_id=22535")
	assert.Contains(t, url, "return_url=https%3A%2F%2Ft.me%2Fbot")
}

func TestBuildIsDeterministic(t *testing.T) {
	b := newTestBuilder()

	first, err := b.Build(120000, "ref-1")
	require.NoError(t, err)
	second, err := b.Build(120000, "ref-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildRejectsNonPositiveAmount(t *testing.T) {
	b := newTestBuilder()

	for _, amount := range []int64{0, -1, -850000} {
		_, err := b.Build(amount, "ref")
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %d", amount)
	}
}

func TestBuildDefaultBaseURL(t *testing.T) {
	b := NewBuilder(Config{ServiceID: "1", MerchantID: "2", ReturnURL: "https://t.me/bot"})

	url, err := b.Build(100, "r")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://my.click.uz/services/pay/?"))
}
