// Package payment builds Click checkout URLs.
package payment

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidAmount is returned for a zero or negative amount. It indicates a
// configuration or programming defect, never user input.
var ErrInvalidAmount = errors.New("payment amount must be positive")

// Builder constructs provider checkout URLs from fixed merchant settings.
// Building a link is pure string work; no network calls are made.
type Builder struct {
	baseURL    string
	serviceID  string
	merchantID string
	returnURL  string
}

// Config holds the fixed Click merchant parameters.
type Config struct {
	BaseURL    string
	ServiceID  string
	MerchantID string
	ReturnURL  string
}

// NewBuilder creates a payment link builder.
func NewBuilder(cfg Config) *Builder {
	base := cfg.BaseURL
	if base == "" {
		base = "https://my.click.uz/services/pay/"
	}
	return &Builder{
		baseURL:    base,
		serviceID:  cfg.ServiceID,
		merchantID: cfg.MerchantID,
		returnURL:  cfg.ReturnURL,
	}
}

// Build returns the checkout URL for the given amount (minor currency units)
// and transaction reference. Identical inputs produce identical URLs.
func (b *Builder) Build(amount int64, transactionRef string) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	v := url.Values{}
	v.Set("service_id", b.serviceID)
	v.Set("merchant_id", b.merchantID)
	v.Set("amount", fmt.Sprintf("%d.00", amount))
	v.Set("transaction_param", transactionRef)
	v.Set("return_url", b.returnURL)

	return strings.TrimRight(b.baseURL, "?") + "?" + v.Encode(), nil
}

// BaseURL returns the provider base URL links are built on.
func (b *Builder) BaseURL() string {
	return b.baseURL
}
