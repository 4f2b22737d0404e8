package agent

import (
	"regexp"
	"strings"

	"github.com/akmal-2004/easify-seller/internal/model"
)

const maxReplyPhotos = 10

const payButtonLabel = "💳 Pay Now"

// render turns the final assistant reply into outbound channel events:
// photos for any catalog products the reply references, and an inline
// payment button when the reply carries a checkout link.
func (a *Agent) render(ex *exchange, reply string) []model.Outbound {
	paymentURL := a.extractPaymentURL(reply)

	var buttons []model.InlineButton
	if paymentURL != "" {
		buttons = []model.InlineButton{{Label: payButtonLabel, URL: paymentURL}}
	}

	var photos []string
	for _, p := range ex.products {
		if strings.Contains(reply, p.PhotoURL) {
			photos = append(photos, p.PhotoURL)
			if len(photos) == maxReplyPhotos {
				break
			}
		}
	}

	switch len(photos) {
	case 0:
		return []model.Outbound{{Text: reply, Buttons: buttons}}
	case 1:
		return []model.Outbound{{PhotoURL: photos[0], Caption: reply, Buttons: buttons}}
	default:
		out := make([]model.Outbound, 0, len(photos)+1)
		for i, url := range photos {
			o := model.Outbound{PhotoURL: url}
			if i == 0 {
				o.Caption = reply
			}
			out = append(out, o)
		}
		if paymentURL != "" {
			out = append(out, model.Outbound{
				Text:    "💳 Click the button below to complete your purchase:",
				Buttons: buttons,
			})
		}
		return out
	}
}

// extractPaymentURL finds the first checkout link built on the configured
// provider base URL.
func (a *Agent) extractPaymentURL(text string) string {
	return a.payURLPattern.FindString(text)
}

func payURLPattern(baseURL string) *regexp.Regexp {
	return regexp.MustCompile(
		regexp.QuoteMeta(strings.TrimRight(baseURL, "/?")) + `/?\?[^\s<>"]+`,
	)
}
