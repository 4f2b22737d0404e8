package search

import (
	"fmt"
	"strings"

	"github.com/akmal-2004/easify-seller/internal/model"
)

// FormatForModel renders search results as structured lines the completion
// service can reason over. Prices stay in minor currency units; presentation
// formatting is left to the model.
func FormatForModel(result model.SearchResult) string {
	if len(result) == 0 {
		return "No bouquets found matching the criteria."
	}

	lines := make([]string, 0, len(result))
	for i, sp := range result {
		p := sp.Product
		lines = append(lines, fmt.Sprintf(
			"Product %d: %s | Description: %s | Price: %d %s | Photo: %s",
			i+1, p.Name, p.Description, p.Price, strings.ToLower(p.Currency), p.PhotoURL,
		))
	}
	return strings.Join(lines, "\n")
}
