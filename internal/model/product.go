package model

// Product is a catalog record. The bot only reads products; the catalog
// is maintained by a separate ingestion pipeline.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Price in minor currency units.
	Price    int64  `json:"price"`
	Currency string `json:"currency"`

	PhotoURL string `json:"photo_url"`
}

// ScoredProduct pairs a product with its similarity to the query vector.
type ScoredProduct struct {
	Product Product `json:"product"`
	Score   float64 `json:"score"`
}

// SearchResult is a ranked sequence of scored products, best match first.
type SearchResult []ScoredProduct
