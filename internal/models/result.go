package models

// SearchResponse is the response for a catalog search.
// Products keep the catalog's relative order.
type SearchResponse struct {
	Query         string       `json:"query"`
	Mode          string       `json:"mode"`
	Parsed        *ParsedQuery `json:"parsed,omitempty"`
	Understanding string       `json:"understanding,omitempty"`
	Products      []*Product   `json:"products"`
	Total         int          `json:"total"`
	CatalogSize   int          `json:"catalog_size"`
	QueryTime     int64        `json:"query_time_ms"`
}

// ParseResponse is the response for a parse-only request.
type ParseResponse struct {
	Parsed        *ParsedQuery `json:"parsed"`
	Understanding string       `json:"understanding"`
}
