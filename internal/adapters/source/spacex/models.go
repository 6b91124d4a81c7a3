package spacex

import (
	"github.com/shopspring/decimal"
)

// query is the mongoose-paginate body accepted by the /query endpoints
type query struct {
	Query   map[string]any `json:"query"`
	Options queryOptions   `json:"options"`
}

type queryOptions struct {
	Sort       map[string]int `json:"sort,omitempty"`
	Select     map[string]int `json:"select,omitempty"`
	Limit      int            `json:"limit,omitempty"`
	Page       int            `json:"page,omitempty"`
	Pagination *bool          `json:"pagination,omitempty"`
}

// page is the paginated response envelope
type page[T any] struct {
	Docs        []T  `json:"docs"`
	TotalDocs   int  `json:"totalDocs"`
	Page        int  `json:"page"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
}

// payload is the subset of /payloads we read
type payload struct {
	ID     string           `json:"id"`
	MassKg *decimal.Decimal `json:"mass_kg"`
}
