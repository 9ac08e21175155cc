package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Article represents a catalog SKU with its cost, pricing and
// classification attributes. TotalCost and ProfitMargin are derived by the
// costing engine and never accepted from callers.
type Article struct {
	ID           string          `json:"id" db:"id"`
	ArticleNo    string          `json:"article_no" db:"article_no"`
	Season       string          `json:"season" db:"season"`
	Size         string          `json:"size" db:"size"`
	Category     string          `json:"category" db:"category"`
	Description  string          `json:"description,omitempty" db:"description"`
	FabricType   string          `json:"fabric_type" db:"fabric_type"`
	Quantity     int             `json:"quantity" db:"quantity"`
	TotalCost    decimal.Decimal `json:"total_cost" db:"total_cost"`
	SalesRate    decimal.Decimal `json:"sales_rate" db:"sales_rate"`
	ProfitMargin decimal.Decimal `json:"profit_margin" db:"profit_margin"`
	Image        string          `json:"image,omitempty" db:"image"`
	CreatedBy    string          `json:"created_by" db:"created_by"`
	UpdatedBy    string          `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
	Rates        []Rate          `json:"rates" db:"-"` // Stored in the rates table
}

// Rate is one itemized cost component attached to an article. Rates are
// owned by their article and replaced wholesale on update.
type Rate struct {
	Category string          `json:"category" db:"category"`
	Title    string          `json:"title" db:"title"`
	Price    decimal.Decimal `json:"price" db:"price"`
}

// LoosePrice decodes a rate price from JSON. Non-numeric or missing values
// coerce to zero instead of failing the request.
type LoosePrice struct {
	decimal.Decimal
}

func (p *LoosePrice) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		p.Decimal = decimal.Zero
		return nil
	}
	p.Decimal = d
	return nil
}

// RateInput is a rate line item as submitted by the caller.
type RateInput struct {
	Category string     `json:"category"`
	Title    string     `json:"title"`
	Price    LoosePrice `json:"price"`
}

// CreateArticleRequest carries the fields for a new article. Image is set
// by the handler after the upload has been stored; CreatedBy comes from the
// verified caller identity.
type CreateArticleRequest struct {
	ArticleNo   string          `json:"article_no"`
	Season      string          `json:"season"`
	Size        string          `json:"size"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	FabricType  string          `json:"fabric_type"`
	Quantity    int             `json:"quantity"`
	SalesRate   decimal.Decimal `json:"sales_rate"`
	Rates       []RateInput     `json:"rates"`
	Image       string          `json:"-"`
	CreatedBy   string          `json:"-"`
}

// UpdateArticleRequest is a partial update: nil fields are left untouched.
// A non-nil Rates replaces the article's entire rate set.
type UpdateArticleRequest struct {
	ArticleNo   *string          `json:"article_no"`
	Season      *string          `json:"season"`
	Size        *string          `json:"size"`
	Category    *string          `json:"category"`
	Description *string          `json:"description"`
	FabricType  *string          `json:"fabric_type"`
	Quantity    *int             `json:"quantity"`
	SalesRate   *decimal.Decimal `json:"sales_rate"`
	Rates       []RateInput      `json:"rates"`
	Image       *string          `json:"-"`
	UpdatedBy   string           `json:"-"`
}

// ValidFabricTypes is the fixed fabric-type classification. Unlike seasons
// and categories it is not operator-editable.
var ValidFabricTypes = map[string]bool{
	"Woven":     true,
	"Knitted":   true,
	"Non-Woven": true,
	"Blended":   true,
}

// ListArticlesParams are the untrusted query parameters of a list request.
// The query service is responsible for whitelisting and clamping them.
type ListArticlesParams struct {
	Search     string
	Season     string
	Category   string
	FabricType string
	SortBy     string
	Order      string
	Page       int
	Limit      int
}

// Pagination describes one page of a list result. Total counts all rows
// matching the filters, independent of the page window.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// ArticleList is the result of a list query.
type ArticleList struct {
	Items      []*Article
	Pagination Pagination
}

// StatsSummary aggregates over the entire article set. Empty-table
// aggregates resolve to zero, never null.
type StatsSummary struct {
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	AvgSalesRate    decimal.Decimal `json:"avgSalesRate"`
	AvgProfitMargin decimal.Decimal `json:"avgProfitMargin"`
}

// GroupStat is one row of a group-by roll-up.
type GroupStat struct {
	Key        string          `json:"_id"`
	Count      int             `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// ArticleStats is the full statistics roll-up. Category and fabric groups
// are ordered by descending count; season groups by season ascending.
type ArticleStats struct {
	TotalArticles int          `json:"totalArticles"`
	Summary       StatsSummary `json:"summary"`
	CategoryStats []GroupStat  `json:"categoryStats"`
	SeasonStats   []GroupStat  `json:"seasonStats"`
	FabricStats   []GroupStat  `json:"fabricStats"`
}
