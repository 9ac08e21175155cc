// Package validation checks article payloads against the fixed rules and
// the operator-editable taxonomy before anything touches storage.
package validation

import (
	"fmt"
	"strings"

	"github.com/garment-catalog-api/internal/models"
)

// FieldError represents a single validation error
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Join renders a list of field errors as one caller-facing message.
func Join(errs []FieldError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "; ")
}

// OptionSets carries the taxonomy enumerations an article is validated
// against. An empty enumeration skips the membership check (the set has not
// been seeded or was emptied by an operator).
type OptionSets struct {
	Seasons    []string
	Categories []string
}

// ValidateCreate validates a full create payload.
func ValidateCreate(req *models.CreateArticleRequest, opts OptionSets) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.ArticleNo) == "" {
		errs = append(errs, FieldError{Field: "article_no", Message: "article number is required"})
	}
	if req.Season == "" {
		errs = append(errs, FieldError{Field: "season", Message: "season is required"})
	} else if !member(opts.Seasons, req.Season) {
		errs = append(errs, FieldError{Field: "season", Message: "invalid season"})
	}
	if strings.TrimSpace(req.Size) == "" {
		errs = append(errs, FieldError{Field: "size", Message: "size is required"})
	}
	if req.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "category is required"})
	} else if !member(opts.Categories, req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "invalid category"})
	}
	if req.FabricType == "" {
		errs = append(errs, FieldError{Field: "fabric_type", Message: "fabric type is required"})
	} else if !models.ValidFabricTypes[req.FabricType] {
		errs = append(errs, FieldError{Field: "fabric_type", Message: "invalid fabric type"})
	}
	if req.Quantity < 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must not be negative"})
	}
	if req.SalesRate.IsNegative() {
		errs = append(errs, FieldError{Field: "sales_rate", Message: "sales rate must not be negative"})
	}

	errs = append(errs, validateRates(req.Rates)...)
	return errs
}

// ValidateUpdate validates a partial update payload: only supplied fields
// are checked.
func ValidateUpdate(req *models.UpdateArticleRequest, opts OptionSets) []FieldError {
	var errs []FieldError

	if req.ArticleNo != nil && strings.TrimSpace(*req.ArticleNo) == "" {
		errs = append(errs, FieldError{Field: "article_no", Message: "article number cannot be empty"})
	}
	if req.Season != nil && !member(opts.Seasons, *req.Season) {
		errs = append(errs, FieldError{Field: "season", Message: "invalid season"})
	}
	if req.Size != nil && strings.TrimSpace(*req.Size) == "" {
		errs = append(errs, FieldError{Field: "size", Message: "size cannot be empty"})
	}
	if req.Category != nil && !member(opts.Categories, *req.Category) {
		errs = append(errs, FieldError{Field: "category", Message: "invalid category"})
	}
	if req.FabricType != nil && !models.ValidFabricTypes[*req.FabricType] {
		errs = append(errs, FieldError{Field: "fabric_type", Message: "invalid fabric type"})
	}
	if req.Quantity != nil && *req.Quantity < 0 {
		errs = append(errs, FieldError{Field: "quantity", Message: "quantity must not be negative"})
	}
	if req.SalesRate != nil && req.SalesRate.IsNegative() {
		errs = append(errs, FieldError{Field: "sales_rate", Message: "sales rate must not be negative"})
	}

	if req.Rates != nil {
		errs = append(errs, validateRates(req.Rates)...)
	}
	return errs
}

func validateRates(rates []models.RateInput) []FieldError {
	var errs []FieldError
	for i, rate := range rates {
		if !models.ValidRateCategories[rate.Category] {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rates[%d].category", i),
				Message: "must be one of: fabric, work, accessory, labor",
			})
		}
		if strings.TrimSpace(rate.Title) == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rates[%d].title", i),
				Message: "rate title is required",
			})
		}
		if rate.Price.IsNegative() {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("rates[%d].price", i),
				Message: "price must not be negative",
			})
		}
	}
	return errs
}

// member reports whether value is in the enumeration. Empty enumerations
// accept everything.
func member(set []string, value string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}
