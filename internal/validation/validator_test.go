package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/garment-catalog-api/internal/models"
)

var testOpts = OptionSets{
	Seasons:    []string{"Half", "Full", "Winter"},
	Categories: []string{"1 Piece", "2 Piece", "3 Piece"},
}

func validRequest() *models.CreateArticleRequest {
	return &models.CreateArticleRequest{
		ArticleNo:  "ABC123",
		Season:     "Winter",
		Size:       "XL",
		Category:   "2 Piece",
		FabricType: "Woven",
		Quantity:   10,
		SalesRate:  decimal.NewFromInt(1000),
		Rates: []models.RateInput{
			{Category: "fabric", Title: "Cotton", Price: models.LoosePrice{Decimal: decimal.NewFromInt(600)}},
		},
	}
}

func fieldNames(errs []FieldError) map[string]bool {
	names := make(map[string]bool, len(errs))
	for _, e := range errs {
		names[e.Field] = true
	}
	return names
}

func TestValidateCreate_Valid(t *testing.T) {
	if errs := ValidateCreate(validRequest(), testOpts); len(errs) > 0 {
		t.Errorf("Expected no errors, got %v", errs)
	}
}

func TestValidateCreate_RequiredFields(t *testing.T) {
	req := &models.CreateArticleRequest{}
	errs := ValidateCreate(req, testOpts)

	names := fieldNames(errs)
	for _, field := range []string{"article_no", "season", "size", "category", "fabric_type"} {
		if !names[field] {
			t.Errorf("Expected error for missing %s", field)
		}
	}
}

func TestValidateCreate_TaxonomyMembership(t *testing.T) {
	req := validRequest()
	req.Season = "Monsoon"
	req.Category = "4 Piece"
	req.FabricType = "Leather"

	names := fieldNames(ValidateCreate(req, testOpts))
	for _, field := range []string{"season", "category", "fabric_type"} {
		if !names[field] {
			t.Errorf("Expected membership error for %s", field)
		}
	}
}

func TestValidateCreate_EmptyEnumerationSkipsCheck(t *testing.T) {
	req := validRequest()
	req.Season = "Monsoon"

	// An unseeded or emptied set accepts any value.
	if errs := ValidateCreate(req, OptionSets{Categories: testOpts.Categories}); len(errs) > 0 {
		t.Errorf("Expected empty season enumeration to accept anything, got %v", errs)
	}
}

func TestValidateCreate_NegativeValues(t *testing.T) {
	req := validRequest()
	req.Quantity = -1
	req.SalesRate = decimal.NewFromInt(-100)

	names := fieldNames(ValidateCreate(req, testOpts))
	if !names["quantity"] || !names["sales_rate"] {
		t.Errorf("Expected errors for negative quantity and sales_rate, got %v", names)
	}
}

func TestValidateCreate_Rates(t *testing.T) {
	req := validRequest()
	req.Rates = []models.RateInput{
		{Category: "shipping", Title: "Courier", Price: models.LoosePrice{Decimal: decimal.NewFromInt(10)}},
		{Category: "work", Title: "  ", Price: models.LoosePrice{Decimal: decimal.NewFromInt(-5)}},
	}

	names := fieldNames(ValidateCreate(req, testOpts))
	for _, field := range []string{"rates[0].category", "rates[1].title", "rates[1].price"} {
		if !names[field] {
			t.Errorf("Expected error for %s, got %v", field, names)
		}
	}
}

func TestValidateUpdate_OnlySuppliedFieldsChecked(t *testing.T) {
	if errs := ValidateUpdate(&models.UpdateArticleRequest{}, testOpts); len(errs) > 0 {
		t.Errorf("Expected empty update to pass, got %v", errs)
	}

	bad := "Monsoon"
	errs := ValidateUpdate(&models.UpdateArticleRequest{Season: &bad}, testOpts)
	if len(errs) != 1 || errs[0].Field != "season" {
		t.Errorf("Expected a single season error, got %v", errs)
	}
}

func TestValidateUpdate_EmptySuppliedValue(t *testing.T) {
	blank := "   "
	errs := ValidateUpdate(&models.UpdateArticleRequest{ArticleNo: &blank}, testOpts)
	if len(errs) != 1 || errs[0].Field != "article_no" {
		t.Errorf("Expected article_no error, got %v", errs)
	}
}

func TestJoin(t *testing.T) {
	msg := Join([]FieldError{
		{Field: "season", Message: "invalid season"},
		{Field: "size", Message: "size is required"},
	})
	if !strings.Contains(msg, "season: invalid season") || !strings.Contains(msg, "; ") {
		t.Errorf("Unexpected joined message: %q", msg)
	}
}
