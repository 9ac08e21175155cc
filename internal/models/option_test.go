package models

import (
	"encoding/json"
	"testing"
)

func TestOptionValue_DecodeVariants(t *testing.T) {
	var flat OptionValue
	if err := json.Unmarshal([]byte(`["Half", "Full"]`), &flat); err != nil {
		t.Fatalf("Unmarshal flat failed: %v", err)
	}
	if flat.IsGrouped() || len(flat.Flat) != 2 {
		t.Errorf("Expected flat list of 2, got %+v", flat)
	}

	var grouped OptionValue
	if err := json.Unmarshal([]byte(`{"fabric": ["Cotton"], "work": []}`), &grouped); err != nil {
		t.Fatalf("Unmarshal grouped failed: %v", err)
	}
	if !grouped.IsGrouped() || len(grouped.Grouped["fabric"]) != 1 {
		t.Errorf("Expected grouped map, got %+v", grouped)
	}
}

func TestOptionValue_EncodeNilFlatAsEmptyArray(t *testing.T) {
	data, err := json.Marshal(OptionValue{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Expected [], got %s", data)
	}
}

func TestEmptyOptionValue(t *testing.T) {
	v := EmptyOptionValue(OptionRateCategories)
	if !v.IsGrouped() || len(v.Grouped) != 4 {
		t.Errorf("Expected four-way grouped default, got %+v", v)
	}

	if EmptyOptionValue(OptionSeasons).IsGrouped() {
		t.Error("Expected flat default for seasons")
	}
}

func TestLoosePrice_CoercesGarbageToZero(t *testing.T) {
	var rates []RateInput
	payload := `[
		{"category": "fabric", "title": "Cotton", "price": "not-a-number"},
		{"category": "work", "title": "Stitching", "price": 150}
	]`
	if err := json.Unmarshal([]byte(payload), &rates); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !rates[0].Price.IsZero() {
		t.Errorf("Expected garbage price coerced to zero, got %s", rates[0].Price)
	}
	if rates[1].Price.String() != "150" {
		t.Errorf("Expected numeric price preserved, got %s", rates[1].Price)
	}
}
