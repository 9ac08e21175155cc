package models

import (
	"bytes"
	"encoding/json"
)

// Option set keys. These are the only enumerations the taxonomy manages.
const (
	OptionSeasons        = "seasons"
	OptionSizes          = "sizes"
	OptionCategories     = "categories"
	OptionRateCategories = "rateCategories"
)

// ValidOptionKeys lists the option sets operators may read or mutate.
var ValidOptionKeys = map[string]bool{
	OptionSeasons:        true,
	OptionSizes:          true,
	OptionCategories:     true,
	OptionRateCategories: true,
}

// The four fixed groupings under the rateCategories key.
const (
	RateFabric    = "fabric"
	RateWork      = "work"
	RateAccessory = "accessory"
	RateLabor     = "labor"
)

// ValidRateCategories constrains both rate line items and the grouped
// taxonomy key.
var ValidRateCategories = map[string]bool{
	RateFabric:    true,
	RateWork:      true,
	RateAccessory: true,
	RateLabor:     true,
}

// OptionValue is the tagged variant stored under one option key: a flat
// ordered list for most keys, or a four-way grouped map for rateCategories.
// Exactly one of Flat/Grouped is set.
type OptionValue struct {
	Flat    []string
	Grouped map[string][]string
}

// EmptyOptionValue returns the default shape for a key that has not been
// materialized yet.
func EmptyOptionValue(key string) OptionValue {
	if key == OptionRateCategories {
		return OptionValue{Grouped: map[string][]string{
			RateFabric:    {},
			RateWork:      {},
			RateAccessory: {},
			RateLabor:     {},
		}}
	}
	return OptionValue{Flat: []string{}}
}

// IsGrouped reports whether the value holds the grouped variant.
func (v OptionValue) IsGrouped() bool {
	return v.Grouped != nil
}

func (v OptionValue) MarshalJSON() ([]byte, error) {
	if v.Grouped != nil {
		return json.Marshal(v.Grouped)
	}
	if v.Flat == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v.Flat)
}

func (v *OptionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		v.Flat = nil
		return json.Unmarshal(trimmed, &v.Grouped)
	}
	v.Grouped = nil
	return json.Unmarshal(trimmed, &v.Flat)
}

// Mutation actions accepted by POST /api/options/:type.
const (
	OptionActionAdd    = "add"
	OptionActionUpdate = "update"
	OptionActionDelete = "delete"
)

// OptionMutation is the body of a taxonomy mutation request. Index is a
// pointer so "missing" and "zero" stay distinguishable.
type OptionMutation struct {
	Action string `json:"action"`
	Value  string `json:"value"`
	Index  *int   `json:"index"`
}
