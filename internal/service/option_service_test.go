package service_test

import (
	"context"
	"testing"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/models"
)

func intPtr(i int) *int { return &i }

func TestOptionService_AddToFlatSet(t *testing.T) {
	services, _, optionRepo := newTestServices()
	ctx := context.Background()

	value, err := services.Option.Mutate(ctx, models.OptionSeasons, "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Monsoon",
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	if len(value.Flat) != 4 || value.Flat[3] != "Monsoon" {
		t.Errorf("Expected Monsoon appended to seasons, got %v", value.Flat)
	}
	stored := optionRepo.Values[models.OptionSeasons]
	if len(stored.Flat) != 4 {
		t.Errorf("Expected whole value persisted, got %v", stored.Flat)
	}
	if optionRepo.UpsertCalls != 1 || optionRepo.LastUpsertKey != models.OptionSeasons {
		t.Errorf("Expected one upsert of seasons, got %d calls to %s",
			optionRepo.UpsertCalls, optionRepo.LastUpsertKey)
	}
}

func TestOptionService_AddDuplicate(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	_, err := services.Option.Mutate(ctx, models.OptionSeasons, "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Winter",
	})
	if !apperr.IsConflict(err) {
		t.Errorf("Expected conflict for exact duplicate, got %v", err)
	}

	// Duplicate detection is exact: a different casing is a new item.
	if _, err := services.Option.Mutate(ctx, models.OptionSeasons, "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "winter",
	}); err != nil {
		t.Errorf("Expected case-different value accepted, got %v", err)
	}
}

func TestOptionService_AddBlankValue(t *testing.T) {
	services, _, _ := newTestServices()

	_, err := services.Option.Mutate(context.Background(), models.OptionSizes, "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "   ",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for blank value, got %v", err)
	}
}

func TestOptionService_GroupedAddMaterializesShape(t *testing.T) {
	services, _, optionRepo := newTestServices()
	ctx := context.Background()

	// rateCategories is absent; the first mutation must materialize the
	// full four-key grouped shape.
	value, err := services.Option.Mutate(ctx, models.OptionRateCategories, models.RateFabric, models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Organza",
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}

	for _, cat := range []string{models.RateFabric, models.RateWork, models.RateAccessory, models.RateLabor} {
		if _, ok := value.Grouped[cat]; !ok {
			t.Errorf("Expected grouped shape to contain %s", cat)
		}
	}
	if len(value.Grouped[models.RateFabric]) != 1 {
		t.Errorf("Expected one fabric item, got %v", value.Grouped[models.RateFabric])
	}

	stored := optionRepo.Values[models.OptionRateCategories]
	if stored.Grouped == nil {
		t.Fatal("Expected grouped value persisted")
	}
	if len(stored.Grouped[models.RateWork]) != 0 {
		t.Errorf("Expected untouched categories empty, got %v", stored.Grouped[models.RateWork])
	}
}

func TestOptionService_GroupedRequiresCategory(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	_, err := services.Option.Mutate(ctx, models.OptionRateCategories, "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Organza",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for missing category, got %v", err)
	}

	_, err = services.Option.Mutate(ctx, models.OptionRateCategories, "shipping", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Organza",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for unknown category, got %v", err)
	}
}

func TestOptionService_FlatKeyIgnoresCategory(t *testing.T) {
	services, _, _ := newTestServices()

	_, err := services.Option.Mutate(context.Background(), models.OptionSizes, "fabric", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "XXL",
	})
	if err != nil {
		t.Errorf("Expected category ignored for flat key, got %v", err)
	}
}

func TestOptionService_UpdateByIndex(t *testing.T) {
	services, _, optionRepo := newTestServices()

	value, err := services.Option.Mutate(context.Background(), models.OptionSeasons, "", models.OptionMutation{
		Action: models.OptionActionUpdate,
		Value:  "Mid-Season",
		Index:  intPtr(1),
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if value.Flat[1] != "Mid-Season" {
		t.Errorf("Expected index 1 replaced, got %v", value.Flat)
	}
	if optionRepo.Values[models.OptionSeasons].Flat[1] != "Mid-Season" {
		t.Error("Expected update persisted")
	}
}

func TestOptionService_IndexBounds(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	// Seeded seasons has 3 items; -1 and 3 are both out of range, and a
	// missing index is rejected the same way.
	cases := []struct {
		name  string
		index *int
	}{
		{"negative", intPtr(-1)},
		{"past end", intPtr(3)},
		{"missing", nil},
	}
	for _, tc := range cases {
		_, err := services.Option.Mutate(ctx, models.OptionSeasons, "", models.OptionMutation{
			Action: models.OptionActionDelete,
			Index:  tc.index,
		})
		if !apperr.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestOptionService_DeleteByIndex(t *testing.T) {
	services, _, _ := newTestServices()

	value, err := services.Option.Mutate(context.Background(), models.OptionSeasons, "", models.OptionMutation{
		Action: models.OptionActionDelete,
		Index:  intPtr(0),
	})
	if err != nil {
		t.Fatalf("Mutate failed: %v", err)
	}
	if len(value.Flat) != 2 || value.Flat[0] != "Full" {
		t.Errorf("Expected first season removed, got %v", value.Flat)
	}
}

func TestOptionService_UnknownKeyAndAction(t *testing.T) {
	services, _, _ := newTestServices()
	ctx := context.Background()

	_, err := services.Option.Mutate(ctx, "colors", "", models.OptionMutation{
		Action: models.OptionActionAdd,
		Value:  "Red",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for unknown key, got %v", err)
	}

	_, err = services.Option.Mutate(ctx, models.OptionSeasons, "", models.OptionMutation{
		Action: "replace",
		Value:  "Spring",
	})
	if !apperr.IsValidation(err) {
		t.Errorf("Expected validation error for unknown action, got %v", err)
	}
}

func TestOptionService_GetAll(t *testing.T) {
	services, _, _ := newTestServices()

	all, err := services.Option.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 seeded option sets, got %d", len(all))
	}
	if all[models.OptionSeasons].Flat == nil {
		t.Error("Expected seasons to be a flat list")
	}
}
