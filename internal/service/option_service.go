package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/garment-catalog-api/internal/apperr"
	"github.com/garment-catalog-api/internal/models"
	"github.com/garment-catalog-api/internal/repository"
)

// optionService is the concrete implementation of OptionService
type optionService struct {
	options repository.OptionRepository
	log     zerolog.Logger
}

func newOptionService(options repository.OptionRepository, log zerolog.Logger) *optionService {
	return &optionService{
		options: options,
		log:     log.With().Str("service", "option").Logger(),
	}
}

// GetAll returns every option set
func (s *optionService) GetAll(ctx context.Context) (map[string]models.OptionValue, error) {
	result, err := s.options.GetAll(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to fetch options", err)
	}
	return result, nil
}

// Mutate applies one add/update/delete to the option set stored under key.
// For rateCategories the category selects which grouped list is targeted;
// for every other key the category is ignored.
//
// The mutation is a read-modify-write of the whole value: the entry is
// materialized with its empty default shape if absent, mutated in memory,
// and re-persisted in one upsert. Concurrent mutations of the same key are
// last-writer-wins.
func (s *optionService) Mutate(ctx context.Context, key, category string, m models.OptionMutation) (*models.OptionValue, error) {
	if !models.ValidOptionKeys[key] {
		return nil, apperr.Validation("unknown option type: %s", key)
	}

	grouped := key == models.OptionRateCategories
	if grouped && !models.ValidRateCategories[category] {
		return nil, apperr.Validation("category must be one of: fabric, work, accessory, labor")
	}

	value, err := s.options.GetByKey(ctx, key)
	if err != nil {
		return nil, apperr.Internal("failed to fetch option set", err)
	}
	if value == nil || value.IsGrouped() != grouped {
		empty := models.EmptyOptionValue(key)
		value = &empty
	}

	var target []string
	if grouped {
		if value.Grouped[category] == nil {
			value.Grouped[category] = []string{}
		}
		target = value.Grouped[category]
	} else {
		target = value.Flat
	}

	switch m.Action {
	case models.OptionActionAdd:
		if strings.TrimSpace(m.Value) == "" {
			return nil, apperr.Validation("value is required")
		}
		for _, item := range target {
			if item == m.Value {
				return nil, apperr.Conflict("item already exists")
			}
		}
		target = append(target, m.Value)

	case models.OptionActionUpdate:
		if m.Index == nil || *m.Index < 0 || *m.Index >= len(target) {
			return nil, apperr.Validation("index out of range")
		}
		target[*m.Index] = m.Value

	case models.OptionActionDelete:
		if m.Index == nil || *m.Index < 0 || *m.Index >= len(target) {
			return nil, apperr.Validation("index out of range")
		}
		target = append(target[:*m.Index], target[*m.Index+1:]...)

	default:
		return nil, apperr.Validation("action must be one of: add, update, delete")
	}

	if grouped {
		value.Grouped[category] = target
	} else {
		value.Flat = target
	}

	if err := s.options.Upsert(ctx, key, *value); err != nil {
		return nil, apperr.Internal("failed to persist option set", err)
	}

	s.log.Info().
		Str("key", key).
		Str("category", category).
		Str("action", m.Action).
		Msg("Option set mutated")
	return value, nil
}

// Count returns the number of option sets, for the metrics endpoint
func (s *optionService) Count(ctx context.Context) (int, error) {
	return s.options.Count(ctx)
}
