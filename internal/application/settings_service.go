package application

import (
	"context"
	"fmt"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/ports"

	"github.com/rs/zerolog"
)

// SettingsService loads module settings and keeps declared defaults persisted
type SettingsService struct {
	store   ports.SettingsStore
	modules []domain.ModuleDefaults
	logger  zerolog.Logger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store ports.SettingsStore, modules []domain.ModuleDefaults, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		store:   store,
		modules: modules,
		logger:  logger,
	}
}

// MergeDefaults fills in every declared default that is absent from settings.
// The returned flag is true when anything was added and the caller should persist.
func MergeDefaults(settings domain.Settings, modules []domain.ModuleDefaults) (domain.Settings, bool) {
	merged := make(domain.Settings, len(settings))
	for k, v := range settings {
		merged[k] = v
	}

	dirty := false
	for _, module := range modules {
		for key, value := range module.Defaults {
			if v, ok := merged[key]; ok && v != nil {
				continue
			}
			merged[key] = value
			dirty = true
		}
	}
	return merged, dirty
}

// Load returns the stored settings merged with module defaults, saving them when defaults were added
func (s *SettingsService) Load(ctx context.Context) (domain.Settings, error) {
	stored := domain.Settings{}
	if _, err := s.store.Get(ctx, domain.KeySettings, &stored); err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	merged, dirty := MergeDefaults(stored, s.modules)
	if dirty {
		if err := s.store.Set(ctx, domain.KeySettings, merged); err != nil {
			return nil, fmt.Errorf("failed to save settings: %w", err)
		}
		s.logger.Debug().Int("keys", len(merged)).Msg("Persisted settings defaults")
	}
	return merged, nil
}

// Update overwrites individual settings
func (s *SettingsService) Update(ctx context.Context, changes domain.Settings) (domain.Settings, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range changes {
		current[k] = v
	}
	if err := s.store.Set(ctx, domain.KeySettings, current); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return current, nil
}
