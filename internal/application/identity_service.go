package application

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// IdentityService manages the store identifier and its link state
type IdentityService struct {
	store   ports.SettingsStore
	siteURL string
	logger  zerolog.Logger
}

// NewIdentityService creates a new identity service
func NewIdentityService(store ports.SettingsStore, siteURL string, logger zerolog.Logger) *IdentityService {
	return &IdentityService{
		store:   store,
		siteURL: siteURL,
		logger:  logger,
	}
}

// GenerateSiteID derives the site id from the store's public hostname,
// falling back to the request host when the store URL has none.
func (s *IdentityService) GenerateSiteID(requestHost string) string {
	if u, err := url.Parse(s.siteURL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	host := strings.TrimSpace(requestHost)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}

// SiteID returns the persisted site id or an empty string
func (s *IdentityService) SiteID(ctx context.Context) (string, error) {
	var siteID string
	if _, err := s.store.Get(ctx, domain.KeySiteID, &siteID); err != nil {
		return "", fmt.Errorf("failed to get site id: %w", err)
	}
	return siteID, nil
}

// EnsureSiteID returns the persisted site id, generating and storing it on first use
func (s *IdentityService) EnsureSiteID(ctx context.Context, requestHost string) (string, error) {
	siteID, err := s.SiteID(ctx)
	if err != nil {
		return "", err
	}
	if siteID != "" {
		return siteID, nil
	}

	siteID = s.GenerateSiteID(requestHost)
	if siteID == "" {
		return "", nil
	}
	if err := s.store.Set(ctx, domain.KeySiteID, siteID); err != nil {
		return "", fmt.Errorf("failed to save site id: %w", err)
	}

	s.logger.Info().Str("siteId", siteID).Msg("Generated site id")
	return siteID, nil
}

// GetLinkState returns the current link state
func (s *IdentityService) GetLinkState(ctx context.Context) (*domain.LinkState, error) {
	state := &domain.LinkState{}
	if _, err := s.store.Get(ctx, domain.KeySiteID, &state.SiteID); err != nil {
		return nil, fmt.Errorf("failed to get site id: %w", err)
	}
	if _, err := s.store.Get(ctx, domain.KeyLinked, &state.Linked); err != nil {
		return nil, fmt.Errorf("failed to get linked flag: %w", err)
	}
	if _, err := s.store.Get(ctx, domain.KeySignature, &state.Signature); err != nil {
		return nil, fmt.Errorf("failed to get signature: %w", err)
	}
	return state, nil
}

// MarkLinked overwrites the identity with a linked site and its signature
func (s *IdentityService) MarkLinked(ctx context.Context, siteID, signature string) error {
	if signature == "" {
		return domain.ErrEmptySignature
	}
	if err := s.store.Set(ctx, domain.KeySiteID, siteID); err != nil {
		return fmt.Errorf("failed to save site id: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeySignature, signature); err != nil {
		return fmt.Errorf("failed to save signature: %w", err)
	}
	if err := s.store.Set(ctx, domain.KeyLinked, true); err != nil {
		return fmt.Errorf("failed to save linked flag: %w", err)
	}

	s.logger.Info().Str("siteId", siteID).Msg("Site linked")
	return nil
}

// IssueInstallToken stores a fresh install intent token.
// It returns an empty token when the store is already linked.
func (s *IdentityService) IssueInstallToken(ctx context.Context) (string, error) {
	state, err := s.GetLinkState(ctx)
	if err != nil {
		return "", err
	}
	if state.Linked {
		return "", nil
	}

	token := "sk" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if err := s.store.Set(ctx, domain.KeyInstallToken, token); err != nil {
		return "", fmt.Errorf("failed to save install token: %w", err)
	}
	return token, nil
}

// InstallToken returns the stored install token or an empty string
func (s *IdentityService) InstallToken(ctx context.Context) (string, error) {
	var token string
	if _, err := s.store.Get(ctx, domain.KeyInstallToken, &token); err != nil {
		return "", fmt.Errorf("failed to get install token: %w", err)
	}
	return token, nil
}

// SetNeedsRevision flags the configuration for a one-time admin review
func (s *IdentityService) SetNeedsRevision(ctx context.Context) error {
	if err := s.store.Set(ctx, domain.KeyNeedsRevision, true); err != nil {
		return fmt.Errorf("failed to save needs revision flag: %w", err)
	}
	return nil
}

// NeedsRevision reports the flag without clearing it
func (s *IdentityService) NeedsRevision(ctx context.Context) (bool, error) {
	var flag bool
	if _, err := s.store.Get(ctx, domain.KeyNeedsRevision, &flag); err != nil {
		return false, fmt.Errorf("failed to get needs revision flag: %w", err)
	}
	return flag, nil
}

// ConsumeNeedsRevision clears the flag and reports whether it was set
func (s *IdentityService) ConsumeNeedsRevision(ctx context.Context) (bool, error) {
	flag, err := s.NeedsRevision(ctx)
	if err != nil || !flag {
		return false, err
	}
	if err := s.store.Set(ctx, domain.KeyNeedsRevision, false); err != nil {
		return false, fmt.Errorf("failed to clear needs revision flag: %w", err)
	}
	return true, nil
}

// Uninstall deletes every persisted identity key and the module settings
func (s *IdentityService) Uninstall(ctx context.Context) error {
	keys := []string{
		domain.KeySiteID,
		domain.KeyLinked,
		domain.KeyNeedsRevision,
		domain.KeySettings,
		domain.KeySignature,
		domain.KeyInstallToken,
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}

	s.logger.Info().Msg("Identity removed")
	return nil
}
