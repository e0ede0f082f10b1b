package application

import (
	"context"
	"fmt"

	"storefront-relay/internal/domain"

	"github.com/rs/zerolog"
)

const (
	noticePermalinks = "Storefront Relay requires permalinks enabled. Please enable permalinks in the store settings."
	noticeNotLinked  = "Storefront Relay is almost ready. To link your store, please complete the setup steps at %s."
)

// SetupScreen is the state the admin setup page renders
type SetupScreen struct {
	PermalinkEnabled bool              `json:"permalink_enabled"`
	Linked           bool              `json:"linked"`
	InstallURL       string            `json:"install_url"`
	InstallParams    map[string]string `json:"install_params"`
	HideSaveButton   bool              `json:"hide_save_button"`
}

// AdminService produces the admin-facing checks and setup state
type AdminService struct {
	identity *IdentityService
	link     *LinkService
	metadata domain.StoreMetadata
	logger   zerolog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(identity *IdentityService, link *LinkService, metadata domain.StoreMetadata, logger zerolog.Logger) *AdminService {
	return &AdminService{
		identity: identity,
		link:     link,
		metadata: metadata,
		logger:   logger,
	}
}

// Notices returns the admin notices. Disabled permalinks block everything else.
func (s *AdminService) Notices(ctx context.Context) ([]domain.Notice, error) {
	if !s.metadata.PermalinksEnabled() {
		return []domain.Notice{{Type: domain.NoticeError, Message: noticePermalinks}}, nil
	}

	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Linked {
		return []domain.Notice{{Type: domain.NoticeInfo, Message: fmt.Sprintf(noticeNotLinked, s.metadata.SettingsURL)}}, nil
	}
	return nil, nil
}

// HandleNeedsRevision returns the settings URL once after an unlinked activation, and "" otherwise
func (s *AdminService) HandleNeedsRevision(ctx context.Context) (string, error) {
	pending, err := s.identity.ConsumeNeedsRevision(ctx)
	if err != nil {
		return "", err
	}
	if !pending {
		return "", nil
	}
	s.logger.Info().Str("redirect", s.metadata.SettingsURL).Msg("Configuration needs revision")
	return s.metadata.SettingsURL, nil
}

// SetupScreen starts the handshake and returns the setup page state
func (s *AdminService) SetupScreen(ctx context.Context) (*SetupScreen, error) {
	link, err := s.link.BeginLink(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return nil, err
	}

	permalinks := s.metadata.PermalinksEnabled()
	return &SetupScreen{
		PermalinkEnabled: permalinks,
		Linked:           state.Linked,
		InstallURL:       link.InstallURL,
		InstallParams:    link.Params,
		HideSaveButton:   !permalinks || !state.Linked,
	}, nil
}
