package application

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/metrics"
	"storefront-relay/internal/ports"

	"github.com/rs/zerolog"
)

// Platform endpoint paths, joined onto the dashboard or plugins base URL
const (
	InstallPath = "/woocommerce/shopping-ads/init?"
	FinishPath  = "/woocommerce/shopping-ads/finish?"
	StatusPath  = "/woocommerce/shopping-ads/status?"
)

// PlatformEndpoints are the default base URLs of the ad platform
type PlatformEndpoints struct {
	DashboardBase string
	PluginsBase   string
}

// InstallLink is what the setup screen needs to start the handshake
type InstallLink struct {
	Token      string            `json:"token,omitempty"`
	InstallURL string            `json:"install_url"`
	Params     map[string]string `json:"install_params"`
}

// LinkService runs the site-link handshake with the ad platform
type LinkService struct {
	identity  *IdentityService
	store     ports.SettingsStore
	notifier  ports.StatusNotifier
	endpoints PlatformEndpoints
	metadata  domain.StoreMetadata
	version   string
	logger    zerolog.Logger
}

// NewLinkService creates a new link service
func NewLinkService(
	identity *IdentityService,
	store ports.SettingsStore,
	notifier ports.StatusNotifier,
	endpoints PlatformEndpoints,
	metadata domain.StoreMetadata,
	version string,
	logger zerolog.Logger,
) *LinkService {
	return &LinkService{
		identity:  identity,
		store:     store,
		notifier:  notifier,
		endpoints: endpoints,
		metadata:  metadata,
		version:   version,
		logger:    logger,
	}
}

// DashboardEndpoint joins path onto the dashboard base, honoring a stored override
func (s *LinkService) DashboardEndpoint(ctx context.Context, path string) string {
	return joinEndpoint(s.baseURL(ctx, domain.KeyInstallBase, s.endpoints.DashboardBase), path)
}

// StatusEndpoint returns the platform status URL, honoring a stored override
func (s *LinkService) StatusEndpoint(ctx context.Context) string {
	return joinEndpoint(s.baseURL(ctx, domain.KeyStatusBase, s.endpoints.PluginsBase), StatusPath)
}

func (s *LinkService) baseURL(ctx context.Context, key, fallback string) string {
	var base string
	found, err := s.store.Get(ctx, key, &base)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to read endpoint override")
	}
	if !found || base == "" {
		return fallback
	}
	return base
}

func joinEndpoint(base, path string) string {
	return base + strings.TrimLeft(path, "/")
}

// BeginLink issues an install intent token and builds the dashboard install URL.
// When the store is already linked no token is issued and intent is empty.
func (s *LinkService) BeginLink(ctx context.Context) (*InstallLink, error) {
	token, err := s.identity.IssueInstallToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to issue install token: %w", err)
	}

	params := map[string]string{
		"website": s.metadata.URL,
		"name":    s.metadata.Name,
		"email":   s.metadata.AdminEmail,
		"intent":  token,
	}
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}

	return &InstallLink{
		Token:      token,
		InstallURL: s.DashboardEndpoint(ctx, InstallPath) + query.Encode(),
		Params:     params,
	}, nil
}

// AllowedRedirectHosts appends the platform callback host to hosts
func (s *LinkService) AllowedRedirectHosts(ctx context.Context, hosts []string) []string {
	finish, err := url.Parse(s.DashboardEndpoint(ctx, FinishPath))
	if err != nil || finish.Hostname() == "" {
		return hosts
	}
	return append(hosts, finish.Hostname())
}

// CompleteLink validates the platform callback, links the store and returns the redirect target.
// Every validation runs before the identity is touched.
func (s *LinkService) CompleteLink(ctx context.Context, req domain.LinkRequest) (string, error) {
	redirect, err := s.validateLink(ctx, req)
	if err != nil {
		outcome := "error"
		if errors.Is(err, domain.ErrLinkRejected) {
			outcome = "rejected"
		}
		metrics.LinkAttemptsTotal.WithLabelValues(outcome).Inc()
		return "", err
	}

	if err := s.identity.MarkLinked(ctx, req.Site, req.Signature); err != nil {
		metrics.LinkAttemptsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to link site: %w", err)
	}

	metrics.LinkAttemptsTotal.WithLabelValues("linked").Inc()
	s.logger.Info().Str("site", req.Site).Str("redirect", redirect).Msg("Link completed")
	return redirect, nil
}

func (s *LinkService) validateLink(ctx context.Context, req domain.LinkRequest) (string, error) {
	if req.Empty() {
		return "", domain.NewLinkError("the request was empty")
	}
	if req.Site == "" {
		return "", domain.NewLinkError("site was empty")
	}
	if req.ReturnURL == "" {
		return "", domain.NewLinkError("return was empty")
	}
	if req.Signature == "" {
		return "", domain.NewLinkError("signature was empty")
	}

	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return "", err
	}
	if state.Linked {
		token, err := s.identity.InstallToken(ctx)
		if err != nil {
			return "", err
		}
		if req.Intent == "" || (req.Intent != token && req.Intent != state.Signature) {
			return "", domain.NewLinkError("Invalid token")
		}
	}

	target, err := url.Parse(req.ReturnURL)
	if err != nil || !s.redirectAllowed(ctx, target) {
		return "", domain.NewLinkError("Could not redirect to: %s", req.ReturnURL)
	}
	return target.String(), nil
}

func (s *LinkService) redirectAllowed(ctx context.Context, target *url.URL) bool {
	if target.Scheme != "http" && target.Scheme != "https" {
		return false
	}
	hosts := []string{}
	if own, err := url.Parse(s.metadata.URL); err == nil && own.Hostname() != "" {
		hosts = append(hosts, own.Hostname())
	}
	for _, host := range s.AllowedRedirectHosts(ctx, hosts) {
		if strings.EqualFold(host, target.Hostname()) {
			return true
		}
	}
	return false
}

// ProvideStatus returns the status descriptor polled by the platform
func (s *LinkService) ProvideStatus(ctx context.Context) (*domain.SiteInfo, error) {
	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SiteInfo{
		Site:      state.SiteID,
		Linked:    state.Linked,
		Name:      s.metadata.Name,
		URL:       s.metadata.URL,
		Currency:  s.metadata.Currency,
		WPVersion: s.metadata.PlatformVersion,
		WCVersion: s.metadata.CommerceVersion,
		Version:   s.version,
		API:       s.metadata.APIURL,
		Permalink: s.metadata.PermalinkStructure,
	}, nil
}

// Activate signals an active install when linked, otherwise flags the configuration for review.
// Notification failures are logged and swallowed.
func (s *LinkService) Activate(ctx context.Context) error {
	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return err
	}
	if !state.Linked {
		return s.identity.SetNeedsRevision(ctx)
	}
	s.sendStatus(ctx, state, domain.StatusActive)
	return nil
}

// Deactivate always signals an inactive install. Notification failures are logged and swallowed.
func (s *LinkService) Deactivate(ctx context.Context) error {
	state, err := s.identity.GetLinkState(ctx)
	if err != nil {
		return err
	}
	s.sendStatus(ctx, state, domain.StatusInactive)
	return nil
}

func (s *LinkService) sendStatus(ctx context.Context, state *domain.LinkState, status int) {
	label := "inactive"
	if status == domain.StatusActive {
		label = "active"
	}

	notification := domain.StatusNotification{
		Site:   state.SiteID,
		Sign:   state.Signature,
		Status: status,
	}
	if err := s.notifier.SendStatus(ctx, s.StatusEndpoint(ctx), notification); err != nil {
		metrics.StatusNotificationsTotal.WithLabelValues(label, "failed").Inc()
		s.logger.Error().Err(err).Str("site", state.SiteID).Int("status", status).Msg("Something went wrong sending status")
		return
	}

	metrics.StatusNotificationsTotal.WithLabelValues(label, "sent").Inc()
	s.logger.Info().Str("site", state.SiteID).Int("status", status).Msg("Status sent")
}
