package application

import (
	"context"
	"fmt"

	"storefront-relay/internal/domain"

	"github.com/rs/zerolog"
)

// RenderService runs a batch of hooks for one storefront render
type RenderService struct {
	pixels     *PixelService
	identity   *IdentityService
	dispatcher *HookDispatcher
	logger     zerolog.Logger
}

// NewRenderService creates a new render service
func NewRenderService(pixels *PixelService, identity *IdentityService, dispatcher *HookDispatcher, logger zerolog.Logger) *RenderService {
	return &RenderService{
		pixels:     pixels,
		identity:   identity,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Render dispatches hooks in order with one request-scoped pixel builder.
// Handler failures are reported in the response, never as an error.
func (s *RenderService) Render(ctx context.Context, req *domain.StorefrontRequest, hooks []string) (*domain.HookResponse, error) {
	for _, hook := range hooks {
		if !s.dispatcher.Has(hook) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownHook, hook)
		}
	}

	if _, err := s.identity.EnsureSiteID(ctx, req.Host); err != nil {
		return nil, err
	}

	builder, err := s.pixels.NewBuilder(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create pixel builder: %w", err)
	}

	call := &HookCall{
		Request:  req,
		Pixel:    builder,
		Response: &domain.HookResponse{SessionID: req.SessionID},
	}
	for _, hook := range hooks {
		if err := s.dispatcher.Dispatch(ctx, hook, call); err != nil {
			call.Response.Errors = append(call.Response.Errors, err.Error())
		}
	}

	resp := call.Response
	resp.Output = builder.Output()
	resp.DeferredScript = builder.Deferred()
	resp.PixelEnabled = builder.Enabled()
	resp.LastParams = builder.LastParams()
	resp.Events = builder.Events()

	s.logger.Debug().
		Strs("hooks", hooks).
		Int("events", len(resp.Events)).
		Msg("Render completed")
	return resp, nil
}
