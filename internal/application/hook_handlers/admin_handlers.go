package hook_handlers

import (
	"context"

	"storefront-relay/internal/application"
)

// AdminNoticesHandler adds the setup notices to admin pages
type AdminNoticesHandler struct {
	admin *application.AdminService
}

// NewAdminNoticesHandler creates a new admin notices handler
func NewAdminNoticesHandler(admin *application.AdminService) *AdminNoticesHandler {
	return &AdminNoticesHandler{admin: admin}
}

func (h *AdminNoticesHandler) Name() string { return "admin_checks" }

func (h *AdminNoticesHandler) Handle(ctx context.Context, call *application.HookCall) error {
	notices, err := h.admin.Notices(ctx)
	if err != nil {
		return err
	}
	call.Response.Notices = append(call.Response.Notices, notices...)
	return nil
}

// NeedsRevisionHandler redirects the admin to the settings page once after an unlinked activation
type NeedsRevisionHandler struct {
	admin *application.AdminService
}

// NewNeedsRevisionHandler creates a new needs-revision redirect handler
func NewNeedsRevisionHandler(admin *application.AdminService) *NeedsRevisionHandler {
	return &NeedsRevisionHandler{admin: admin}
}

func (h *NeedsRevisionHandler) Name() string { return "settings_needs_revision" }

func (h *NeedsRevisionHandler) Handle(ctx context.Context, call *application.HookCall) error {
	redirect, err := h.admin.HandleNeedsRevision(ctx)
	if err != nil {
		return err
	}
	if redirect != "" {
		call.Response.Redirect = redirect
	}
	return nil
}
