package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront-relay/internal/application"
	"storefront-relay/internal/domain"
	"storefront-relay/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// RenderRequest is the body of POST /render
type RenderRequest struct {
	Request domain.StorefrontRequest `json:"request"`
	Hooks   []string                 `json:"hooks"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// linkSiteHandler completes the platform link callback
func linkSiteHandler(link *application.LinkService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := domain.LinkRequest{
			Site:      r.FormValue("s"),
			ReturnURL: r.FormValue("r"),
			Signature: r.FormValue("h"),
			Intent:    r.FormValue("i"),
		}

		redirect, err := link.CompleteLink(r.Context(), req)
		if err != nil {
			var linkErr *domain.LinkError
			if errors.As(err, &linkErr) {
				logger.Warn().Str("site", req.Site).Msg(linkErr.Error())
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(linkErr.Error()))
				return
			}
			logger.Error().Err(err).Msg("Failed to link site")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, redirect, http.StatusFound)
	}
}

// siteInfoHandler returns the status descriptor polled by the platform
func siteInfoHandler(link *application.LinkService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := link.ProvideStatus(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to build site info")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, info)
	}
}

// renderHandler runs a batch of hooks for one page render
func renderHandler(render *application.RenderService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body RenderRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if len(body.Hooks) == 0 {
			http.Error(w, "hooks are required", http.StatusBadRequest)
			return
		}
		runRender(w, r, render, &body.Request, body.Hooks, logger)
	}
}

// hookHandler runs a single hook
func hookHandler(render *application.RenderService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.StorefrontRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		runRender(w, r, render, &req, []string{chi.URLParam(r, "hook")}, logger)
	}
}

func runRender(w http.ResponseWriter, r *http.Request, render *application.RenderService, req *domain.StorefrontRequest, hooks []string, logger zerolog.Logger) {
	resp, err := render.Render(r.Context(), req, hooks)
	if errors.Is(err, domain.ErrUnknownHook) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Strs("hooks", hooks).Msg("Failed to render hooks")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func activateHandler(link *application.LinkService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := link.Activate(r.Context()); err != nil {
			logger.Error().Err(err).Msg("Failed to activate")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "activated"})
	}
}

func deactivateHandler(link *application.LinkService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := link.Deactivate(r.Context()); err != nil {
			logger.Error().Err(err).Msg("Failed to deactivate")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
	}
}

func uninstallHandler(identity *application.IdentityService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := identity.Uninstall(r.Context()); err != nil {
			logger.Error().Err(err).Msg("Failed to uninstall")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "uninstalled"})
	}
}

func setupHandler(admin *application.AdminService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		screen, err := admin.SetupScreen(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to build setup screen")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, screen)
	}
}

func getSettingsHandler(settings *application.SettingsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := settings.Load(r.Context())
		if err != nil {
			logger.Error().Err(err).Msg("Failed to load settings")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, current)
	}
}

func updateSettingsHandler(settings *application.SettingsService, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var changes domain.Settings
		if err := json.NewDecoder(r.Body).Decode(&changes); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		updated, err := settings.Update(r.Context(), changes)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to update settings")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

// syncSubscriptionsHandler stores subscriptions pushed by the storefront
func syncSubscriptionsHandler(writer ports.SubscriptionWriter, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if writer == nil {
			http.Error(w, "Subscriptions are not enabled", http.StatusNotFound)
			return
		}

		var subs []domain.Subscription
		if err := json.NewDecoder(r.Body).Decode(&subs); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		for i := range subs {
			if subs[i].ID == "" || subs[i].OrderID == 0 {
				http.Error(w, "id and order_id are required", http.StatusBadRequest)
				return
			}
		}
		for i := range subs {
			if err := writer.SaveSubscription(r.Context(), &subs[i]); err != nil {
				logger.Error().Err(err).Str("subscriptionId", subs[i].ID).Msg("Failed to save subscription")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
		}

		writeJSON(w, http.StatusOK, map[string]int{"saved": len(subs)})
	}
}
