package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"storefront-relay/internal/domain"
	"storefront-relay/internal/infrastructure/pubsub"

	"github.com/rs/zerolog"
)

// pixelStreamHandler streams emitted pixels as server-sent events.
// Optional filters: ?event=view,sale and ?shop=<site id>.
func pixelStreamHandler(ps *pubsub.PixelPubSub, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		filter := pubsub.PixelEventFilter{Shop: r.URL.Query().Get("shop")}
		if raw := r.URL.Query().Get("event"); raw != "" {
			for _, name := range strings.Split(raw, ",") {
				t := domain.EventType(strings.TrimSpace(name))
				if !t.Valid() {
					http.Error(w, fmt.Sprintf("unknown event type %q", name), http.StatusBadRequest)
					return
				}
				filter.Types = append(filter.Types, t)
			}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sub := ps.Subscribe(r.Context(), filter)
		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-sub.Events:
				if !ok {
					return
				}
				data, err := json.Marshal(event)
				if err != nil {
					logger.Error().Err(err).Msg("Failed to encode pixel event")
					continue
				}
				fmt.Fprintf(w, "event: pixel\ndata: %s\n\n", data)
				flusher.Flush()
			}
		}
	}
}
