package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/sse"
)

const defaultKeepalive = 30 * time.Second

type TrackingHandler interface {
	ListLiveLocations(w http.ResponseWriter, r *http.Request)
	GetStreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type trackingHandlerImpl struct {
	trackingService tracking.TrackingService
	jwtService      jwt.Service
	hub             *sse.Hub
	keepalive       time.Duration
}

func NewTrackingHandler(trackingService tracking.TrackingService, jwtService jwt.Service, hub *sse.Hub) TrackingHandler {
	return &trackingHandlerImpl{
		trackingService: trackingService,
		jwtService:      jwtService,
		hub:             hub,
		keepalive:       defaultKeepalive,
	}
}

// ListLiveLocations implements TrackingHandler.
func (h *trackingHandlerImpl) ListLiveLocations(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := h.trackingService.ListLiveLocations(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetStreamToken implements TrackingHandler.
func (h *trackingHandlerImpl) GetStreamToken(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(actor)
	if err != nil {
		slog.Error("Failed to generate stream token", "error", err)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, tracking.StreamTokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

// Stream implements TrackingHandler. It sends a snapshot of live locations,
// then every check-in, location and check-out event visible to the caller.
func (h *trackingHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	// EventSource cannot set headers, so the token comes in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	actor, err := h.jwtService.ValidateStreamToken(tokenStr)
	if err != nil {
		response.Unauthorized(w, "Invalid token")
		return
	}
	if !user.HasPermission(actor.Role, user.PermissionLiveLocationsView) {
		response.HandleError(w, tracking.ErrForbidden)
		return
	}

	channel := sse.AdminChannel
	if !actor.IsPlatformAdmin() {
		if actor.CompanyID == "" {
			response.HandleError(w, user.ErrCompanyIDRequired)
			return
		}
		channel = sse.CompanyChannel(actor.CompanyID)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	snapshot, err := h.trackingService.ListLiveLocations(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	events, cleanup := h.hub.Subscribe(channel)
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	writeEvent(w, "snapshot", snapshot)
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, event.Event, event.Data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to encode stream event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
