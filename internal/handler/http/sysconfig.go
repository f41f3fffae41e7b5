package http

import (
	"net/http"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/sysconfig"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/response"
)

type SystemConfigHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type systemConfigHandlerImpl struct {
	configService sysconfig.SystemConfigService
}

func NewSystemConfigHandler(configService sysconfig.SystemConfigService) SystemConfigHandler {
	return &systemConfigHandlerImpl{configService: configService}
}

// Get implements SystemConfigHandler.
func (h *systemConfigHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	cfg, err := h.configService.Get(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, cfg)
}

// Update implements SystemConfigHandler.
func (h *systemConfigHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req sysconfig.UpdateSystemConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg, err := h.configService.Update(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "System configuration updated", cfg)
}
