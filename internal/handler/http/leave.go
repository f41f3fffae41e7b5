package http

import (
	"net/http"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	RequestLeave(w http.ResponseWriter, r *http.Request)
	MyLeaves(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	UpdateStatus(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &LeaveHandlerImpl{leaveService: leaveService}
}

// RequestLeave implements LeaveHandler.
func (l *LeaveHandlerImpl) RequestLeave(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req leave.CreateLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := l.leaveService.RequestLeave(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave requested successfully", result)
}

// MyLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) MyLeaves(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	result, err := l.leaveService.MyLeaves(r.Context(), actor, queryInt(r, "page", 1), queryInt(r, "limit", 0))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	filter := leave.ListLeaveFilter{
		CompanyID: queryString(r, "companyId"),
		StaffID:   queryString(r, "staffId"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 0),
	}
	if status := queryString(r, "status"); status != nil {
		s := leave.Status(*status)
		filter.Status = &s
	}

	result, err := l.leaveService.ListRequests(r.Context(), actor, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// UpdateStatus implements LeaveHandler.
func (l *LeaveHandlerImpl) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req leave.UpdateLeaveStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := l.leaveService.UpdateStatus(r.Context(), actor, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave status updated", result)
}

type deleteLeaveRequest struct {
	LeaveID string `json:"leaveId"`
}

// Delete implements LeaveHandler. The leave ID comes in the body, or as ?leaveId=.
func (l *LeaveHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}
	var req deleteLeaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.LeaveID == "" {
		req.LeaveID = r.URL.Query().Get("leaveId")
	}
	if req.LeaveID == "" {
		response.BadRequest(w, "leaveId required", nil)
		return
	}

	if err := l.leaveService.Delete(r.Context(), actor, req.LeaveID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave deleted", nil)
}
