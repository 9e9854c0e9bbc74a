package handlers

import (
	"net/http"
	"time"

	"placement/internal/app"
	"placement/internal/common"
	"placement/internal/http/metrics"
	"placement/internal/http/middleware"
	"placement/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
	limiter      middleware.Limiter
	metrics      *metrics.Collector
}

func NewApplicationHandler(applications *app.ApplicationService, limiter middleware.Limiter, collector *metrics.Collector) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, limiter: limiter, metrics: collector}
}

// Apply handles POST /jobs/{id}/apply.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.ApplyInput
	if err := decodeOptionalJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if err := h.applications.EnsureOpen(r.Context(), jobID); err != nil {
		h.reject(w, err)
		return
	}
	if h.limiter != nil {
		key := "apply:" + jobID.String() + ":" + session.UserID.String()
		if !h.limiter.Allow(key, 3, time.Minute) {
			response.Error(w, common.NewError(common.CodeRateLimited, "apply rate limit exceeded", nil))
			return
		}
	}
	created, err := h.applications.Apply(r.Context(), session, jobID, req)
	if err != nil {
		h.reject(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.IncApplications()
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *ApplicationHandler) reject(w http.ResponseWriter, err error) {
	if h.metrics != nil {
		switch common.CodeOf(err) {
		case common.CodeClosed, common.CodeIneligible, common.CodeAlreadyApplied:
			h.metrics.IncRejections()
		}
	}
	response.Error(w, err)
}

func (h *ApplicationHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	jobID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.applications.CheckEligibility(r.Context(), session, jobID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *ApplicationHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.applications.ListByStudent(r.Context(), session)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	query := r.URL.Query()
	items, err := h.applications.List(r.Context(), session, query.Get("job_id"), query.Get("status"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.applications.Get(r.Context(), session, applicationID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

type updateStatusRequest struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	applicationID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	if req.Status == "" {
		response.Error(w, common.NewValidationError("invalid request", map[string]string{"status": "status is required"}))
		return
	}
	updated, err := h.applications.UpdateStatus(r.Context(), session, applicationID, req.Status, req.Feedback)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}
