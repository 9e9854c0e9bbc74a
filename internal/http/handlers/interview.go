package handlers

import (
	"context"
	"net/http"

	"placement/internal/app"
	"placement/internal/common"
	"placement/internal/domain/auth"
	"placement/internal/domain/interview"
	"placement/internal/http/response"
)

type InterviewHandler struct {
	interviews *app.InterviewService
}

func NewInterviewHandler(interviews *app.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviews: interviews}
}

func (h *InterviewHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.interviews.List(r.Context(), session)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	interviewID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.interviews.Get(r.Context(), session, interviewID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *InterviewHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.InterviewInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.interviews.Schedule(r.Context(), session, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *InterviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req app.InterviewInput
	h.withID(w, r, &req, func(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
		return h.interviews.Update(ctx, session, id, req)
	})
}

func (h *InterviewHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.withID(w, r, nil, func(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
		return h.interviews.Accept(ctx, session, id)
	})
}

func (h *InterviewHandler) RequestReschedule(w http.ResponseWriter, r *http.Request) {
	var req app.RescheduleInput
	h.withID(w, r, &req, func(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
		return h.interviews.RequestReschedule(ctx, session, id, req)
	})
}

func (h *InterviewHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req app.ReasonInput
	h.withID(w, r, &req, func(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
		return h.interviews.Cancel(ctx, session, id, req)
	})
}

func (h *InterviewHandler) AddFeedback(w http.ResponseWriter, r *http.Request) {
	var req app.FeedbackInput
	h.withID(w, r, &req, func(ctx context.Context, session auth.Session, id common.UUID) (*interview.Interview, error) {
		return h.interviews.AddFeedback(ctx, session, id, req)
	})
}

// withID resolves the session and the interview id, decodes body into req when given, then runs fn.
func (h *InterviewHandler) withID(w http.ResponseWriter, r *http.Request, req interface{}, fn func(context.Context, auth.Session, common.UUID) (*interview.Interview, error)) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	interviewID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if req != nil {
		if err := decodeJSON(r, req); err != nil {
			response.Error(w, err)
			return
		}
	}
	item, err := fn(r.Context(), session, interviewID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}
