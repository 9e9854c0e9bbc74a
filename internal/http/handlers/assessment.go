package handlers

import (
	"net/http"

	"placement/internal/app"
	"placement/internal/http/response"
)

type AssessmentHandler struct {
	assessments *app.AssessmentService
}

func NewAssessmentHandler(assessments *app.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

func (h *AssessmentHandler) List(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.assessments.List(r.Context(), session)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *AssessmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.assessments.Get(r.Context(), session, assessmentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *AssessmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.AssessmentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.assessments.Create(r.Context(), session, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AssessmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.AssessmentInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	updated, err := h.assessments.Update(r.Context(), session, assessmentID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, updated)
}

func (h *AssessmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.assessments.Delete(r.Context(), session, assessmentID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.SubmitInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.assessments.Submit(r.Context(), session, assessmentID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *AssessmentHandler) Submission(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	item, err := h.assessments.Submission(r.Context(), session, assessmentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, item)
}

func (h *AssessmentHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	assessmentID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.assessments.Submissions(r.Context(), session, assessmentID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

// Grade handles POST /submissions/{id}/grade.
func (h *AssessmentHandler) Grade(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	submissionID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.GradeInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	graded, err := h.assessments.Grade(r.Context(), session, submissionID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, graded)
}
