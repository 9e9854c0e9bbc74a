package handlers

import (
	"net/http"

	"placement/internal/app"
	"placement/internal/http/response"
)

type EventHandler struct {
	events *app.EventService
}

func NewEventHandler(events *app.EventService) *EventHandler {
	return &EventHandler{events: events}
}

// Upcoming handles GET /events/upcoming?limit=n.
func (h *EventHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		response.Error(w, err)
		return
	}
	items, err := h.events.Upcoming(r.Context(), limit)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, items)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.EventInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.events.Create(r.Context(), session, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	eventID, err := idFromPath(r, 1)
	if err != nil {
		response.Error(w, err)
		return
	}
	if err := h.events.Delete(r.Context(), session, eventID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
