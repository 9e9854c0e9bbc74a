package handlers

import (
	"context"
	"net/http"

	"placement/internal/app"
	"placement/internal/domain/auth"
	"placement/internal/domain/user"
	"placement/internal/http/response"
)

type AdminHandler struct {
	auth  *app.AuthService
	users *app.UserService
}

func NewAdminHandler(auth *app.AuthService, users *app.UserService) *AdminHandler {
	return &AdminHandler{auth: auth, users: users}
}

// InviteStudents registers every address found in a free-text list.
func (h *AdminHandler) InviteStudents(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.InviteInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	result, err := h.auth.InviteStudents(r.Context(), session, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, result)
}

func (h *AdminHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	var req app.AdminInput
	if err := decodeJSON(r, &req); err != nil {
		response.Error(w, err)
		return
	}
	created, err := h.auth.RegisterAdmin(r.Context(), session, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, created)
}

// ListStudents handles GET /admin/students?department=&limit=&offset=.
func (h *AdminHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	h.listDirectory(w, r, h.users.ListStudents)
}

// ListUsers handles GET /admin/users?role=&department=&limit=&offset=.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	h.listDirectory(w, r, h.users.ListUsers)
}

func (h *AdminHandler) listDirectory(w http.ResponseWriter, r *http.Request, list func(context.Context, auth.Session, app.DirectoryQuery) ([]user.DirectoryEntry, error)) {
	session, err := sessionFrom(r)
	if err != nil {
		response.Error(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		response.Error(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		response.Error(w, err)
		return
	}
	query := r.URL.Query()
	entries, err := list(r.Context(), session, app.DirectoryQuery{
		Role:       query.Get("role"),
		Department: query.Get("department"),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, entries)
}
