package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"placement/internal/common"
	"placement/internal/domain/auth"
	"placement/internal/http/middleware"
)

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return common.NewError(common.CodeValidation, "request body is required", nil)
		}
		return decodeError(err)
	}
	return nil
}

// decodeOptionalJSON leaves dst untouched when the body is empty, whatever the framing.
func decodeOptionalJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return common.NewError(common.CodeValidation, "request body too large", nil)
	}
	return common.NewError(common.CodeValidation, "invalid json", err)
}

// idFromPath parses the path segment at index (zero-based, leading slash ignored) as a uuid.
func idFromPath(r *http.Request, index int) (common.UUID, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if index < 0 || index >= len(parts) {
		return "", common.NewError(common.CodeNotFound, "resource not found", nil)
	}
	id, err := common.ParseUUID(parts[index])
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return id, nil
}

func sessionFrom(r *http.Request) (auth.Session, error) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return auth.Session{}, errUnauthorized()
	}
	return session, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, common.NewValidationError("invalid "+key, map[string]string{key: key + " must be a non-negative integer"})
	}
	return parsed, nil
}
