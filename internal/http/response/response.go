package response

import (
	"encoding/json"
	"net/http"

	"placement/internal/common"
)

type envelope struct {
	Data   interface{}       `json:"data"`
	Error  string            `json:"error,omitempty"`
	Code   common.Code       `json:"code,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ErrorCounter is notified about every 5xx response.
type ErrorCounter interface {
	IncErrors()
}

var errorCounter ErrorCounter

func SetErrorCollector(counter ErrorCounter) {
	errorCounter = counter
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, envelope{Data: data})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func Error(w http.ResponseWriter, err error) {
	appErr, ok := common.As(err)
	if !ok {
		appErr = common.NewError(common.CodeInternal, "internal error", err)
	}
	status := StatusFor(appErr.Code)
	message := appErr.Message
	if status >= http.StatusInternalServerError {
		message = "internal error"
		if errorCounter != nil {
			errorCounter.IncErrors()
		}
	}
	write(w, status, envelope{Error: message, Code: appErr.Code, Fields: appErr.Fields})
}

func StatusFor(code common.Code) int {
	switch code {
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeClosed:
		return http.StatusGone
	case common.CodeIneligible, common.CodeForbidden:
		return http.StatusForbidden
	case common.CodeAlreadyApplied, common.CodeConflict:
		return http.StatusConflict
	case common.CodeValidation:
		return http.StatusBadRequest
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
