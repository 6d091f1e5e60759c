package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Application error codes. Each one names a distinct outcome the http layer can
// present differently. Anything that is not an *Error is treated as EINTERNAL.
const (
	EDUPLICATECREDENTIAL = "duplicate_credential"
	EAUTHFAILURE         = "auth_failure"
	ESELFFOLLOW          = "self_follow"
	EALREADYFOLLOWING    = "already_following"
	ENOTFOLLOWING        = "not_following"
	EALREADYLIKED        = "already_liked"
	ENOTLIKED            = "not_liked"
	ENOTFOUND            = "not_found"
	EOWNERNOTFOUND       = "owner_not_found"
	EFORBIDDEN           = "forbidden"
	EUNAUTHORIZED        = "unauthorized"
	EEMPTYTEXT           = "empty_text"
	ETEXTTOOLONG         = "text_too_long"
	EINVALID             = "invalid"
	EINTERNAL            = "internal"
)

// codes maps an error code to the http status it is returned with.
var codes = map[string]int{
	EDUPLICATECREDENTIAL: http.StatusConflict,
	EAUTHFAILURE:         http.StatusUnauthorized,
	ESELFFOLLOW:          http.StatusBadRequest,
	EALREADYFOLLOWING:    http.StatusConflict,
	ENOTFOLLOWING:        http.StatusBadRequest,
	EALREADYLIKED:        http.StatusConflict,
	ENOTLIKED:            http.StatusBadRequest,
	ENOTFOUND:            http.StatusNotFound,
	EOWNERNOTFOUND:       http.StatusNotFound,
	EFORBIDDEN:           http.StatusForbidden,
	EUNAUTHORIZED:        http.StatusUnauthorized,
	EEMPTYTEXT:           http.StatusBadRequest,
	ETEXTTOOLONG:         http.StatusBadRequest,
	EINVALID:             http.StatusBadRequest,
	EINTERNAL:            http.StatusInternalServerError,
}

// Error represents an application-specific error. The Message is safe to show
// to the end user, the Code is meant for machines.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("warbler error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Is reports whether err carries the given code.
func Is(err error, code string) bool {
	return err != nil && ErrorCode(err) == code
}

// StatusCode returns the http status belonging to an error code.
func StatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the json body written by ReturnError.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody holds the code and the public message of an error.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ReturnError writes an error as json along with the http status matching its code.
// Internal errors are logged, and their details are never sent to the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)
	if code == EINTERNAL {
		LogError(r, err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(code))
	if err := json.NewEncoder(w).Encode(&ErrorResponse{Error: ErrorBody{Code: code, Message: message}}); err != nil {
		LogError(r, err)
	}
}

// LogError logs an error through the logger attached to the request's context.
func LogError(r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request error")
}
