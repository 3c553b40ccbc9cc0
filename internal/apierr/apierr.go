package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

func NotFound() *Error {
	return &Error{Status: http.StatusNotFound}
}

func Forbidden() *Error {
	return &Error{Status: http.StatusForbidden}
}

func Unauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized}
}

// Write renders the shared error payload: the status phrase under "error",
// plus an optional "message".
func Write(c *gin.Context, status int, message string) {
	payload := gin.H{"error": http.StatusText(status)}
	if message != "" {
		payload["message"] = message
	}
	c.JSON(status, payload)
}

// WriteErr maps an error onto the shared payload. Non-apierr errors are
// reported as a 500 without leaking their text.
func WriteErr(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		status := apiErr.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		Write(c, status, apiErr.Message)
		return
	}
	Write(c, http.StatusInternalServerError, "")
}
