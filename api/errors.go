package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skryldev/jobly/db"
	"github.com/Skryldev/jobly/repo"
)

// Error carries an HTTP status. Handlers return it, or any other error,
// and the router renders the result with writeError.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string, err error) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Err: err}
}

var (
	errUnauthorized = &Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
	errNotFound     = &Error{Status: http.StatusNotFound, Message: "Not Found"}
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error struct {
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

// classify maps err onto a status and a client-safe message. Anything not
// recognised is a 500 whose detail stays in the logs.
func classify(err error) (int, string) {
	var (
		apiErr *Error
		nf     *repo.NotFoundError
		dup    *repo.DuplicateError
		verrs  validator.ValidationErrors
	)
	switch {
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if errors.As(apiErr.Err, &verrs) {
			msg = validationMessage(verrs)
		}
		return apiErr.Status, msg
	case errors.As(err, &verrs):
		return http.StatusBadRequest, validationMessage(verrs)
	case errors.As(err, &nf):
		return http.StatusNotFound, nf.Error()
	case db.IsNotFound(err):
		return http.StatusNotFound, "Not Found"
	case errors.As(err, &dup):
		return http.StatusBadRequest, dup.Error()
	case db.IsEmptyUpdate(err):
		return http.StatusBadRequest, "No data"
	case errors.Is(err, repo.ErrInvalidCredentials):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, repo.ErrInvalidFilter):
		return http.StatusBadRequest, strings.TrimPrefix(err.Error(), repo.ErrInvalidFilter.Error()+": ")
	case db.IsForeignKeyViolation(err):
		return http.StatusBadRequest, "referenced record does not exist"
	case db.IsCheckViolation(err):
		return http.StatusBadRequest, "value out of range"
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// writeError renders err without logging it.
func writeError(w http.ResponseWriter, err error) int {
	status, msg := classify(err)
	var body errorBody
	body.Error.Message = msg
	body.Error.Status = status
	writeJSON(w, status, body)
	return status
}
