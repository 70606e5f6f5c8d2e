package main

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"events-venues/data/models"
)

var (
	errInvalidID        = errors.New("id must be a positive integer")
	errRouteNotFound    = errors.New("the requested resource could not be found")
	errMethodNotAllowed = errors.New("the method is not supported for this resource")
	errInternal         = errors.New("the server encountered a problem and could not process your request")
)

// statusFor maps a catalogue error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// serviceError reports err to the client. Unexpected errors are logged and
// replaced by a generic message.
func (app *application) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		app.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		err = errInternal
	}
	app.SendErrorJSON(w, status, err)
}

func (app *application) badRequest(w http.ResponseWriter, err error) {
	app.SendErrorJSON(w, http.StatusBadRequest, err)
}

func (app *application) notFound(w http.ResponseWriter, _ *http.Request) {
	app.SendErrorJSON(w, http.StatusNotFound, errRouteNotFound)
}

func (app *application) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	app.SendErrorJSON(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
}
