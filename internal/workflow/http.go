package workflow

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/plantstock/plantstock/internal/platform/httpx"
	"github.com/plantstock/plantstock/internal/shared"
)

// MessageBadRequest is shown when a mutation body is not valid JSON for its form.
const MessageBadRequest = "Invalid request body"

// Envelope is the JSON body of every mutation response.
type Envelope struct {
	Notification *Notification `json:"notification,omitempty"`
	Data         any           `json:"data,omitempty"`
}

// HTTPStatus maps a Run result onto a response status.
func HTTPStatus(outcome Outcome, err error, created bool) int {
	switch outcome {
	case OutcomeSucceeded:
		if created {
			return http.StatusCreated
		}
		return http.StatusOK
	case OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case OutcomeDenied:
		return http.StatusForbidden
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Respond writes the last notification captured by rec together with data.
func Respond(w http.ResponseWriter, status int, rec *Recorder, data any) {
	httpx.JSON(w, status, Envelope{Notification: rec.Last(), Data: data})
}

// RejectRequest answers a mutation whose body could not be decoded. The caller
// still gets exactly one error notification, and nothing is audited.
func (r *Runner) RejectRequest(w http.ResponseWriter, err error) {
	duration := DefaultDuration
	if r != nil {
		duration = r.duration
		r.logger.Debug("request body rejected", slog.Any("error", err))
	}
	rec := &Recorder{}
	rec.Notify(MessageBadRequest, duration, KindError)
	Respond(w, http.StatusBadRequest, rec, nil)
}
