package api // import "github.com/joincivil/civil-tcr-registry/pkg/api"

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-tcr-registry/pkg/ledger"
	"github.com/joincivil/civil-tcr-registry/pkg/registry"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError creates an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// HandlerFunc like http.HandlerFunc, but it returns an error.
// If the returned error is httpError type, httpError.status will be responded.
// Registry errors are mapped with StatusForError, anything else is responded
// with http.StatusInternalServerError.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc converts HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := StatusForError(err)
		cause := err
		if he, ok := err.(*httpError); ok {
			status = he.status
			cause = he.cause
		}
		kind := registry.ErrorKind(cause)
		if kind == "internal" && status < http.StatusInternalServerError {
			kind = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
		}
		_ = WriteJSONStatus(w, status, &ErrorResponse{Error: kind, Message: cause.Error()})
	}
}

var errorStatus = map[error]int{
	registry.ErrNotFound:             http.StatusNotFound,
	registry.ErrChallengeNotFound:    http.StatusNotFound,
	registry.ErrNotAVoter:            http.StatusNotFound,
	registry.ErrAlreadyExists:        http.StatusConflict,
	registry.ErrAlreadyChallenged:    http.StatusConflict,
	registry.ErrNoOpenChallenge:      http.StatusConflict,
	registry.ErrVotingClosed:         http.StatusConflict,
	registry.ErrAlreadyVoted:         http.StatusConflict,
	registry.ErrAlreadyResolved:      http.StatusConflict,
	registry.ErrAlreadyClaimed:       http.StatusConflict,
	registry.ErrInsufficientDeposit:  http.StatusBadRequest,
	registry.ErrZeroStake:            http.StatusBadRequest,
	ledger.ErrInvalidAmount:          http.StatusBadRequest,
	registry.ErrNotReady:             http.StatusUnprocessableEntity,
	registry.ErrChallengeNotResolved: http.StatusUnprocessableEntity,
	registry.ErrNotOwner:             http.StatusForbidden,
	ledger.ErrInsufficientAllowance:  http.StatusPaymentRequired,
	ledger.ErrInsufficientBalance:    http.StatusPaymentRequired,
}

// StatusForError returns the http status for a registry or ledger error
func StatusForError(err error) int {
	status, ok := errorStatus[errors.Cause(err)]
	if !ok {
		return http.StatusInternalServerError
	}
	return status
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parses a JSON object using strict mode.
func ParseJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// WriteJSONStatus responds an object in JSON encoding with status.
func WriteJSONStatus(w http.ResponseWriter, status int, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(obj)
}
