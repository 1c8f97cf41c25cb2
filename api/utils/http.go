// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vechain/stakepool/identity"
	"github.com/vechain/stakepool/pool"
	"github.com/vechain/stakepool/staker"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// HTTPError create an error with http status code.
func HTTPError(cause error, status int) error {
	return &httpError{
		cause:  cause,
		status: status,
	}
}

// BadRequest convenience method to create http bad request error.
func BadRequest(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusBadRequest,
	}
}

// Forbidden convenience method to create http forbidden error.
func Forbidden(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusForbidden,
	}
}

// NotFound convenience method to create http not found error.
func NotFound(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusNotFound,
	}
}

// Unauthorized convenience method to create http unauthorized error.
func Unauthorized(cause error) error {
	return &httpError{
		cause:  cause,
		status: http.StatusUnauthorized,
	}
}

// StakerError maps an error returned by a staker operation to its http status.
// Errors not raised by the staker are returned unchanged.
func StakerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, staker.ErrInvalidLockPeriod), errors.Is(err, staker.ErrStakeOverflow):
		return BadRequest(err)
	case errors.Is(err, staker.ErrLockPeriodNotExpired):
		return Forbidden(err)
	case errors.Is(err, staker.ErrNoDepositFound):
		return NotFound(err)
	case errors.Is(err, staker.ErrNoStakerFound):
		return HTTPError(err, http.StatusConflict)
	case errors.Is(err, staker.ErrLedgerTransferFailed):
		return HTTPError(err, http.StatusBadGateway)
	default:
		return err
	}
}

// Caller resolves the caller of r, answering 401 when it cannot be resolved.
func Caller(resolver identity.Resolver, r *http.Request) (pool.Address, error) {
	caller, err := resolver.Resolve(r)
	if err != nil {
		if errors.Is(err, identity.ErrUnauthenticated) {
			return pool.Address{}, Unauthorized(err)
		}
		return pool.Address{}, err
	}
	return caller, nil
}

// HandlerFunc like http.HandlerFunc, bu it returns an error.
// If the returned error is httpError type, httpError.status will be responded,
// otherwise http.StatusInternalServerError responded.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// WrapHandlerFunc convert HandlerFunc to http.HandlerFunc.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err != nil {
			var he *httpError
			if errors.As(err, &he) {
				if he.cause != nil {
					http.Error(w, he.cause.Error(), he.status)
				} else {
					w.WriteHeader(he.status)
				}
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// content types
const (
	JSONContentType = "application/json; charset=utf-8"
)

// ParseJSON parse a JSON object using strict mode.
func ParseJSON(r io.Reader, v any) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON response an object in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj any) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

// M shortcut for type map[string]any.
type M map[string]any
