// Copyright (C) 2025 Canguard Project
//
// This file is part of canguard-go.
//
// canguard-go is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// canguard-go is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with canguard-go.  If not, see <https://www.gnu.org/licenses/>.

package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/envelope"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

type contextKey string

const callerKey contextKey = "verified_caller"

// ErrorHandler handles verification errors.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// EnvelopeAuthMiddleware authenticates CBOR call envelopes: it decodes
// the body, validates the delegation chain against the request id, checks
// the declared sender, and exposes the verified principal on the request
// context. The clock is a field so tests can pin the validation instant.
type EnvelopeAuthMiddleware struct {
	validator    *delegation.Validator
	clock        func() time.Time
	errorHandler ErrorHandler
	optional     bool
}

// NewEnvelopeAuthMiddleware creates middleware backed by the default
// chain validator and the wall clock.
func NewEnvelopeAuthMiddleware() *EnvelopeAuthMiddleware {
	return &EnvelopeAuthMiddleware{
		validator:    delegation.NewValidator(),
		clock:        time.Now,
		errorHandler: defaultErrorHandler,
		optional:     false,
	}
}

// NewEnvelopeAuthMiddlewareWithValidator creates middleware with a custom
// validator.
func NewEnvelopeAuthMiddlewareWithValidator(v *delegation.Validator) *EnvelopeAuthMiddleware {
	m := NewEnvelopeAuthMiddleware()
	m.validator = v
	return m
}

// SetErrorHandler sets a custom error handler.
func (m *EnvelopeAuthMiddleware) SetErrorHandler(handler ErrorHandler) {
	m.errorHandler = handler
}

// SetOptional sets whether an empty request body is allowed through as an
// anonymous caller instead of being rejected.
func (m *EnvelopeAuthMiddleware) SetOptional(optional bool) {
	m.optional = optional
}

// SetClock overrides the time source used for expiry checks.
func (m *EnvelopeAuthMiddleware) SetClock(clock func() time.Time) {
	m.clock = clock
}

// Wrap wraps an HTTP handler with envelope authentication.
func (m *EnvelopeAuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
		}
		// Restore the body for the wrapped handler.
		r.Body = io.NopCloser(bytes.NewReader(body))

		if len(body) == 0 {
			if m.optional {
				next.ServeHTTP(w, r.WithContext(
					context.WithValue(r.Context(), callerKey, principal.Anonymous())))
				return
			}
			m.errorHandler(w, r, fmt.Errorf("missing request envelope"))
			return
		}

		caller, err := m.Authenticate(body)
		if err != nil {
			r.Body = io.NopCloser(bytes.NewReader(body))
			m.errorHandler(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(
			context.WithValue(r.Context(), callerKey, caller)))
	})
}

// Authenticate verifies one wire envelope and returns the caller's
// principal. Anonymous envelopes authenticate as the anonymous principal,
// provided they declare the anonymous sender.
func (m *EnvelopeAuthMiddleware) Authenticate(body []byte) (principal.Principal, error) {
	env, err := envelope.Decode(body)
	if err != nil {
		return principal.Principal{}, err
	}

	sender, err := principal.FromBytes(env.Content.Sender)
	if err != nil {
		return principal.Principal{}, delegation.NewMalformedChainError("bad sender", err)
	}

	if env.IsAnonymous() {
		if !sender.IsAnonymous() {
			return principal.Principal{}, &delegation.ChainError{
				Kind:   delegation.KindSenderMismatch,
				Index:  -1,
				Reason: "unsigned envelope declares a non-anonymous sender",
			}
		}
		return principal.Anonymous(), nil
	}

	chain, err := env.Chain()
	if err != nil {
		return principal.Principal{}, err
	}

	target, err := env.Content.Canister()
	if err != nil {
		return principal.Principal{}, delegation.NewMalformedChainError("bad canister id", err)
	}

	verified, err := m.validator.Validate(chain, env.Content.RequestID(), m.clock(), &target)
	if err != nil {
		return principal.Principal{}, err
	}
	if sender != verified.Principal {
		return principal.Principal{}, &delegation.ChainError{
			Kind:   delegation.KindSenderMismatch,
			Index:  -1,
			Reason: fmt.Sprintf("declared sender %s, authenticated %s", sender, verified.Principal),
		}
	}
	return verified.Principal, nil
}

// GetPrincipalFromContext extracts the verified caller from a request
// context wrapped by this middleware.
func GetPrincipalFromContext(ctx context.Context) (principal.Principal, bool) {
	caller, ok := ctx.Value(callerKey).(principal.Principal)
	return caller, ok
}

// defaultErrorHandler is the default error handler.
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, fmt.Sprintf("Unauthorized: %s", err.Error()), http.StatusUnauthorized)
}
