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
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/envelope"
	"github.com/canguard-project/canguard-go/pkg/identity"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

var (
	testNow      = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	testCanister = principal.MustFromBytes([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0xd2, 0x01})
)

func signedBody(t *testing.T, id identity.Identity) []byte {
	t.Helper()
	env, err := envelope.Sign(id, envelope.CallContent{
		RequestType:   envelope.RequestTypeCall,
		CanisterID:    testCanister.Bytes(),
		MethodName:    "greet",
		Arg:           []byte{0x44, 0x49, 0x44, 0x4c, 0x00, 0x00},
		IngressExpiry: uint64(testNow.Add(4 * time.Minute).UnixNano()),
	})
	require.NoError(t, err)
	body, err := env.Encode()
	require.NoError(t, err)
	return body
}

func fixedClockMiddleware() *EnvelopeAuthMiddleware {
	m := NewEnvelopeAuthMiddleware()
	m.SetClock(func() time.Time { return testNow })
	return m
}

// echoHandler writes the verified caller's text form back.
func echoHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, ok := GetPrincipalFromContext(r.Context())
		require.True(t, ok, "handler must see a verified caller")
		io.WriteString(w, caller.String())
	})
}

func TestWrapAcceptsSignedEnvelope(t *testing.T) {
	signer, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)

	handler := fixedClockMiddleware().Wrap(echoHandler(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", bytes.NewReader(signedBody(t, signer)))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, signer.Sender().String(), rec.Body.String())
}

func TestWrapAcceptsDelegatedEnvelope(t *testing.T) {
	root, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	session, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	link, err := identity.Delegate(root, session.PublicKey(), testNow.Add(time.Hour),
		[]principal.Principal{testCanister})
	require.NoError(t, err)
	delegated, err := identity.NewDelegatedIdentity(root.PublicKey(), []delegation.SignedDelegation{link}, session)
	require.NoError(t, err)

	handler := fixedClockMiddleware().Wrap(echoHandler(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", bytes.NewReader(signedBody(t, delegated)))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, root.Sender().String(), rec.Body.String(), "delegated calls act as the root principal")
}

func TestWrapRejectsExpiredDelegation(t *testing.T) {
	root, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	session, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	link, err := identity.Delegate(root, session.PublicKey(), testNow.Add(-time.Minute), nil)
	require.NoError(t, err)
	delegated, err := identity.NewDelegatedIdentity(root.PublicKey(), []delegation.SignedDelegation{link}, session)
	require.NoError(t, err)

	var seen error
	m := fixedClockMiddleware()
	m.SetErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
		seen = err
		http.Error(w, "no", http.StatusUnauthorized)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", bytes.NewReader(signedBody(t, delegated)))
	m.Wrap(echoHandler(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var chainErr *delegation.ChainError
	require.True(t, errors.As(seen, &chainErr))
	assert.Equal(t, delegation.KindDelegationExpired, chainErr.Kind)
	assert.Equal(t, 0, chainErr.Index)
}

func TestWrapRejectsCorruptedBody(t *testing.T) {
	signer, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	body := signedBody(t, signer)
	body[len(body)-1] ^= 0x01

	handler := fixedClockMiddleware().Wrap(echoHandler(t))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", bytes.NewReader(body))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWrapMissingBody(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/call", nil)
		fixedClockMiddleware().Wrap(echoHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("anonymous when optional", func(t *testing.T) {
		m := fixedClockMiddleware()
		m.SetOptional(true)
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/call", nil)
		m.Wrap(echoHandler(t)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, principal.Anonymous().String(), rec.Body.String())
	})
}

func TestAuthenticateAnonymousEnvelope(t *testing.T) {
	env, err := envelope.Sign(identity.AnonymousIdentity{}, envelope.CallContent{
		RequestType: envelope.RequestTypeCall,
		CanisterID:  testCanister.Bytes(),
		MethodName:  "greet",
	})
	require.NoError(t, err)
	body, err := env.Encode()
	require.NoError(t, err)

	caller, err := fixedClockMiddleware().Authenticate(body)
	require.NoError(t, err)
	assert.True(t, caller.IsAnonymous())
}

func TestAuthenticateSenderMismatch(t *testing.T) {
	t.Run("unsigned envelope claiming a real principal", func(t *testing.T) {
		imposter, err := identity.GenerateEd25519Identity(nil)
		require.NoError(t, err)
		env := &envelope.Envelope{Content: envelope.CallContent{
			RequestType: envelope.RequestTypeCall,
			CanisterID:  testCanister.Bytes(),
			MethodName:  "greet",
			Sender:      imposter.Sender().Bytes(),
		}}
		body, err := env.Encode()
		require.NoError(t, err)

		_, err = fixedClockMiddleware().Authenticate(body)
		var chainErr *delegation.ChainError
		require.ErrorAs(t, err, &chainErr)
		assert.Equal(t, delegation.KindSenderMismatch, chainErr.Kind)
	})

	t.Run("signed envelope with a forged sender", func(t *testing.T) {
		signer, err := identity.GenerateEd25519Identity(nil)
		require.NoError(t, err)
		other, err := identity.GenerateEd25519Identity(nil)
		require.NoError(t, err)

		env, err := envelope.Sign(signer, envelope.CallContent{
			RequestType:   envelope.RequestTypeCall,
			CanisterID:    testCanister.Bytes(),
			MethodName:    "greet",
			IngressExpiry: uint64(testNow.Add(time.Minute).UnixNano()),
		})
		require.NoError(t, err)
		// Swap the declared sender after signing. The request id changes
		// with it, so the terminal signature no longer matches.
		env.Content.Sender = other.Sender().Bytes()
		body, err := env.Encode()
		require.NoError(t, err)

		_, err = fixedClockMiddleware().Authenticate(body)
		var chainErr *delegation.ChainError
		require.ErrorAs(t, err, &chainErr)
		assert.Equal(t, delegation.KindInvalidTerminalSignature, chainErr.Kind)
	})
}

func TestWrapRestoresBodyForHandler(t *testing.T) {
	signer, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	body := signedBody(t, signer)

	var handlerSaw []byte
	handler := fixedClockMiddleware().Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerSaw, _ = io.ReadAll(r.Body)
	}))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/call", bytes.NewReader(body))
	handler.ServeHTTP(rec, req)

	assert.Equal(t, body, handlerSaw)
}
