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

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/canguard-project/canguard-go/pkg/envelope"
	"github.com/canguard-project/canguard-go/pkg/identity"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

const (
	contentTypeCBOR = "application/cbor"

	// defaultIngressLeeway bounds how far in the future a stamped call
	// stays submittable.
	defaultIngressLeeway = 4 * time.Minute
)

// CanisterClient stamps canister calls with a signing identity and
// submits them over HTTP. Transient transport failures are retried with
// exponential backoff; an authentication rejection from the other side is
// permanent and never retried.
type CanisterClient struct {
	endpoint      string
	id            identity.Identity
	httpClient    *http.Client
	ingressLeeway time.Duration
	maxElapsed    time.Duration
	clock         func() time.Time
}

// NewCanisterClient creates a client submitting to the given endpoint as
// the given identity. If httpClient is nil, http.DefaultClient is used.
func NewCanisterClient(endpoint string, id identity.Identity, httpClient *http.Client) *CanisterClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CanisterClient{
		endpoint:      strings.TrimRight(endpoint, "/"),
		id:            id,
		httpClient:    httpClient,
		ingressLeeway: defaultIngressLeeway,
		maxElapsed:    30 * time.Second,
		clock:         time.Now,
	}
}

// SetIngressLeeway sets how long a stamped call remains submittable.
func (c *CanisterClient) SetIngressLeeway(d time.Duration) {
	c.ingressLeeway = d
}

// SetMaxElapsed bounds the total time spent retrying one call.
func (c *CanisterClient) SetMaxElapsed(d time.Duration) {
	c.maxElapsed = d
}

// SetClock overrides the time source used for ingress expiry stamping.
func (c *CanisterClient) SetClock(clock func() time.Time) {
	c.clock = clock
}

// Sender returns the principal outgoing calls are stamped with.
func (c *CanisterClient) Sender() principal.Principal {
	return c.id.Sender()
}

// Call signs and submits one canister call and returns the raw response
// body. The envelope carries a fresh nonce so retransmissions of distinct
// calls never share a request id.
func (c *CanisterClient) Call(ctx context.Context, canisterID principal.Principal, method string, arg []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	nonce := uuid.New()
	content := envelope.CallContent{
		RequestType:   envelope.RequestTypeCall,
		CanisterID:    canisterID.Bytes(),
		MethodName:    method,
		Arg:           arg,
		Nonce:         nonce[:],
		IngressExpiry: uint64(c.clock().Add(c.ingressLeeway).UnixNano()),
	}
	env, err := envelope.Sign(c.id, content)
	if err != nil {
		return nil, fmt.Errorf("stamp call: %w", err)
	}
	body, err := env.Encode()
	if err != nil {
		return nil, fmt.Errorf("stamp call: %w", err)
	}

	url := fmt.Sprintf("%s/api/v2/canister/%s/call", c.endpoint, canisterID)
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxElapsed

	return backoff.RetryWithData(func() ([]byte, error) {
		return c.submit(ctx, url, body)
	}, backoff.WithContext(policy, ctx))
}

func (c *CanisterClient) submit(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentTypeCBOR)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failure: retryable.
		return nil, fmt.Errorf("submit call: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	switch {
	case resp.StatusCode < 300:
		return data, nil
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("server error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	default:
		// 4xx, including authentication rejections: permanent.
		return nil, backoff.Permanent(fmt.Errorf("call rejected with %d: %s", resp.StatusCode, strings.TrimSpace(string(data))))
	}
}
