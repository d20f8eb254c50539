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

package envelope

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/principal"
	"github.com/canguard-project/canguard-go/pkg/requestid"
)

// RequestTypeCall is the only request type this package authenticates.
const RequestTypeCall = "call"

// selfDescribedPrefix is the CBOR self-described tag (55799) every
// envelope on the wire starts with.
var selfDescribedPrefix = []byte{0xd9, 0xd9, 0xf7}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	// Canonical encoding is part of the wire contract: map keys sorted,
	// shortest-form integers, so equal values encode to equal bytes.
	encMode, err = cbor.EncOptions{Sort: cbor.SortCanonical}.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

// CallContent describes one canister call: the fields the request id is
// computed over and the terminal signature therefore covers.
type CallContent struct {
	RequestType   string `cbor:"request_type"`
	CanisterID    []byte `cbor:"canister_id"`
	MethodName    string `cbor:"method_name"`
	Arg           []byte `cbor:"arg"`
	Sender        []byte `cbor:"sender"`
	Nonce         []byte `cbor:"nonce,omitempty"`
	IngressExpiry uint64 `cbor:"ingress_expiry"`
}

// RequestID computes the content-derived identifier of this call via
// representation-independent hashing. Two semantically distinct calls
// yield different ids with overwhelming probability, and the result does
// not depend on field ordering. An absent nonce is omitted rather than
// hashed as empty.
func (c *CallContent) RequestID() requestid.ID {
	fields := map[string]requestid.Value{
		"request_type":   requestid.Text(c.RequestType),
		"canister_id":    requestid.Blob(c.CanisterID),
		"method_name":    requestid.Text(c.MethodName),
		"arg":            requestid.Blob(c.Arg),
		"sender":         requestid.Blob(c.Sender),
		"ingress_expiry": requestid.Nat(c.IngressExpiry),
	}
	if len(c.Nonce) > 0 {
		fields["nonce"] = requestid.Blob(c.Nonce)
	}
	return requestid.Hash(fields)
}

// Canister returns the destination canister as a Principal.
func (c *CallContent) Canister() (principal.Principal, error) {
	return principal.FromBytes(c.CanisterID)
}

// WireDelegation is the wire form of one delegation link.
type WireDelegation struct {
	Pubkey     []byte   `cbor:"pubkey"`
	Expiration uint64   `cbor:"expiration"`
	Targets    [][]byte `cbor:"targets,omitempty"`
}

// WireSignedDelegation is the wire form of a signed link.
type WireSignedDelegation struct {
	Delegation WireDelegation `cbor:"delegation"`
	Signature  []byte         `cbor:"signature"`
}

// Envelope is the authenticated request as transmitted: the call content
// plus the sender's public key, delegation chain and terminal signature.
// An anonymous envelope carries content only.
type Envelope struct {
	Content          CallContent            `cbor:"content"`
	SenderPubkey     []byte                 `cbor:"sender_pubkey,omitempty"`
	SenderSig        []byte                 `cbor:"sender_sig,omitempty"`
	SenderDelegation []WireSignedDelegation `cbor:"sender_delegation,omitempty"`
}

// Decode parses a wire envelope. Structural failures (bad prefix,
// undecodable CBOR, missing required fields, wrong request type) are
// reported as a malformed-chain error, distinct from every cryptographic
// failure kind.
func Decode(data []byte) (*Envelope, error) {
	if !bytes.HasPrefix(data, selfDescribedPrefix) {
		return nil, delegation.NewMalformedChainError("missing self-described CBOR prefix", nil)
	}
	var e Envelope
	if err := decMode.Unmarshal(data[len(selfDescribedPrefix):], &e); err != nil {
		return nil, delegation.NewMalformedChainError("undecodable envelope", err)
	}
	if e.Content.RequestType != RequestTypeCall {
		return nil, delegation.NewMalformedChainError(
			fmt.Sprintf("unexpected request type %q", e.Content.RequestType), nil)
	}
	if len(e.Content.CanisterID) == 0 {
		return nil, delegation.NewMalformedChainError("missing canister id", nil)
	}
	if e.Content.MethodName == "" {
		return nil, delegation.NewMalformedChainError("missing method name", nil)
	}
	if len(e.Content.Sender) == 0 {
		return nil, delegation.NewMalformedChainError("missing sender", nil)
	}
	return &e, nil
}

// Encode serializes the envelope in canonical CBOR behind the
// self-described prefix.
func (e *Envelope) Encode() ([]byte, error) {
	body, err := encMode.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	out := make([]byte, 0, len(selfDescribedPrefix)+len(body))
	out = append(out, selfDescribedPrefix...)
	return append(out, body...), nil
}

// IsAnonymous reports whether the envelope carries no authentication
// material at all.
func (e *Envelope) IsAnonymous() bool {
	return len(e.SenderPubkey) == 0 && len(e.SenderSig) == 0 && len(e.SenderDelegation) == 0
}

// Chain lifts the wire records into the delegation model for validation.
// An anonymous envelope has no chain; asking for one is a malformed-chain
// error.
func (e *Envelope) Chain() (*delegation.Chain, error) {
	if len(e.SenderPubkey) == 0 {
		return nil, delegation.NewMalformedChainError("missing sender public key", nil)
	}
	if len(e.SenderSig) == 0 {
		return nil, delegation.NewMalformedChainError("missing sender signature", nil)
	}

	links := make([]delegation.SignedDelegation, len(e.SenderDelegation))
	for i, wire := range e.SenderDelegation {
		if len(wire.Delegation.Pubkey) == 0 {
			return nil, delegation.NewMalformedChainError(
				fmt.Sprintf("link %d: missing delegated key", i), nil)
		}
		if len(wire.Signature) == 0 {
			return nil, delegation.NewMalformedChainError(
				fmt.Sprintf("link %d: missing signature", i), nil)
		}
		var targets []principal.Principal
		if wire.Delegation.Targets != nil {
			targets = make([]principal.Principal, len(wire.Delegation.Targets))
			for j, raw := range wire.Delegation.Targets {
				p, err := principal.FromBytes(raw)
				if err != nil {
					return nil, delegation.NewMalformedChainError(
						fmt.Sprintf("link %d: bad target %d", i, j), err)
				}
				targets[j] = p
			}
		}
		links[i] = delegation.SignedDelegation{
			Delegation: delegation.Delegation{
				Pubkey:     wire.Delegation.Pubkey,
				Expiration: wire.Delegation.Expiration,
				Targets:    targets,
			},
			Signature: wire.Signature,
		}
	}

	return &delegation.Chain{
		RootPublicKey:     e.SenderPubkey,
		Links:             links,
		TerminalSignature: e.SenderSig,
	}, nil
}

// FromChain is the inverse of Chain: it renders a validated model chain
// back into wire records, for clients assembling an envelope.
func FromChain(c *delegation.Chain) []WireSignedDelegation {
	wire := make([]WireSignedDelegation, len(c.Links))
	for i, link := range c.Links {
		var targets [][]byte
		if link.Delegation.Targets != nil {
			targets = make([][]byte, len(link.Delegation.Targets))
			for j, t := range link.Delegation.Targets {
				targets[j] = t.Bytes()
			}
		}
		wire[i] = WireSignedDelegation{
			Delegation: WireDelegation{
				Pubkey:     link.Delegation.Pubkey,
				Expiration: link.Delegation.Expiration,
				Targets:    targets,
			},
			Signature: link.Signature,
		}
	}
	return wire
}
