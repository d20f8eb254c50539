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

package delegation

import (
	"time"

	"github.com/canguard-project/canguard-go/pkg/principal"
	"github.com/canguard-project/canguard-go/pkg/requestid"
)

// MaxChainLength is the maximum number of links a chain may carry. Longer
// chains are rejected as malformed before any link is examined.
const MaxChainLength = 20

// Domain separator prefixes, each a length byte followed by ASCII. These
// are frozen wire constants: every signature in the system is computed
// over one of them plus a request id, never over raw structure bytes.
const (
	domainSepAuthDelegation = "\x1aic-request-auth-delegation"
	domainSepRequest        = "\x0aic-request"
)

// Delegation is one link of a chain: a grant permitting delegated key
// holders to act with the issuer's authority until an expiration instant,
// optionally restricted to a set of target canisters. Values are immutable
// once constructed.
type Delegation struct {
	// Pubkey is the canonical DER encoding of the delegated public key.
	Pubkey []byte
	// Expiration is nanoseconds since the Unix epoch. A delegation is
	// usable strictly before this instant.
	Expiration uint64
	// Targets restricts which canisters the delegated key may address.
	// nil means unrestricted scope for this link.
	Targets []principal.Principal
}

// NewDelegation builds a Delegation expiring at the given instant.
func NewDelegation(delegatedKeyDER []byte, expiration time.Time, targets []principal.Principal) Delegation {
	return Delegation{
		Pubkey:     delegatedKeyDER,
		Expiration: uint64(expiration.UnixNano()),
		Targets:    targets,
	}
}

// SignaturePayload returns the exact bytes the issuing key signs for this
// delegation: the auth-delegation domain separator followed by the
// representation-independent hash of the delegation fields. The payload is
// stable across repeated calls and across construction order of equal
// values; an absent target set is omitted from the hash entirely rather
// than encoded as empty.
func (d *Delegation) SignaturePayload() []byte {
	fields := map[string]requestid.Value{
		"pubkey":     requestid.Blob(d.Pubkey),
		"expiration": requestid.Nat(d.Expiration),
	}
	if d.Targets != nil {
		targets := make(requestid.List, len(d.Targets))
		for i, t := range d.Targets {
			targets[i] = requestid.Blob(t.Bytes())
		}
		fields["targets"] = targets
	}
	id := requestid.Hash(fields)

	payload := make([]byte, 0, len(domainSepAuthDelegation)+len(id))
	payload = append(payload, domainSepAuthDelegation...)
	return append(payload, id.Bytes()...)
}

// SignedDelegation pairs a Delegation with the signature the previous
// link's key (or, for the first link, the root key) produced over its
// canonical payload.
type SignedDelegation struct {
	Delegation Delegation
	Signature  []byte
}

// Chain is a full delegation chain as presented with one authenticated
// call: the root identity's public key, the ordered links, and the
// terminal signature the last delegated key produced over the request.
// An empty Links slice is the degenerate, still valid case of the root
// key signing the request directly.
//
// Chains are verified fresh on every call and never cached as trusted:
// expiration is evaluated against the clock of the call, so a chain valid
// now may be invalid a moment later.
type Chain struct {
	// RootPublicKey is the canonical DER encoding of the originator's key.
	RootPublicKey []byte
	Links         []SignedDelegation
	// TerminalSignature covers the request domain separator plus the
	// request id of the call being authorized.
	TerminalSignature []byte
}

// TerminalPayload returns the exact bytes the terminal signature must
// cover for the given request id: the request domain separator plus the
// id. Signers and the validator share this single definition.
func TerminalPayload(id requestid.ID) []byte {
	payload := make([]byte, 0, len(domainSepRequest)+len(id))
	payload = append(payload, domainSepRequest...)
	return append(payload, id.Bytes()...)
}
