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

import "fmt"

// ErrorKind classifies chain validation failures. Callers branch on the
// kind to choose between rejecting a call outright and degrading it to
// anonymous, without inspecting chain internals.
type ErrorKind int

const (
	// KindMalformedChain: the chain structure itself is unusable
	// (missing fields, over-long chain, undecodable wire record).
	KindMalformedChain ErrorKind = iota + 1
	// KindInvalidLinkSignature: a link's signature does not verify
	// against the key that issued it.
	KindInvalidLinkSignature
	// KindDelegationExpired: a link's expiration is at or before the
	// validation instant.
	KindDelegationExpired
	// KindTargetNotAuthorized: a link's target set does not admit the
	// canister the caller is addressing.
	KindTargetNotAuthorized
	// KindInvalidTerminalSignature: the final signature over the request
	// does not verify against the last delegated key.
	KindInvalidTerminalSignature
	// KindSenderMismatch: the envelope's declared sender is not the
	// principal the chain actually authenticates.
	KindSenderMismatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedChain:
		return "malformed chain"
	case KindInvalidLinkSignature:
		return "invalid link signature"
	case KindDelegationExpired:
		return "delegation expired"
	case KindTargetNotAuthorized:
		return "target not authorized"
	case KindInvalidTerminalSignature:
		return "invalid terminal signature"
	case KindSenderMismatch:
		return "sender mismatch"
	default:
		return fmt.Sprintf("chain error(%d)", int(k))
	}
}

// ChainError is a rejected chain. Index is the zero-based link the walk
// stopped at for link-scoped kinds, and -1 for failures not tied to a
// particular link. A ChainError is an expected outcome of handling
// adversarial input, never a program fault.
type ChainError struct {
	Kind   ErrorKind
	Index  int
	Reason string
	cause  error
}

func (e *ChainError) Error() string {
	msg := e.Kind.String()
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s at link %d", msg, e.Index)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *ChainError) Unwrap() error {
	return e.cause
}

// NewMalformedChainError reports a structurally unusable chain or wire
// record, optionally wrapping the decode error that exposed it.
func NewMalformedChainError(reason string, cause error) *ChainError {
	return &ChainError{Kind: KindMalformedChain, Index: -1, Reason: reason, cause: cause}
}

func linkError(kind ErrorKind, index int) *ChainError {
	return &ChainError{Kind: kind, Index: index}
}
