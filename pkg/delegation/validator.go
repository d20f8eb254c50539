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
	"errors"
	"fmt"
	"time"

	"github.com/canguard-project/canguard-go/pkg/keys"
	"github.com/canguard-project/canguard-go/pkg/principal"
	"github.com/canguard-project/canguard-go/pkg/requestid"
	"github.com/canguard-project/canguard-go/pkg/verify"
)

// VerifiedIdentity is the validator's output: the authenticated principal
// and the scope it was authenticated for. It is a plain value, produced
// only after full chain validation and consumed immediately by the caller.
type VerifiedIdentity struct {
	// Principal is the effective acting principal. Delegation grants a
	// key the power to act as the root identity rather than creating a
	// new one, so this is always the root-derived principal.
	Principal principal.Principal
	// AuthorizedFor echoes the target canister validation was performed
	// against, when the caller supplied one.
	AuthorizedFor *principal.Principal
	// ViaRoot is the root-derived principal: the subject whose authority
	// is ultimately being exercised. Always equal to Principal.
	ViaRoot principal.Principal
}

// Validator checks delegation chains. It holds no state between calls and
// is safe for unbounded concurrent use; the current time is supplied by
// the caller so validation stays deterministic and testable. The validator
// never logs and never retries.
type Validator struct {
	verifier verify.SignatureVerifier
}

// NewValidator creates a Validator backed by the default signature
// verifier.
func NewValidator() *Validator {
	return NewValidatorWithVerifier(verify.NewDefaultVerifier())
}

// NewValidatorWithVerifier creates a Validator using a custom signature
// verifier.
func NewValidatorWithVerifier(v verify.SignatureVerifier) *Validator {
	return &Validator{verifier: v}
}

// Validate walks the chain in order, checking each link's signature
// against the key that issued it, its expiration against now (strictly:
// a link expiring exactly at now is expired), and its target scope
// against the canister being addressed. The walk short-circuits on the
// first failure; trust does not propagate past a broken link, so later
// links are never examined. Scope checks run per link, which means a
// later link can never widen what an earlier link restricted.
//
// With zero links the root key itself must have produced the terminal
// signature. target is the canister the request addresses; nil means the
// caller imposes no scope check.
func (v *Validator) Validate(chain *Chain, id requestid.ID, now time.Time, target *principal.Principal) (*VerifiedIdentity, error) {
	if chain == nil || len(chain.RootPublicKey) == 0 {
		return nil, NewMalformedChainError("missing root public key", nil)
	}
	if len(chain.Links) > MaxChainLength {
		return nil, NewMalformedChainError(
			fmt.Sprintf("chain has %d links (max %d)", len(chain.Links), MaxChainLength), nil)
	}

	issuing, err := keys.ParseDER(chain.RootPublicKey)
	if err != nil {
		return nil, fmt.Errorf("root public key: %w", err)
	}

	nowNanos := uint64(now.UnixNano())
	for i := range chain.Links {
		link := &chain.Links[i]

		if err := v.verifier.Verify(issuing, link.Delegation.SignaturePayload(), link.Signature); err != nil {
			if errors.Is(err, verify.ErrSignatureInvalid) {
				return nil, linkError(KindInvalidLinkSignature, i)
			}
			// Malformed or unsupported input keeps its own error kind.
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		if link.Delegation.Expiration <= nowNanos {
			return nil, linkError(KindDelegationExpired, i)
		}
		if link.Delegation.Targets != nil && target != nil && !containsPrincipal(link.Delegation.Targets, *target) {
			return nil, linkError(KindTargetNotAuthorized, i)
		}

		issuing, err = keys.ParseDER(link.Delegation.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("link %d delegated key: %w", i, err)
		}
	}

	if err := v.verifier.Verify(issuing, TerminalPayload(id), chain.TerminalSignature); err != nil {
		if errors.Is(err, verify.ErrSignatureInvalid) {
			return nil, &ChainError{Kind: KindInvalidTerminalSignature, Index: -1}
		}
		return nil, fmt.Errorf("terminal signature: %w", err)
	}

	viaRoot := principal.SelfAuthenticating(chain.RootPublicKey)
	return &VerifiedIdentity{
		Principal:     viaRoot,
		AuthorizedFor: target,
		ViaRoot:       viaRoot,
	}, nil
}

func containsPrincipal(set []principal.Principal, p principal.Principal) bool {
	for _, candidate := range set {
		if candidate == p {
			return true
		}
	}
	return false
}
