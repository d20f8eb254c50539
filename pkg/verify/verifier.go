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

package verify

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/canguard-project/canguard-go/pkg/keys"
)

// Secp256k1SignatureLen is the fixed length of a secp256k1 signature:
// 32-byte R followed by 32-byte S, no DER framing.
const Secp256k1SignatureLen = 64

// ErrSignatureInvalid reports a well-formed signature that does not verify
// against the given key and message. Merely-invalid input is an expected,
// frequent outcome and is reported as this value, never as a panic.
var ErrSignatureInvalid = errors.New("signature verification failed")

// MalformedSignatureError reports a signature whose encoding is wrong for
// the key's algorithm family (wrong length). It is raised before any
// cryptographic verification is attempted and is distinct from
// ErrSignatureInvalid.
type MalformedSignatureError struct {
	Reason string
}

func (e *MalformedSignatureError) Error() string {
	return "malformed signature: " + e.Reason
}

// SignatureVerifier checks a signature over arbitrary message bytes.
// Implementations dispatch by the key's declared algorithm tag.
type SignatureVerifier interface {
	Verify(key *keys.PublicKey, message, sig []byte) error
}

// DefaultVerifier implements SignatureVerifier for the supported algorithm
// families. It is stateless and safe for concurrent use.
type DefaultVerifier struct{}

// NewDefaultVerifier creates a verifier for the built-in algorithm families.
func NewDefaultVerifier() *DefaultVerifier {
	return &DefaultVerifier{}
}

// Verify checks sig over message with key. It returns nil on success,
// ErrSignatureInvalid on a cryptographic mismatch, MalformedSignatureError
// on a bad signature encoding, and keys.ErrUnsupportedAlgorithm for a
// family this verifier does not implement.
//
// Both underlying verifiers consume the whole message unconditionally;
// nothing here exits early based on where message bytes differ.
func (v *DefaultVerifier) Verify(key *keys.PublicKey, message, sig []byte) error {
	switch key.Algorithm() {
	case keys.AlgorithmEd25519:
		return verifyEd25519(key, message, sig)
	case keys.AlgorithmSecp256k1:
		return verifySecp256k1(key, message, sig)
	default:
		return fmt.Errorf("verify: %w", keys.ErrUnsupportedAlgorithm)
	}
}

func verifyEd25519(key *keys.PublicKey, message, sig []byte) error {
	if len(sig) != ed25519.SignatureSize {
		return &MalformedSignatureError{
			Reason: fmt.Sprintf("ed25519 signature must be %d bytes, got %d", ed25519.SignatureSize, len(sig)),
		}
	}
	if !ed25519.Verify(ed25519.PublicKey(key.Raw()), message, sig) {
		return ErrSignatureInvalid
	}
	return nil
}

func verifySecp256k1(key *keys.PublicKey, message, sig []byte) error {
	if len(sig) != Secp256k1SignatureLen {
		return &MalformedSignatureError{
			Reason: fmt.Sprintf("secp256k1 signature must be %d bytes, got %d", Secp256k1SignatureLen, len(sig)),
		}
	}
	pub, err := secp256k1.ParsePubKey(key.Raw())
	if err != nil {
		// Construction validates the point, so this only fires for a
		// hand-built key that bypassed the constructors.
		return &keys.MalformedKeyError{Reason: fmt.Sprintf("secp256k1 point: %v", err)}
	}

	var r, s secp256k1.ModNScalar
	// Scalars at or above the group order are out of range; the encoding
	// itself is the right length, so this counts as invalid, not malformed.
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return ErrSignatureInvalid
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return ErrSignatureInvalid
	}

	digest := sha256.Sum256(message)
	if !ecdsa.NewSignature(&r, &s).Verify(digest[:], pub) {
		return ErrSignatureInvalid
	}
	return nil
}
