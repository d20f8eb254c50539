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

package keys

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/canguard-project/canguard-go/pkg/principal"
)

// Algorithm tags the signature algorithm family a public key belongs to.
// Dispatch throughout the library is by this tag, never by trial decoding.
type Algorithm uint8

const (
	AlgorithmEd25519 Algorithm = iota + 1
	AlgorithmSecp256k1
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmEd25519:
		return "ed25519"
	case AlgorithmSecp256k1:
		return "secp256k1"
	default:
		return fmt.Sprintf("algorithm(%d)", uint8(a))
	}
}

// ErrUnsupportedAlgorithm is returned when a key or signature declares an
// algorithm family this library does not implement. It is distinct from a
// verification failure: the input may be perfectly valid for some other
// verifier.
var ErrUnsupportedAlgorithm = errors.New("unsupported signature algorithm")

// MalformedKeyError reports key material that is structurally invalid for
// its declared algorithm family: wrong length, bad DER framing, or a
// secp256k1 point that is not on the curve. It is raised before any
// cryptographic operation is attempted.
type MalformedKeyError struct {
	Reason string
}

func (e *MalformedKeyError) Error() string {
	return "malformed public key: " + e.Reason
}

// DER SubjectPublicKeyInfo prefixes per algorithm family. The canonical
// encoding is a frozen wire contract: signatures and principals are
// defined over these exact bytes, so the prefixes are spelled out rather
// than produced by a generic ASN.1 encoder.
var (
	// OID 1.3.101.112 (Ed25519), followed by a 32-byte BIT STRING.
	ed25519Prefix = []byte{
		0x30, 0x2a, 0x30, 0x05, 0x06, 0x03, 0x2b, 0x65, 0x70,
		0x03, 0x21, 0x00,
	}
	// OID 1.2.840.10045.2.1 (ecPublicKey) with parameter OID
	// 1.3.132.0.10 (secp256k1), followed by a 65-byte BIT STRING
	// holding an uncompressed SEC1 point.
	secp256k1Prefix = []byte{
		0x30, 0x56, 0x30, 0x10, 0x06, 0x07, 0x2a, 0x86, 0x48,
		0xce, 0x3d, 0x02, 0x01, 0x06, 0x05, 0x2b, 0x81, 0x04,
		0x00, 0x0a, 0x03, 0x42, 0x00,
	}
)

const (
	ed25519RawLen   = ed25519.PublicKeySize
	secp256k1RawLen = 65 // uncompressed SEC1: 0x04 || X || Y
)

// PublicKey is an algorithm-tagged public key with a single canonical DER
// encoding. Construction validates the key material; a PublicKey in hand
// is structurally sound.
type PublicKey struct {
	alg Algorithm
	raw []byte
}

// NewEd25519 builds a PublicKey from 32 raw Ed25519 key bytes.
func NewEd25519(raw []byte) (*PublicKey, error) {
	if len(raw) != ed25519RawLen {
		return nil, &MalformedKeyError{
			Reason: fmt.Sprintf("ed25519 key must be %d bytes, got %d", ed25519RawLen, len(raw)),
		}
	}
	return &PublicKey{alg: AlgorithmEd25519, raw: bytes.Clone(raw)}, nil
}

// NewSecp256k1 builds a PublicKey from a SEC1-encoded secp256k1 point,
// compressed or uncompressed. The point is validated against the curve and
// normalized to the uncompressed form, which is the only form the
// canonical encoding admits.
func NewSecp256k1(sec1 []byte) (*PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(sec1)
	if err != nil {
		return nil, &MalformedKeyError{Reason: fmt.Sprintf("secp256k1 point: %v", err)}
	}
	return &PublicKey{alg: AlgorithmSecp256k1, raw: pub.SerializeUncompressed()}, nil
}

// ParseDER decodes a canonical DER SubjectPublicKeyInfo encoding. Unknown
// algorithm OIDs yield ErrUnsupportedAlgorithm; a recognized family with
// bad framing or bad key material yields MalformedKeyError. The decoder
// never truncates or pads.
func ParseDER(der []byte) (*PublicKey, error) {
	switch {
	case bytes.HasPrefix(der, ed25519Prefix):
		if len(der) != len(ed25519Prefix)+ed25519RawLen {
			return nil, &MalformedKeyError{
				Reason: fmt.Sprintf("ed25519 SPKI must be %d bytes, got %d", len(ed25519Prefix)+ed25519RawLen, len(der)),
			}
		}
		return NewEd25519(der[len(ed25519Prefix):])
	case bytes.HasPrefix(der, secp256k1Prefix):
		if len(der) != len(secp256k1Prefix)+secp256k1RawLen {
			return nil, &MalformedKeyError{
				Reason: fmt.Sprintf("secp256k1 SPKI must be %d bytes, got %d", len(secp256k1Prefix)+secp256k1RawLen, len(der)),
			}
		}
		return NewSecp256k1(der[len(secp256k1Prefix):])
	default:
		return nil, fmt.Errorf("parse public key: %w", ErrUnsupportedAlgorithm)
	}
}

// Algorithm returns the key's algorithm family tag.
func (k *PublicKey) Algorithm() Algorithm {
	return k.alg
}

// Raw returns a copy of the family-native key bytes (32 for Ed25519, a
// 65-byte uncompressed SEC1 point for secp256k1).
func (k *PublicKey) Raw() []byte {
	return bytes.Clone(k.raw)
}

// DER returns the canonical SubjectPublicKeyInfo encoding. The encoding is
// deterministic and injective per family: distinct valid keys never share
// canonical bytes.
func (k *PublicKey) DER() []byte {
	var prefix []byte
	switch k.alg {
	case AlgorithmEd25519:
		prefix = ed25519Prefix
	case AlgorithmSecp256k1:
		prefix = secp256k1Prefix
	default:
		// Unreachable: construction only admits known families.
		panic("keys: unknown algorithm " + k.alg.String())
	}
	out := make([]byte, 0, len(prefix)+len(k.raw))
	out = append(out, prefix...)
	return append(out, k.raw...)
}

// Principal derives the self-authenticating principal of this key from
// its canonical encoding.
func (k *PublicKey) Principal() principal.Principal {
	return principal.SelfAuthenticating(k.DER())
}
