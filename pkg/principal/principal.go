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

package principal

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"strings"
)

// MaxLength is the maximum byte length of a principal, including the
// trailing class byte.
const MaxLength = 29

// Class bytes appended to the principal body. Only self-authenticating
// principals are derived here; opaque principals (canister IDs) are
// assigned by the platform and arrive as raw bytes.
const (
	classOpaque             = 0x01
	classSelfAuthenticating = 0x02
	classAnonymous          = 0x04
)

var textEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal is a fixed-length identifier naming an identity. It is a
// comparable value type: principals can be compared with == and used as
// map keys.
type Principal struct {
	raw string
}

// SelfAuthenticating derives the principal of a public key from its
// canonical DER encoding: SHA-224 of the encoding plus the
// self-authenticating class byte. Derivation is pure; the same encoding
// always yields the same principal.
func SelfAuthenticating(derKey []byte) Principal {
	sum := sha256.Sum224(derKey)
	return Principal{raw: string(sum[:]) + string([]byte{classSelfAuthenticating})}
}

// Anonymous returns the anonymous principal, the single-byte identifier
// callers present when exercising no authority at all.
func Anonymous() Principal {
	return Principal{raw: string([]byte{classAnonymous})}
}

// FromBytes builds a Principal from its raw byte form. Canister IDs and
// other platform-assigned principals enter the system this way.
func FromBytes(b []byte) (Principal, error) {
	if len(b) > MaxLength {
		return Principal{}, fmt.Errorf("principal too long: %d bytes (max %d)", len(b), MaxLength)
	}
	return Principal{raw: string(b)}, nil
}

// MustFromBytes is FromBytes for statically known inputs; it panics on error.
func MustFromBytes(b []byte) Principal {
	p, err := FromBytes(b)
	if err != nil {
		panic(err)
	}
	return p
}

// FromText parses the dash-grouped base32 text form, verifying the
// embedded CRC32 checksum.
func FromText(s string) (Principal, error) {
	ungrouped := strings.ReplaceAll(s, "-", "")
	raw, err := textEncoding.DecodeString(strings.ToUpper(ungrouped))
	if err != nil {
		return Principal{}, fmt.Errorf("invalid principal text %q: %w", s, err)
	}
	if len(raw) < 4 {
		return Principal{}, fmt.Errorf("invalid principal text %q: too short", s)
	}
	declared := binary.BigEndian.Uint32(raw[:4])
	body := raw[4:]
	if declared != crc32.ChecksumIEEE(body) {
		return Principal{}, fmt.Errorf("invalid principal text %q: checksum mismatch", s)
	}
	p, err := FromBytes(body)
	if err != nil {
		return Principal{}, fmt.Errorf("invalid principal text %q: %w", s, err)
	}
	if p.String() != strings.ToLower(s) {
		return Principal{}, fmt.Errorf("invalid principal text %q: non-canonical grouping", s)
	}
	return p, nil
}

// MustFromText is FromText for statically known inputs; it panics on error.
func MustFromText(s string) Principal {
	p, err := FromText(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Bytes returns a copy of the raw principal bytes.
func (p Principal) Bytes() []byte {
	return []byte(p.raw)
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return len(p.raw) == 1 && p.raw[0] == classAnonymous
}

// IsSelfAuthenticating reports whether p was derived from a public key.
func (p Principal) IsSelfAuthenticating() bool {
	return len(p.raw) == sha256.Size224+1 && p.raw[len(p.raw)-1] == classSelfAuthenticating
}

// String renders the canonical text form: base32 of CRC32-prefixed bytes,
// lowercase, grouped by five characters. This form round-trips through
// FromText.
func (p Principal) String() string {
	body := []byte(p.raw)
	buf := make([]byte, 4, 4+len(body))
	binary.BigEndian.PutUint32(buf, crc32.ChecksumIEEE(body))
	buf = append(buf, body...)

	enc := strings.ToLower(textEncoding.EncodeToString(buf))
	var b strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			b.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		b.WriteString(enc[i:end])
	}
	return b.String()
}
