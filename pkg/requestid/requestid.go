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

package requestid

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ID is the content-derived identifier of a structured record: the
// representation-independent hash its signatures are defined over.
type ID [sha256.Size]byte

// Bytes returns the id as a byte slice.
func (id ID) Bytes() []byte {
	return id[:]
}

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// Value is a field value that can enter a request id. The set of variants
// is closed: Blob, Text, Nat and List cover every field the wire protocol
// carries, and each hashes through a distinct encoding so structurally
// different values cannot collide by construction.
type Value interface {
	valueHash() [sha256.Size]byte
}

// Blob is an opaque byte string; it hashes as SHA-256 of the raw bytes.
type Blob []byte

func (b Blob) valueHash() [sha256.Size]byte {
	return sha256.Sum256(b)
}

// Text is a UTF-8 string; it hashes as SHA-256 of its bytes.
type Text string

func (t Text) valueHash() [sha256.Size]byte {
	return sha256.Sum256([]byte(t))
}

// Nat is an unsigned integer; it hashes as SHA-256 of its unsigned LEB128
// encoding, so numeric values have a single canonical byte form.
type Nat uint64

func (n Nat) valueHash() [sha256.Size]byte {
	return sha256.Sum256(uleb128(uint64(n)))
}

// List is an ordered sequence; it hashes as SHA-256 over the concatenated
// hashes of its elements. Nesting the element hashes keeps a list of two
// blobs distinct from one blob holding their concatenation.
type List []Value

func (l List) valueHash() [sha256.Size]byte {
	h := sha256.New()
	for _, v := range l {
		eh := v.valueHash()
		h.Write(eh[:])
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Hash computes the representation-independent hash of a field map: each
// present field contributes SHA-256(name) followed by its value hash, the
// pairs are sorted bytewise, and the concatenation is hashed once more.
// The result does not depend on field order, and records with different
// field counts hash through different pair sets, so a 2-field and a
// 3-field record cannot produce the same id by reassociation. Absent
// optional fields are simply omitted from the map.
func Hash(fields map[string]Value) ID {
	pairs := make([][]byte, 0, len(fields))
	for name, value := range fields {
		nameHash := sha256.Sum256([]byte(name))
		valueHash := value.valueHash()
		pair := make([]byte, 0, 2*sha256.Size)
		pair = append(pair, nameHash[:]...)
		pair = append(pair, valueHash[:]...)
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		return bytes.Compare(pairs[i], pairs[j]) < 0
	})

	h := sha256.New()
	for _, pair := range pairs {
		h.Write(pair)
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// uleb128 encodes n as unsigned LEB128.
func uleb128(n uint64) []byte {
	out := make([]byte, 0, 10)
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}
