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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashDeterministic(t *testing.T) {
	fields := map[string]Value{
		"method_name": Text("greet"),
		"arg":         Blob{0x44, 0x49, 0x44, 0x4c},
		"expiry":      Nat(1234567890),
	}
	assert.Equal(t, Hash(fields), Hash(fields))

	// A structurally equal map built independently hashes identically.
	rebuilt := map[string]Value{
		"expiry":      Nat(1234567890),
		"arg":         Blob{0x44, 0x49, 0x44, 0x4c},
		"method_name": Text("greet"),
	}
	assert.Equal(t, Hash(fields), Hash(rebuilt))
}

func TestHashSensitivity(t *testing.T) {
	base := map[string]Value{
		"a": Text("x"),
		"b": Nat(1),
	}

	t.Run("renamed field", func(t *testing.T) {
		changed := map[string]Value{
			"a": Text("x"),
			"c": Nat(1),
		}
		assert.NotEqual(t, Hash(base), Hash(changed))
	})

	t.Run("changed value", func(t *testing.T) {
		changed := map[string]Value{
			"a": Text("x"),
			"b": Nat(2),
		}
		assert.NotEqual(t, Hash(base), Hash(changed))
	})

	t.Run("extra field", func(t *testing.T) {
		changed := map[string]Value{
			"a": Text("x"),
			"b": Nat(1),
			"c": Blob(nil),
		}
		assert.NotEqual(t, Hash(base), Hash(changed))
	})

	t.Run("absent field is not empty field", func(t *testing.T) {
		withEmpty := map[string]Value{
			"a": Text("x"),
			"b": Nat(1),
			"n": Blob{},
		}
		assert.NotEqual(t, Hash(base), Hash(withEmpty))
	})
}

func TestListNesting(t *testing.T) {
	// A list of two blobs must differ from one blob holding their
	// concatenation: element hashes are nested, not spliced.
	asList := map[string]Value{
		"t": List{Blob("ab"), Blob("cd")},
	}
	asBlob := map[string]Value{
		"t": Blob("abcd"),
	}
	assert.NotEqual(t, Hash(asList), Hash(asBlob))

	// Element order inside a list is significant.
	reversed := map[string]Value{
		"t": List{Blob("cd"), Blob("ab")},
	}
	assert.NotEqual(t, Hash(asList), Hash(reversed))
}

func TestNatEncoding(t *testing.T) {
	assert.Equal(t, []byte{0x00}, uleb128(0))
	assert.Equal(t, []byte{0x7f}, uleb128(127))
	assert.Equal(t, []byte{0x80, 0x01}, uleb128(128))
	assert.Equal(t, []byte{0xe5, 0x8e, 0x26}, uleb128(624485))

	// Distinct numbers hash distinctly even across the 7-bit boundary.
	assert.NotEqual(t, Nat(127).valueHash(), Nat(128).valueHash())
}

func TestIDString(t *testing.T) {
	id := Hash(map[string]Value{"k": Text("v")})
	assert.Len(t, id.String(), 64)
	assert.Equal(t, id[:], id.Bytes())
}
