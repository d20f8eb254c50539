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

package registry

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/canguard-project/canguard-go/pkg/identity"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

func testKeyB64(t *testing.T) (string, principal.Principal) {
	t.Helper()
	id, err := identity.GenerateEd25519Identity(nil)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(id.PublicKey()), id.Sender()
}

func TestLoadAndLookup(t *testing.T) {
	keyA, principalA := testKeyB64(t)
	keyB, principalB := testKeyB64(t)
	doc := fmt.Sprintf(`roots:
  - name: platform-signer
    principal: %s
    public_key: %s
  - name: recovery-signer
    public_key: %s
`, principalA, keyA, keyB)

	reg, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	key, ok := reg.Lookup(principalA)
	require.True(t, ok)
	assert.Equal(t, principalA, key.Principal())

	byName, ok := reg.LookupByName("recovery-signer")
	require.True(t, ok)
	assert.Equal(t, principalB, byName.Principal())

	assert.True(t, reg.Trusted(principalB))
	assert.False(t, reg.Trusted(principal.Anonymous()))

	_, ok = reg.LookupByName("no-such-signer")
	assert.False(t, ok)
}

func TestLoadFile(t *testing.T) {
	keyA, principalA := testKeyB64(t)
	path := filepath.Join(t.TempDir(), "roots.yaml")
	doc := fmt.Sprintf("roots:\n  - name: signer\n    public_key: %s\n", keyA)
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, reg.Trusted(principalA))

	_, err = LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsBadEntries(t *testing.T) {
	keyA, _ := testKeyB64(t)

	cases := []struct {
		name string
		doc  string
	}{
		{
			name: "principal mismatch",
			doc: fmt.Sprintf(`roots:
  - name: signer
    principal: 2vxsx-fae
    public_key: %s
`, keyA),
		},
		{
			name: "bad base64",
			doc:  "roots:\n  - name: signer\n    public_key: '%%%'\n",
		},
		{
			name: "key that is not a canonical encoding",
			doc:  fmt.Sprintf("roots:\n  - name: signer\n    public_key: %s\n", base64.StdEncoding.EncodeToString([]byte("junk"))),
		},
		{
			name: "missing name",
			doc:  fmt.Sprintf("roots:\n  - public_key: %s\n", keyA),
		},
		{
			name: "duplicate name",
			doc: fmt.Sprintf(`roots:
  - name: signer
    public_key: %s
  - name: signer
    public_key: %s
`, keyA, keyA),
		},
		{
			name: "not yaml",
			doc:  "{{{{",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.doc))
			assert.Error(t, err)
		})
	}
}
