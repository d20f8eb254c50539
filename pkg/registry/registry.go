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
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/canguard-project/canguard-go/pkg/keys"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

// rootEntry is one configured well-known signer.
type rootEntry struct {
	Name string `yaml:"name"`
	// Principal is the expected principal in text form. Optional; when
	// present the loader cross-checks it against the key.
	Principal string `yaml:"principal,omitempty"`
	// PublicKey is the base64 canonical DER encoding of the key.
	PublicKey string `yaml:"public_key"`
}

type registryFile struct {
	Roots []rootEntry `yaml:"roots"`
}

// Registry is a read-only oracle of well-known root public keys, looked
// up by principal. It is immutable after load and safe for concurrent
// reads; the validator treats it as external configuration, never as
// owned state.
type Registry struct {
	byPrincipal map[principal.Principal]*keys.PublicKey
	byName      map[string]*keys.PublicKey
}

// Load reads a YAML registry document. Each entry's key must parse as a
// canonical encoding, and when a principal is declared it must match the
// one the key derives to. A mismatch is a configuration error, not
// something to silently repair.
func Load(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	reg := &Registry{
		byPrincipal: make(map[principal.Principal]*keys.PublicKey, len(file.Roots)),
		byName:      make(map[string]*keys.PublicKey, len(file.Roots)),
	}
	for _, entry := range file.Roots {
		if entry.Name == "" {
			return nil, fmt.Errorf("registry entry without a name")
		}
		der, err := base64.StdEncoding.DecodeString(entry.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("registry entry %q: bad public key encoding: %w", entry.Name, err)
		}
		key, err := keys.ParseDER(der)
		if err != nil {
			return nil, fmt.Errorf("registry entry %q: %w", entry.Name, err)
		}
		derived := key.Principal()
		if entry.Principal != "" {
			declared, err := principal.FromText(entry.Principal)
			if err != nil {
				return nil, fmt.Errorf("registry entry %q: %w", entry.Name, err)
			}
			if declared != derived {
				return nil, fmt.Errorf("registry entry %q: declared principal %s does not match key principal %s",
					entry.Name, declared, derived)
			}
		}
		if _, dup := reg.byName[entry.Name]; dup {
			return nil, fmt.Errorf("registry entry %q: duplicate name", entry.Name)
		}
		reg.byPrincipal[derived] = key
		reg.byName[entry.Name] = key
	}
	return reg, nil
}

// LoadFile reads a YAML registry from disk.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Lookup returns the well-known key for a principal, if configured.
func (r *Registry) Lookup(p principal.Principal) (*keys.PublicKey, bool) {
	key, ok := r.byPrincipal[p]
	return key, ok
}

// LookupByName returns a configured key by its entry name.
func (r *Registry) LookupByName(name string) (*keys.PublicKey, bool) {
	key, ok := r.byName[name]
	return key, ok
}

// Trusted reports whether the principal belongs to a configured signer.
func (r *Registry) Trusted(p principal.Principal) bool {
	_, ok := r.byPrincipal[p]
	return ok
}

// Len returns the number of configured signers.
func (r *Registry) Len() int {
	return len(r.byName)
}
