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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionConstants(t *testing.T) {
	// Verify version constants are not empty
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, EnvelopeFormatVersion, "EnvelopeFormatVersion should not be empty")
	assert.NotEmpty(t, SupportedAlgorithms, "SupportedAlgorithms should not be empty")

	// Verify expected values
	assert.Equal(t, "0.3.0", Version)
	assert.Equal(t, "v2", EnvelopeFormatVersion)
	assert.Equal(t, "ed25519,secp256k1", SupportedAlgorithms)
}

func TestGet(t *testing.T) {
	info := Get()

	// Verify all fields are populated
	assert.Equal(t, Version, info.CanguardVersion)
	assert.Equal(t, EnvelopeFormatVersion, info.EnvelopeFormatVersion)
	assert.Equal(t, SupportedAlgorithms, info.SupportedAlgorithms)
}

func TestInfoStruct(t *testing.T) {
	// Test that Info struct can be created manually
	info := Info{
		CanguardVersion:       "test-version",
		EnvelopeFormatVersion: "v2",
		SupportedAlgorithms:   "ed25519",
	}

	assert.Equal(t, "test-version", info.CanguardVersion)
	assert.Equal(t, "v2", info.EnvelopeFormatVersion)
	assert.Equal(t, "ed25519", info.SupportedAlgorithms)
}
