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

// Package version exposes build and wire-format version information.
package version

const (
	// Version is the current version of canguard-go
	Version = "0.3.0"

	// EnvelopeFormatVersion identifies the wire envelope layout this
	// library produces and accepts.
	EnvelopeFormatVersion = "v2"

	// SupportedAlgorithms lists the signature algorithm families the
	// verifier dispatches over.
	SupportedAlgorithms = "ed25519,secp256k1"
)

// Info contains detailed version information
type Info struct {
	CanguardVersion       string
	EnvelopeFormatVersion string
	SupportedAlgorithms   string
}

// Get returns detailed version information
func Get() Info {
	return Info{
		CanguardVersion:       Version,
		EnvelopeFormatVersion: EnvelopeFormatVersion,
		SupportedAlgorithms:   SupportedAlgorithms,
	}
}
