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

// Package verify checks signatures over arbitrary message bytes,
// dispatching on the public key's declared algorithm family.
//
// The split between outcomes matters to callers: a wrong-length
// signature is MalformedSignatureError, a family the library does not
// implement is keys.ErrUnsupportedAlgorithm, and only a genuine
// cryptographic mismatch is ErrSignatureInvalid. None of these are
// program faults; forged and corrupted inputs are routine here.
//
// This package guards authentication, not a hot path. Verification is
// whole-message: the supported primitives consume every byte regardless
// of where a mismatch sits, so timing does not reveal mismatch position.
package verify
