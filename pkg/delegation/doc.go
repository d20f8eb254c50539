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

// Package delegation models and validates delegation chains: ordered
// sequences of signed grants rooted at an originating identity's key and
// terminating at the key that signs the actual request.
//
// # Chain Validation
//
// A Validator walks a Chain link by link, starting from the root public
// key as the issuing key:
//
//	validator := delegation.NewValidator()
//	verified, err := validator.Validate(chain, requestID, time.Now(), &targetCanister)
//	if err != nil {
//	    var chainErr *delegation.ChainError
//	    if errors.As(err, &chainErr) {
//	        // branch on chainErr.Kind / chainErr.Index
//	    }
//	}
//
// Each link must carry a signature by the previous link's key (or the
// root key for the first link) over the link's canonical payload, must
// expire strictly after the validation instant, and, when it restricts
// targets, must admit the canister being addressed. Validation stops at
// the first broken link; nothing past it is examined.
//
// # Authority Model
//
// Delegation grants a key the power to act as the root identity. The
// verified principal is therefore always the root-derived principal:
// a chain never mints a new identity. An empty chain is the degenerate
// case of the root key signing the request itself.
//
// # Determinism
//
// Validate is a pure function of its arguments. The current time is a
// parameter, not ambient state; the validator holds nothing between
// calls, never logs, never retries, and may run on any number of
// goroutines concurrently.
package delegation
