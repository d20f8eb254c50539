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

package envelope

import (
	"fmt"

	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/identity"
)

// Sign stamps the content with the identity's principal, computes the
// request id, and produces the wire envelope carrying the terminal
// signature and, for delegated identities, the delegation chain. The
// anonymous identity yields a bare unsigned envelope.
func Sign(id identity.Identity, content CallContent) (*Envelope, error) {
	if id == nil {
		return nil, fmt.Errorf("sign envelope: nil identity")
	}
	content.Sender = id.Sender().Bytes()

	env := &Envelope{Content: content}
	if id.PublicKey() == nil {
		return env, nil
	}

	reqID := content.RequestID()
	if bearer, ok := id.(identity.DelegationBearer); ok {
		env.SenderDelegation = FromChain(&delegation.Chain{Links: bearer.Delegations()})
	}

	sig, err := id.Sign(delegation.TerminalPayload(reqID))
	if err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}
	env.SenderPubkey = id.PublicKey()
	env.SenderSig = sig
	return env, nil
}
