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

// Package main demonstrates the full delegated-call flow:
//   - Generate a long-lived root identity and a short-lived session key
//   - Have the root sign a delegation scoped to one canister
//   - Submit a call signed by the session key
//   - Verify server-side that the call acts as the root principal
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/canguard-project/canguard-go/pkg/client"
	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/identity"
	"github.com/canguard-project/canguard-go/pkg/principal"
	"github.com/canguard-project/canguard-go/pkg/server"
)

func main() {
	fmt.Println("canguard-go - Delegated Call Example")
	fmt.Println("====================================")

	ctx := context.Background()
	canisterID := principal.MustFromText("aaaaa-aa")

	// Generate the root identity. In a real deployment this key lives in
	// secure storage and rarely signs anything directly.
	fmt.Println("\n1. Generating root identity...")
	root, err := identity.GenerateEd25519Identity(nil)
	if err != nil {
		log.Fatalf("Failed to generate root identity: %v", err)
	}
	fmt.Printf("   Root principal: %s\n", root.Sender())

	// Generate a session key the application holds in memory.
	fmt.Println("\n2. Generating session key...")
	session, err := identity.GenerateSecp256k1Identity()
	if err != nil {
		log.Fatalf("Failed to generate session key: %v", err)
	}
	fmt.Printf("   Session principal (unused on the wire): %s\n", session.Sender())

	// The root signs a delegation: the session key may act as the root
	// principal for one hour, against this one canister only.
	fmt.Println("\n3. Signing a scoped delegation...")
	link, err := identity.Delegate(root, session.PublicKey(), time.Now().Add(time.Hour),
		[]principal.Principal{canisterID})
	if err != nil {
		log.Fatalf("Failed to sign delegation: %v", err)
	}
	delegated, err := identity.NewDelegatedIdentity(root.PublicKey(),
		[]delegation.SignedDelegation{link}, session)
	if err != nil {
		log.Fatalf("Failed to assemble delegated identity: %v", err)
	}
	fmt.Printf("   Delegation expires: %s\n", time.Unix(0, int64(link.Delegation.Expiration)).Format(time.RFC3339))
	fmt.Printf("   Delegated identity acts as: %s\n", delegated.Sender())

	// Stand up a server that authenticates every call.
	fmt.Println("\n4. Starting an authenticating server...")
	mw := server.NewEnvelopeAuthMiddleware()
	srv := httptest.NewServer(mw.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, _ := server.GetPrincipalFromContext(r.Context())
		fmt.Fprintf(w, "hello, %s", caller)
	})))
	defer srv.Close()
	fmt.Printf("   Listening on %s\n", srv.URL)

	// Submit a call signed by the session key. The envelope carries the
	// delegation chain, so the server resolves it to the root principal.
	fmt.Println("\n5. Submitting a delegated call...")
	c := client.NewCanisterClient(srv.URL, delegated, srv.Client())
	resp, err := c.Call(ctx, canisterID, "greet", nil)
	if err != nil {
		log.Fatalf("Call failed: %v", err)
	}
	fmt.Printf("   Server response: %s\n", resp)

	// A call against any other canister is outside the delegation's
	// target scope and must be rejected.
	fmt.Println("\n6. Attempting a call outside the delegated scope...")
	other := principal.MustFromBytes([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x04, 0xd2, 0x01})
	if _, err := c.Call(ctx, other, "greet", nil); err != nil {
		fmt.Printf("   Rejected as expected: %v\n", err)
	} else {
		log.Fatal("Out-of-scope call was unexpectedly accepted")
	}

	fmt.Println("\nExample completed successfully!")
}
