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

package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/canguard-project/canguard-go/pkg/delegation"
	"github.com/canguard-project/canguard-go/pkg/keys"
	"github.com/canguard-project/canguard-go/pkg/principal"
)

// Identity is a signing identity: something that can claim a principal
// and produce signatures the verifier side will accept for it.
type Identity interface {
	// Sender returns the principal this identity acts as.
	Sender() principal.Principal
	// PublicKey returns the canonical DER encoding of the identity's
	// public key, or nil for the anonymous identity.
	PublicKey() []byte
	// Sign signs arbitrary message bytes.
	Sign(message []byte) ([]byte, error)
}

// DelegationBearer is implemented by identities that carry a delegation
// chain which must accompany their signatures on the wire.
type DelegationBearer interface {
	Delegations() []delegation.SignedDelegation
}

// Ed25519Identity signs with an Ed25519 private key.
type Ed25519Identity struct {
	priv ed25519.PrivateKey
	pub  *keys.PublicKey
}

// NewEd25519Identity wraps an existing Ed25519 private key.
func NewEd25519Identity(priv ed25519.PrivateKey) (*Ed25519Identity, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	pub, err := keys.NewEd25519(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &Ed25519Identity{priv: priv, pub: pub}, nil
}

// GenerateEd25519Identity creates a fresh Ed25519 identity. A nil reader
// defaults to crypto/rand.
func GenerateEd25519Identity(r io.Reader) (*Ed25519Identity, error) {
	if r == nil {
		r = rand.Reader
	}
	_, priv, err := ed25519.GenerateKey(r)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return NewEd25519Identity(priv)
}

func (id *Ed25519Identity) Sender() principal.Principal {
	return id.pub.Principal()
}

func (id *Ed25519Identity) PublicKey() []byte {
	return id.pub.DER()
}

func (id *Ed25519Identity) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(id.priv, message), nil
}

// Secp256k1Identity signs with a secp256k1 private key, producing 64-byte
// R||S signatures over the SHA-256 digest of the message.
type Secp256k1Identity struct {
	priv *secp256k1.PrivateKey
	pub  *keys.PublicKey
}

// NewSecp256k1Identity wraps an existing secp256k1 private key.
func NewSecp256k1Identity(priv *secp256k1.PrivateKey) (*Secp256k1Identity, error) {
	pub, err := keys.NewSecp256k1(priv.PubKey().SerializeUncompressed())
	if err != nil {
		return nil, err
	}
	return &Secp256k1Identity{priv: priv, pub: pub}, nil
}

// GenerateSecp256k1Identity creates a fresh secp256k1 identity.
func GenerateSecp256k1Identity() (*Secp256k1Identity, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return NewSecp256k1Identity(priv)
}

func (id *Secp256k1Identity) Sender() principal.Principal {
	return id.pub.Principal()
}

func (id *Secp256k1Identity) PublicKey() []byte {
	return id.pub.DER()
}

func (id *Secp256k1Identity) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)
	// SignCompact prepends a recovery byte; the wire format wants bare R||S.
	compact := secpecdsa.SignCompact(id.priv, digest[:], false)
	return compact[1:], nil
}

// AnonymousIdentity is the identity of a caller exercising no authority.
// It has no key and produces no signatures.
type AnonymousIdentity struct{}

func (AnonymousIdentity) Sender() principal.Principal {
	return principal.Anonymous()
}

func (AnonymousIdentity) PublicKey() []byte {
	return nil
}

func (AnonymousIdentity) Sign([]byte) ([]byte, error) {
	return nil, nil
}

// DelegatedIdentity acts as a root identity through a delegation chain:
// it signs with the terminal key but claims the root's principal. The
// chain travels with every signature.
type DelegatedIdentity struct {
	rootPublicKey []byte
	links         []delegation.SignedDelegation
	signer        Identity
}

// NewDelegatedIdentity assembles a delegated identity from the root's
// canonical DER public key, a non-empty chain of signed links, and the
// identity holding the last link's private key.
func NewDelegatedIdentity(rootPublicKeyDER []byte, links []delegation.SignedDelegation, signer Identity) (*DelegatedIdentity, error) {
	if len(rootPublicKeyDER) == 0 {
		return nil, fmt.Errorf("delegated identity: missing root public key")
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("delegated identity: empty delegation chain")
	}
	if signer == nil || signer.PublicKey() == nil {
		return nil, fmt.Errorf("delegated identity: missing terminal signer")
	}
	last := links[len(links)-1].Delegation.Pubkey
	if string(last) != string(signer.PublicKey()) {
		return nil, fmt.Errorf("delegated identity: terminal signer does not hold the last delegated key")
	}
	return &DelegatedIdentity{
		rootPublicKey: rootPublicKeyDER,
		links:         links,
		signer:        signer,
	}, nil
}

func (id *DelegatedIdentity) Sender() principal.Principal {
	return principal.SelfAuthenticating(id.rootPublicKey)
}

func (id *DelegatedIdentity) PublicKey() []byte {
	return id.rootPublicKey
}

func (id *DelegatedIdentity) Sign(message []byte) ([]byte, error) {
	return id.signer.Sign(message)
}

func (id *DelegatedIdentity) Delegations() []delegation.SignedDelegation {
	return id.links
}

// SignDelegation has the issuer sign a delegation's canonical payload,
// producing a chain link.
func SignDelegation(issuer Identity, d delegation.Delegation) (delegation.SignedDelegation, error) {
	sig, err := issuer.Sign(d.SignaturePayload())
	if err != nil {
		return delegation.SignedDelegation{}, fmt.Errorf("sign delegation: %w", err)
	}
	return delegation.SignedDelegation{Delegation: d, Signature: sig}, nil
}

// Delegate issues a delegation from issuer to the holder of delegateKeyDER,
// expiring at the given instant and optionally scoped to targets.
func Delegate(issuer Identity, delegateKeyDER []byte, expiration time.Time, targets []principal.Principal) (delegation.SignedDelegation, error) {
	return SignDelegation(issuer, delegation.NewDelegation(delegateKeyDER, expiration, targets))
}
