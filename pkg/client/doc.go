// Package client submits authenticated canister calls.
//
// CanisterClient builds the call content, stamps it with the configured
// identity (attaching the delegation chain when the identity carries
// one), encodes the envelope, and POSTs it to the platform endpoint.
// Transient transport failures retry with exponential backoff;
// rejections of the call itself are permanent. Authentication semantics
// live entirely in the envelope and delegation packages; this layer
// only moves bytes.
package client
