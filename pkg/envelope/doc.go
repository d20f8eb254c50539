// Package envelope implements the wire format of authenticated canister
// calls: self-describing canonical CBOR records carrying the call
// content, the sender's public key, the delegation chain and the
// terminal signature.
//
// # Request Binding
//
// CallContent.RequestID computes the content-derived identifier the
// terminal signature is checked against, via representation-independent
// hashing: every present field contributes a (hashed name, hashed value)
// pair, pairs are sorted, and the concatenation is hashed. The id is
// independent of field order and unambiguous between structurally
// different records.
//
// # Wire Contract
//
// The byte layout is frozen. Envelopes are encoded with canonical CBOR
// options behind the self-described tag prefix, so equal values always
// produce identical bytes. That is a requirement, since signatures are defined
// over exact encodings, not over abstract structures. Decoding failures
// are reported as malformed-chain errors, distinct from every
// cryptographic failure.
package envelope
