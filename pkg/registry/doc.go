// Package registry loads the set of well-known root public keys the
// system is configured to trust, keyed by principal. It is a read-only
// oracle for callers that need to distinguish platform-level signers
// from arbitrary self-authenticating identities.
package registry
