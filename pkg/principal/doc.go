// Package principal defines the fixed-length identifiers naming
// identities on the platform: self-authenticating principals derived
// from public keys, the anonymous principal, and platform-assigned
// opaque principals such as canister IDs. Principal is a comparable
// value type with a checksummed base32 text form.
package principal
