// Package identity provides the signing side of the authentication
// model: concrete identities over the supported algorithm families, the
// anonymous identity, and delegated identities that sign with a
// terminal key while acting as the root principal. Chain links are
// issued with Delegate or SignDelegation; the verifying side lives in
// the delegation package.
package identity
