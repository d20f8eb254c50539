// Package server provides HTTP middleware that authenticates incoming
// canister call envelopes.
//
// The middleware decodes the CBOR envelope from the request body,
// validates the delegation chain against the call's request id and
// destination canister, confirms the declared sender matches the
// authenticated principal, and stores the verified principal in the
// request context:
//
//	mw := server.NewEnvelopeAuthMiddleware()
//	handler := mw.Wrap(myHandler)
//
//	// inside myHandler:
//	caller, ok := server.GetPrincipalFromContext(r.Context())
//
// Rejections surface through the configurable ErrorHandler with an
// inspectable error kind, so an endpoint can choose between refusing
// the call and degrading it to anonymous.
package server
