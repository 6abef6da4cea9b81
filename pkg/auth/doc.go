// Package auth implements the token lifecycle core: bearer-token validation,
// logout via a durable revocation blacklist, and refresh-token exchange.
//
// The identity provider owns token issuance and cryptographic validity; this
// package layers local revocation on top. The ordering invariant is that the
// blacklist is consulted before the provider on every validation, so a token
// revoked by logout is rejected even while the provider would still accept it.
//
// Failure outcomes are distinct sentinel errors (see errors.go) so the HTTP
// layer can map them to 400/401/404/502 rather than a single generic failure.
// No operation is retried here; transient upstream timeouts surface as
// ErrProviderTimeout and the caller may retry the whole request.
package auth
