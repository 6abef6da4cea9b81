// Package identity is the boundary to the external identity provider.
//
// The provider owns credential verification, session issuance, refresh-token
// rotation, password mutation and OAuth redirect construction. This package
// exposes those operations as opaque remote calls through the Provider
// interface, plus a thin data REST surface for row storage guarded by the
// provider's row-level security.
//
// Client is the production implementation against a Supabase-compatible
// REST API. Consumers take the Provider interface so tests can substitute a
// fake without any network traffic.
package identity
