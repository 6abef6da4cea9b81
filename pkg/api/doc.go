// Package api wires the HTTP surface: route registration, request and
// response schemas, and the handlers that bridge HTTP to the auth, profile
// and chat services.
package api
