// Package middleware provides the bearer token authentication middleware and
// the shared mapping from token lifecycle errors to HTTP responses.
package middleware
