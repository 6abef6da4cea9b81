// Package storage provides the durable backends for the token blacklist.
//
// Three implementations of auth.BlacklistStore are available:
//
//   - RedisBlacklist: keyed SETNX entries, optionally expiring after the
//     provider's token expiry window.
//   - PostgresBlacklist: a token_blacklist table with the token as primary
//     key; duplicate inserts resolve via ON CONFLICT DO NOTHING.
//   - MemoryBlacklist: process-local map for development and tests.
//
// All stores tolerate duplicate inserts as no-op successes, which makes
// concurrent logouts for the same token race-safe by construction.
package storage
