// Package redact removes likely secrets from file content before it is
// embedded in an analysis prompt.
//
// Detection uses regex heuristics covering common secret shapes: API
// keys, generic secret/token/password assignments, AWS access key IDs,
// bearer tokens, JWTs, private key blocks, and GitHub tokens.
package redact
