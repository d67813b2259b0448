// Package client contains the typed backend contract of the storeit client.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     authentication, listings, per-file mutations, sharing, replacement
//     uploads and search.
//  2. A concrete HTTP implementation (see HTTPClient) layered on
//     gateway.Gateway, which attaches the bearer credential and normalizes
//     failures.
//
// # Error Handling
//
// Failures surface as gateway errors and can be matched with errors.Is:
// gateway.ErrNoCredential (nothing was sent), gateway.ErrUnauthorized (401),
// gateway.ErrEmptyResponse (2xx without payload). Other non-2xx responses are
// *gateway.RequestError.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. Every operation accepts a
// context.Context; cancelling it aborts the in-flight request.
package client
