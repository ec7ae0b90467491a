// Package client contains the client side of the remote activity log.
//
// # Overview
//
// The package provides:
//  1. The Client contract used by the history engine: FetchScans,
//     AppendScan, FetchCodes and CreateCode.
//  2. HTTPClient, an HTTP+JSON implementation over go-retryablehttp. Every
//     call first asks the credentials.Provider for a fresh bearer token; a
//     token failure ends the call before any request is made.
//  3. Tolerant response parsing: a collection may be a bare array or an
//     object holding the array under data, results or items, tried in that
//     order (see CollectionCandidates). Entries without a key are dropped.
//  4. Local cache bootstrap (InitDatabase, RunMigrations, NewRepositories).
//
// # Error Handling
//
// Failed calls return *CallError carrying the terminal Phase. It unwraps to
// common.ErrAuthCredentialUnavailable, common.ErrNetworkFailure (transport
// errors and non-2xx statuses) or common.ErrInvalidResponseShape.
//
// # Tracing
//
// Each call runs in an OpenTelemetry span named history.<op> with phase
// transitions recorded as span events.
package client
