// Package scans persists the local cache of accepted scans.
//
// Rows carry an integer position. A full reload rewrites positions 0..n-1
// in the order the remote returned; a newly accepted scan is inserted at
// MIN(position)-1 so List, ordered by position, is most-recent-first.
//
// The cache mirrors the in-memory history ledger and is only written from
// the history engine's single-writer context.
package scans
