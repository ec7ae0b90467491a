// Package services wires the client building blocks into application flows.
//
// ScanPipeline receives decoded payloads from the capture controller,
// classifies them, resolves the external action and, in parallel, records
// the scan in history. CodeService registers user-created codes.
package services
