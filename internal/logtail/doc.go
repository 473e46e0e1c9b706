// Package logtail reads the end of the client's log file for the in-app log
// view.
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// bounded however large the file grows. Parse decodes the JSON lines written
// by the logging package into an Entry; Format renders an Entry as
//
//	14:32:15 WARN  [catalog] actions unavailable componente_id=5
//
// Lines that are not JSON pass through unchanged.
package logtail
