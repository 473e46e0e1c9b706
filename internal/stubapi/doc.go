// Package stubapi serves the workshop API routes the intake client uses from
// a YAML fixture file, for demos and end-to-end tests without the real
// application. Submissions get a random UUID and are kept in memory.
package stubapi
