// Package taller is the HTTP client for the workshop web application's JSON
// endpoints: the per-component action catalog, diagram part lookup, parts
// suggestions, supply search and the intake form itself.
//
// Routes are configurable through Endpoints because installations mount the
// application under different prefixes. The action catalog route is a
// template whose trailing "0" is replaced by the component id; the catalog
// package owns that expansion and its fallback URL.
//
// IDs and money values arrive as numbers or strings depending on the view
// that produced them, so ID and Amount accept both.
package taller
