// Package server exposes the ingestion pipeline, vector store and searcher
// over HTTP.
//
// Routes are mounted under /api. Errors from core components surface as a
// generic 500 response carrying the underlying message; malformed request
// bodies are rejected with 400 before reaching the core.
package server
