// Package normalize flattens semi-structured source records into plain
// descriptive text for embedding.
//
// Flattening is deterministic: field iteration follows the record's own
// insertion order, so the same record always produces the same text. A
// two-path design keeps normalization total: the structured flattener
// handles any supported value shape, and a fixed-field fallback covers
// records with unexpected content so that normalization never fails.
package normalize
