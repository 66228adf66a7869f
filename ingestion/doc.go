// Package ingestion provides the document ingestion pipeline: load source
// files, split them into overlapping chunks, embed the chunks in one batch,
// and upsert the resulting vector records into the index under the owning
// user's ID.
//
// Ingestion is all-or-nothing: a failure at any stage (load, split, embed,
// upsert) aborts the whole call and propagates to the caller. A partially
// indexed collection from a silently swallowed error would be worse than an
// explicit failure.
package ingestion
