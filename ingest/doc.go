// Package ingest provides pipeline orchestration for moving source records
// into the vector store.
//
// The Pipeline type drives the ingestion workflow page by page:
//   - Fetching one page of source records at a time
//   - Flattening each record into normalized text
//   - Embedding all texts of the page in one batched call
//   - Upserting the resulting vector documents
//
// Pages are processed strictly sequentially; within a page, record
// normalization is fanned out on a worker pool. A batch failure aborts the
// run at the failing page, leaving prior pages' inserts intact.
package ingest
