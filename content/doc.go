// Package content implements an ordered, fail-fast mutation pipeline and a
// filtered read path over a persistent key-value engine.
//
// High-level behavior:
//   - A Mutation is an ordered batch of upsert/delete/delete-by-prefix/
//     delete-all operations. Commit applies it one operation at a time, in
//     submission order, and halts the batch on the first failure. Each
//     operation commits independently; there is no cross-operation rollback.
//   - Reads (LoadContent, LoadContentByPrefix, LoadAllKeys) share their key
//     matching predicates with the delete operations, so prefix reads and
//     prefix deletes always agree on what matches.
//   - The engine opens asynchronously; requests issued before it is ready are
//     queued and replayed once the open completes, or failed if it does not.
//
// All callbacks fire exactly once. Accepted requests complete on the
// database's internal owner goroutine; requests rejected after Close complete
// asynchronously on their own goroutine.
package content
