// Package wealth consolidates holdings reported by many statements into one
// portfolio snapshot.
//
// Statements are parsed by the statement package into HoldingRecords, one
// per line of a statement. Consolidate groups the records of the same
// security across brokers and folios, values them with the latest known
// prices, converts foreign categories with configured rates and computes
// category and grand totals, allocations and progress toward a FIRE target.
//
// The resulting Snapshot is a plain JSON document: it is recomputed from
// scratch on every run and written with WriteSnapshot. Problems met along
// the way, such as unreadable files or missing prices, are kept as
// Warnings on the snapshot rather than failing the run.
//
// This package serves as the foundational logic for the `wlt` command-line
// tool.
package wealth
