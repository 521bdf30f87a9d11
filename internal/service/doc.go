// Package service provides the evaluation pipeline on top of the graph
// engine: loading material documents, running evaluation and
// aggregation, persisting the results, and publishing events.
//
// # Concurrency
//
// Materials are independent of one another, so EvaluateAll runs each
// against its own private Graph in parallel. Nothing is shared between
// the per-material graphs except the read-only registry and catalog.
package service
