// Package repository defines the data access interfaces for propgraph.
//
// This package provides the repository abstraction layer for persisting
// quantity records and material membership. The actual implementation
// is in the sqlite subpackage.
//
// # Repository Interface
//
// The Repository interface defines all data access methods for stored
// quantities, materials, and the value arena behind provenance
// deduplication.
//
// # SQLite Implementation
//
// The sqlite implementation provides a complete repository using SQLite
// with WAL mode for concurrency. It handles:
//
// - Upserts of quantity records keyed by internal id
// - JSON serialization of record payloads
// - The deduplicated value arena resolving stripped provenance inputs
// - Material membership
//
// # Schema Migration
//
// The sqlite repository automatically migrates the schema on startup.
package repository
