// Package models defines domain entities and persistence interfaces for the teammirror migration tool.
//
// The package contains two categories of types:
//
// 1. Snapshot entities: the portable record of exported team state
//   - [Team] : Team structure (slug, privacy, permission, parent reference)
//   - [Membership] : One user's manually managed membership in one team
//   - [IdPGroupMapping] : Identity-provider groups authoritative for a team's membership
//   - [Snapshot] : The aggregate document passed between the export and mirror phases
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [Run] : One export or mirror invocation with its mode, counts, and timing
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
