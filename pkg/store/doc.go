// Package store defines persistence-facing contracts for component data and
// schemas, plus adapters that plug a Store into the composer.
//
// Responsibilities:
//   - Store[T] only loads/saves a single value for a single key.
//   - Components adapts a Store[compose.Data] keyed by ref into a
//     compose.DataProvider and compose.Committer.
//   - Schemas adapts a Store[compose.Schema] keyed by component name into a
//     compose.SchemaProvider, and can wrap a compose.Remote so fetched schemas
//     are remembered.
//
// Data flow:
//
//	Remote -> Schemas.Remember -> Store -> Schemas.Schema -> compose.Composer
//	compose.Composer -> Components.Commit -> Store -> Components.Data
//
// Versions:
//
//	Meta.Version is assigned by the store on every Save. Update compares the
//	caller's expected version against the stored one and fails with
//	ErrVersionMismatch when they differ.
package store
