// Package store defines the persistence interfaces for the application's
// domain entities, along with the shared error values and transaction
// helpers that all implementations honor. Concrete implementations live
// under internal/platform.
package store
