// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations accept a store.DBTX so they can run
// against a plain connection or inside a caller-managed transaction.
package postgres
