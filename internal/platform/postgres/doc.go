// Package postgres provides PostgreSQL implementations of the store
// interfaces. All implementations accept a store.DBTX so they work both
// against a *sql.DB and inside a transaction.
package postgres
