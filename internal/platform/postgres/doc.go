// Package postgres implements the store interfaces against a PostgreSQL
// database. All stores operate over store.DBTX so they run equally well
// on a connection pool or inside a transaction; database errors are
// mapped onto the store error taxonomy before they leave this package.
package postgres
