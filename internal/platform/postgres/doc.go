// Package postgres provides PostgreSQL-backed implementations of the
// persistence interfaces defined in the store package, using the pgx
// driver through database/sql.
package postgres
