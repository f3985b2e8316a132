// Package postgres implements the store interfaces on PostgreSQL, using
// database/sql over the pgx stdlib driver.
package postgres
