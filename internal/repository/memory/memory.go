// Package memory provides in-memory store implementations backed by
// mutex-guarded maps. They mirror the behavior of the PostgreSQL
// repositories, including the domain error mapping, and exist for
// tests and local development without a database.
package memory
