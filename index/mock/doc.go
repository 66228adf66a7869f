// Package mock provides an in-memory index.Index implementation for tests,
// with call counters and injectable function fields.
package mock
