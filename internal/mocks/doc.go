// Package mocks provides centralized mock implementations for testing.
//
// Each mock mirrors a store or service interface with optional function
// fields for per-test behavior and a simple in-memory default implementation
// backed by maps. Instead of defining inline mocks in individual test files,
// these standardized implementations can be reused.
package mocks
