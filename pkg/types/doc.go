// Package types defines the Store interface, the normalized snapshot records
// written by the ingestion pipeline, and the standard errors shared by the
// almanac packages.
package types
