// Package state implements storage-backed stores: a typed value persisted
// under one key, loaded lazily, seeded when absent and written back on
// every change.
//
// Values are stored in a versioned envelope:
//
//	{"version":1,"data":[...]}
//
// A bare JSON value without the envelope is treated as version 0 and passed
// through the configured migration before use.
//
// Storage failures never reach callers. A failed read falls back to the seed
// in memory and a failed write keeps the in-memory value; both are logged.
// Update returns only errors produced by the mutation itself or by validation.
//
// A store is not Ready until its first Load completed. Get and Update load on
// demand, so callers never observe an unhydrated value.
package state
