// Package registry holds the in-memory alarm list.
//
// The Registry creates, toggles and removes alarms and writes the whole list
// through to a record.Store after every mutation. Decode is the tolerant loader
// for persisted lists: malformed entries are dropped or default-filled, never
// reported as errors.
package registry
