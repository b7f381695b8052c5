// Package record implements persistence for named records.
//
// A record is an opaque byte payload addressed by name; the alarm registry
// stores its whole alarm list as one record. FileStore keeps each record in a
// JSON file inside a directory and SQLiteStore keeps them in a single table.
// Both satisfy the Store interface the registry depends on.
package record
