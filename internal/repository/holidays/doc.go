// Package holidays fetches the public-holiday feed over HTTP and decodes it
// into a calendar.Snapshot.
package holidays
