// Package calendar implements the holiday calendar cache consulted by
// workday alarms.
//
// The Cache keeps the last successfully fetched calendar.Snapshot and answers
// IsWorkday/IsHoliday synchronously. Refreshes run against a Source; every
// refresh supersedes the previous one, so a slow stale response can never
// overwrite a newer snapshot. A Resyncer re-runs the refresh on a cron
// schedule.
package calendar
