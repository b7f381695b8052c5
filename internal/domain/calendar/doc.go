// Package calendar models the public-holiday calendar consulted by workday alarms.
//
// A Snapshot is one complete load of the remote feed: a set of holiday dates
// and a set of compensatory workdays, keyed by "YYYY-MM-DD". A nil *Snapshot is
// valid and answers every query with the built-in Monday to Friday rule.
package calendar
