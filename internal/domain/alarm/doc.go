// Package alarm contains core domain types for the alarm-clock business logic.
//
// It defines Alarm (a user-defined wake-up rule), Draft (the user submission
// before an id is assigned) and the pure occurrence functions: FiresAt decides
// whether an alarm rings at a given minute, NextOccurrence finds its next
// future firing instant. Both accept a WorkdayFunc so the holiday calendar can
// be injected by the caller.
package alarm
