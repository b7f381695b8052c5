package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// maxPeriodDays bounds a single holiday period; longer spans are treated as malformed.
const maxPeriodDays = 366

// generatedLayout matches the feed's "Generated" field, e.g. "20250105T083000Z".
const generatedLayout = "20060102T150405"

// ErrMalformedPayload is returned when the feed cannot be decoded.
var ErrMalformedPayload = errors.New("malformed holiday payload")

// period is one holiday block of the feed.
type period struct {
	Name      string   `json:"Name"`
	StartDate string   `json:"StartDate"`
	EndDate   string   `json:"EndDate"`
	Duration  int      `json:"Duration"`
	CompDays  []string `json:"CompDays"`
	URL       string   `json:"URL"`
	Memo      string   `json:"Memo"`
}

// payload is the top-level feed document.
type payload struct {
	Name      string              `json:"Name"`
	Version   string              `json:"Version"`
	Generated string              `json:"Generated"`
	Timezone  string              `json:"Timezone"`
	Years     map[string][]*period `json:"Years"`
}

// Parse decodes the holiday feed into a Snapshot.
// Every day from StartDate to EndDate (inclusive) becomes a holiday and every
// CompDays entry becomes a compensatory workday. Periods with unparseable
// bounds, or spanning more than a year, are skipped. A null document, year
// list or period is malformed.
func Parse(data []byte) (*Snapshot, error) {
	var doc *payload
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: null document", ErrMalformedPayload)
	}

	var holidays, workdays []string

	for year, periods := range doc.Years {
		if periods == nil {
			return nil, fmt.Errorf("%w: year %s is null", ErrMalformedPayload, year)
		}

		for _, p := range periods {
			if p == nil {
				return nil, fmt.Errorf("%w: null period in year %s", ErrMalformedPayload, year)
			}

			holidays = append(holidays, expandPeriod(p.StartDate, p.EndDate)...)

			for _, day := range p.CompDays {
				if day != "" {
					workdays = append(workdays, day)
				}
			}
		}
	}

	return NewSnapshot(holidays, workdays, parseGenerated(doc.Generated)), nil
}

// expandPeriod lists every date key in [start, end].
func expandPeriod(start, end string) []string {
	if start == "" || end == "" {
		return nil
	}

	from, err := time.Parse(DateKeyLayout, start)
	if err != nil {
		return nil
	}

	to, err := time.Parse(DateKeyLayout, end)
	if err != nil {
		return nil
	}

	if to.Sub(from) > maxPeriodDays*24*time.Hour {
		return nil
	}

	var keys []string
	for cursor := from; !cursor.After(to); cursor = cursor.AddDate(0, 0, 1) {
		keys = append(keys, DateKey(cursor))
	}

	return keys
}

// parseGenerated reads the feed timestamp, which is always UTC.
func parseGenerated(s string) time.Time {
	if len(s) < len(generatedLayout) {
		return time.Time{}
	}

	t, err := time.Parse(generatedLayout, s[:len(generatedLayout)])
	if err != nil {
		return time.Time{}
	}

	return t.UTC()
}
