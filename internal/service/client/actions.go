package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
)

// errUnknownDay is returned for day names that are not weekday tags.
var errUnknownDay = errors.New("unknown day")

// AddOptions describes a new alarm from the command line.
type AddOptions struct {
	// Label is the alarm name; empty uses the default label.
	Label string
	// Time is "HH:MM"; empty uses the next five-minute boundary.
	Time string
	// Days are weekday tags such as "mon"; empty rings every day.
	Days []string
	// Workday follows the holiday calendar instead of Days.
	Workday bool
	// Now returns the current time for the default Time.
	Now func() time.Time
}

// List prints every alarm.
func List() Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		alarms, err := client.ListAlarms(ctx)
		if err != nil {
			return err
		}

		if len(alarms) == 0 {
			_, err = fmt.Fprintln(out, "No alarms.")

			return err
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // Column padding.

		_, _ = fmt.Fprintln(w, "ID\tTIME\tLABEL\tREPEAT\tSTATE")

		for i := range alarms {
			a := &alarms[i]
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Time, a.Title(), repeatText(a), stateText(a.Enabled))
		}

		return w.Flush()
	}
}

// Add creates an alarm.
func Add(opts AddOptions) Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		draft, err := opts.draft()
		if err != nil {
			return err
		}

		created, err := client.CreateAlarm(ctx, &draft)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "Created %s %s (%s) %s\n", created.ID, created.Time, created.Title(), repeatText(&created))

		return err
	}
}

// Toggle flips an alarm on or off.
func Toggle(id string) Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		toggled, err := client.ToggleAlarm(ctx, id)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "Alarm %s is now %s\n", toggled.ID, stateText(toggled.Enabled))

		return err
	}
}

// Remove deletes an alarm.
func Remove(id string) Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		if err := client.RemoveAlarm(ctx, id); err != nil {
			return err
		}

		_, err := fmt.Fprintf(out, "Removed %s\n", id)

		return err
	}
}

// Next prints the nearest upcoming alarm.
func Next() Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		next, err := client.NextAlarm(ctx, time.Time{})
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "%s rings %s (%s)\n",
			next.Alarm.Title(), next.Relative, next.At.Local().Format("Mon 2006-01-02 15:04"))

		return err
	}
}

// CalendarStatus prints the holiday calendar state.
func CalendarStatus() Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		st, err := client.CalendarStatus(ctx)
		if err != nil {
			return err
		}

		return writeStatus(out, &st)
	}
}

// RefreshCalendar re-fetches the holiday calendar and prints the new state.
func RefreshCalendar() Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		st, err := client.RefreshCalendar(ctx)
		if err != nil {
			return err
		}

		return writeStatus(out, &st)
	}
}

// CheckDay prints whether a date is a workday.
func CheckDay(date string) Action {
	return func(ctx context.Context, client API, out io.Writer) error {
		day, err := client.CheckDay(ctx, date)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(out, dayText(day))

		return err
	}
}

func (o *AddOptions) draft() (domain.Draft, error) {
	draft := domain.Draft{
		Label: o.Label,
		Mode:  domain.ModeCustom,
		Days:  make([]domain.Day, 0, len(o.Days)),
	}

	if o.Workday {
		draft.Mode = domain.ModeWorkday
	}

	if strings.TrimSpace(o.Time) == "" {
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}

		draft.Time = domain.RoundedTime(now())
	} else {
		tod, err := domain.ParseTimeOfDay(o.Time)
		if err != nil {
			return domain.Draft{}, err
		}

		draft.Time = tod
	}

	for _, raw := range o.Days {
		for part := range strings.SplitSeq(raw, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}

			d, ok := domain.ParseDay(part)
			if !ok {
				return domain.Draft{}, fmt.Errorf("%w: %q", errUnknownDay, part)
			}

			draft.Days = append(draft.Days, d)
		}
	}

	return draft, nil
}

func repeatText(a *domain.Alarm) string {
	if a.Mode == domain.ModeWorkday {
		return "workdays"
	}

	if len(a.Days) == 0 {
		return "every day"
	}

	tags := make([]string, len(a.Days))
	for i, d := range a.Days {
		tags[i] = string(d)
	}

	return strings.Join(tags, ",")
}

func stateText(enabled bool) string {
	if enabled {
		return "on"
	}

	return "off"
}

func writeStatus(out io.Writer, st *calendar.Status) error {
	state := "not synced"

	switch {
	case st.Loading:
		state = "loading"
	case st.LastError != "":
		state = "error: " + st.LastError
	case st.HasData:
		state = "synced"
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0) //nolint:mnd // Column padding.

	_, _ = fmt.Fprintf(w, "State:\t%s\n", state)
	_, _ = fmt.Fprintf(w, "Source:\t%s\n", st.SourceURL)
	_, _ = fmt.Fprintf(w, "Generated:\t%s\n", instantText(st.Generated))
	_, _ = fmt.Fprintf(w, "Synced at:\t%s\n", instantText(st.SyncedAt))
	_, _ = fmt.Fprintf(w, "Holidays:\t%d\n", st.Holidays)
	_, _ = fmt.Fprintf(w, "Workdays:\t%d\n", st.Workdays)

	return w.Flush()
}

func instantText(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Local().Format(time.DateTime)
}

func dayText(day api.DayInfo) string {
	switch {
	case day.Workday:
		return day.Date + ": workday"
	case day.Holiday:
		return day.Date + ": holiday"
	default:
		return day.Date + ": day off"
	}
}
