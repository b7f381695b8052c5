package alarm

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/domain/calendar"
	"github.com/oshokin/alarm-clock/internal/service/registry"
)

// Field names of the non-alarm messages.
const (
	FieldAlarm     = "alarm"
	FieldAt        = "at"
	FieldRelative  = "relative"
	FieldLoading   = "loading"
	FieldHasData   = "has_data"
	FieldLastError = "last_error"
	FieldGenerated = "generated"
	FieldSyncedAt  = "synced_at"
	FieldSourceURL = "source_url"
	FieldHolidays  = "holidays"
	FieldWorkdays  = "workdays"
	FieldDate      = "date"
	FieldWorkday   = "workday"
	FieldHoliday   = "holiday"
)

// ErrMalformedResponse is returned when a response lacks required fields.
var ErrMalformedResponse = errors.New("malformed response")

// Next is the decoded NextAlarm response.
type Next struct {
	// Alarm rings next.
	Alarm domain.Alarm
	// At is when it rings.
	At time.Time
	// Relative is the countdown text computed by the daemon.
	Relative string
}

// DayInfo is the decoded CheckDay response.
type DayInfo struct {
	// Date is the YYYY-MM-DD date that was checked.
	Date string
	// Workday reports whether alarms in workday mode ring on that date.
	Workday bool
	// Holiday reports whether the date is a day off.
	Holiday bool
}

// AlarmToProto converts an alarm into its wire record.
func AlarmToProto(a *domain.Alarm) *structpb.Struct {
	return registry.ToRecord(a)
}

// AlarmFromProto converts a wire record into an alarm.
func AlarmFromProto(record *structpb.Struct) (domain.Alarm, error) {
	a, ok := registry.FromRecord(record, func() string { return "" })
	if !ok {
		return domain.Alarm{}, fmt.Errorf("%w: alarm record without a valid time", ErrMalformedResponse)
	}

	return a, nil
}

// AlarmsFromProto converts a wire list into alarms, skipping malformed entries.
func AlarmsFromProto(list *structpb.ListValue) []domain.Alarm {
	alarms := make([]domain.Alarm, 0, len(list.GetValues()))

	for _, value := range list.GetValues() {
		if a, err := AlarmFromProto(value.GetStructValue()); err == nil {
			alarms = append(alarms, a)
		}
	}

	return alarms
}

// DraftToProto converts a draft into the CreateAlarm request.
func DraftToProto(draft *domain.Draft) *structpb.Struct {
	days := make([]*structpb.Value, 0, len(draft.Days))
	for _, d := range draft.Days {
		days = append(days, structpb.NewStringValue(string(d)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			registry.FieldLabel: structpb.NewStringValue(draft.Label),
			registry.FieldTime:  structpb.NewStringValue(draft.Time.String()),
			registry.FieldDays:  structpb.NewListValue(&structpb.ListValue{Values: days}),
			registry.FieldMode:  structpb.NewStringValue(string(draft.Mode)),
		},
	}
}

// draftFromProto validates a CreateAlarm request.
func draftFromProto(req *structpb.Struct) (domain.Draft, error) {
	fields := req.GetFields()

	raw := fields[registry.FieldTime].GetStringValue()

	tod, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		return domain.Draft{}, err
	}

	return domain.Draft{
		Label: fields[registry.FieldLabel].GetStringValue(),
		Time:  tod,
		Days:  registry.DaysFromValue(fields[registry.FieldDays]),
		Mode:  domain.ParseMode(fields[registry.FieldMode].GetStringValue()),
	}, nil
}

// nextToProto builds the NextAlarm response.
func nextToProto(upcoming *domain.Upcoming, from time.Time) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldAlarm:    structpb.NewStructValue(AlarmToProto(upcoming.Alarm)),
			FieldAt:       structpb.NewStringValue(upcoming.At.Format(time.RFC3339)),
			FieldRelative: structpb.NewStringValue(domain.FormatRelative(upcoming.At, from)),
		},
	}
}

// NextFromProto decodes the NextAlarm response.
func NextFromProto(resp *structpb.Struct) (Next, error) {
	fields := resp.GetFields()

	a, err := AlarmFromProto(fields[FieldAlarm].GetStructValue())
	if err != nil {
		return Next{}, err
	}

	at, err := time.Parse(time.RFC3339, fields[FieldAt].GetStringValue())
	if err != nil {
		return Next{}, fmt.Errorf("%w: at: %w", ErrMalformedResponse, err)
	}

	return Next{
		Alarm:    a,
		At:       at,
		Relative: fields[FieldRelative].GetStringValue(),
	}, nil
}

// StatusToProto converts the calendar status into its wire form.
func StatusToProto(status *calendar.Status) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldLoading:   structpb.NewBoolValue(status.Loading),
			FieldHasData:   structpb.NewBoolValue(status.HasData),
			FieldLastError: structpb.NewStringValue(status.LastError),
			FieldGenerated: structpb.NewStringValue(formatInstant(status.Generated)),
			FieldSyncedAt:  structpb.NewStringValue(formatInstant(status.SyncedAt)),
			FieldSourceURL: structpb.NewStringValue(status.SourceURL),
			FieldHolidays:  structpb.NewNumberValue(float64(status.Holidays)),
			FieldWorkdays:  structpb.NewNumberValue(float64(status.Workdays)),
		},
	}
}

// StatusFromProto decodes the calendar status. Unparseable instants read as zero.
func StatusFromProto(resp *structpb.Struct) calendar.Status {
	fields := resp.GetFields()

	return calendar.Status{
		Loading:   fields[FieldLoading].GetBoolValue(),
		HasData:   fields[FieldHasData].GetBoolValue(),
		LastError: fields[FieldLastError].GetStringValue(),
		Generated: parseInstant(fields[FieldGenerated].GetStringValue()),
		SyncedAt:  parseInstant(fields[FieldSyncedAt].GetStringValue()),
		SourceURL: fields[FieldSourceURL].GetStringValue(),
		Holidays:  int(fields[FieldHolidays].GetNumberValue()),
		Workdays:  int(fields[FieldWorkdays].GetNumberValue()),
	}
}

// dayToProto builds the CheckDay response.
func dayToProto(day DayInfo) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldDate:    structpb.NewStringValue(day.Date),
			FieldWorkday: structpb.NewBoolValue(day.Workday),
			FieldHoliday: structpb.NewBoolValue(day.Holiday),
		},
	}
}

// DayFromProto decodes the CheckDay response.
func DayFromProto(resp *structpb.Struct) DayInfo {
	fields := resp.GetFields()

	return DayInfo{
		Date:    fields[FieldDate].GetStringValue(),
		Workday: fields[FieldWorkday].GetBoolValue(),
		Holiday: fields[FieldHoliday].GetBoolValue(),
	}
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}

func parseInstant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
