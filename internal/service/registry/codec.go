package registry

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Field names of a persisted alarm record.
const (
	FieldID      = "id"
	FieldLabel   = "label"
	FieldTime    = "time"
	FieldDays    = "days"
	FieldEnabled = "enabled"
	FieldMode    = "mode"
)

// ErrMalformedList is returned by Decode when the document is not a JSON array.
var ErrMalformedList = errors.New("persisted alarms are not a list")

// NewID returns a fresh alarm identifier.
func NewID() string {
	return uuid.NewString()
}

// Encode serialises alarms as a JSON array of flat records.
func Encode(alarms []domain.Alarm) ([]byte, error) {
	list := &structpb.ListValue{
		Values: make([]*structpb.Value, 0, len(alarms)),
	}

	for i := range alarms {
		list.Values = append(list.Values, structpb.NewStructValue(ToRecord(&alarms[i])))
	}

	data, err := protojson.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode alarms: %w", err)
	}

	return data, nil
}

// Decode parses a persisted alarm list. Anything that is not a JSON array
// yields an empty list and ErrMalformedList. Entries without a valid "time"
// are discarded and the other fields fall back to defaults when missing or of
// the wrong type.
func Decode(data []byte, newID func() string) ([]domain.Alarm, error) {
	var list structpb.ListValue
	if err := protojson.Unmarshal(data, &list); err != nil {
		return []domain.Alarm{}, fmt.Errorf("%w: %w", ErrMalformedList, err)
	}

	alarms := make([]domain.Alarm, 0, len(list.GetValues()))

	for _, value := range list.GetValues() {
		a, ok := FromRecord(value.GetStructValue(), newID)
		if ok {
			alarms = append(alarms, a)
		}
	}

	return alarms, nil
}

// ToRecord converts an alarm into its flat record form.
func ToRecord(a *domain.Alarm) *structpb.Struct {
	days := make([]*structpb.Value, 0, len(a.Days))
	for _, d := range a.Days {
		days = append(days, structpb.NewStringValue(string(d)))
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			FieldID:      structpb.NewStringValue(a.ID),
			FieldLabel:   structpb.NewStringValue(a.Label),
			FieldTime:    structpb.NewStringValue(a.Time.String()),
			FieldDays:    structpb.NewListValue(&structpb.ListValue{Values: days}),
			FieldEnabled: structpb.NewBoolValue(a.Enabled),
			FieldMode:    structpb.NewStringValue(string(a.Mode)),
		},
	}
}

// FromRecord converts a flat record into an alarm, applying defaults.
// It returns false when the record is not an object or lacks a valid time.
func FromRecord(record *structpb.Struct, newID func() string) (domain.Alarm, bool) {
	if record == nil {
		return domain.Alarm{}, false
	}

	if newID == nil {
		newID = NewID
	}

	fields := record.GetFields()

	raw, ok := stringField(fields, FieldTime)
	if !ok {
		return domain.Alarm{}, false
	}

	tod, err := domain.ParseTimeOfDay(raw)
	if err != nil {
		return domain.Alarm{}, false
	}

	a := domain.Alarm{
		Label:   domain.DefaultLabel,
		Time:    tod,
		Days:    DaysFromValue(fields[FieldDays]),
		Enabled: true,
		Mode:    domain.ModeCustom,
	}

	if id, ok := stringField(fields, FieldID); ok && id != "" {
		a.ID = id
	} else {
		a.ID = newID()
	}

	if label, ok := stringField(fields, FieldLabel); ok {
		a.Label = label
	}

	if v, ok := fields[FieldEnabled].GetKind().(*structpb.Value_BoolValue); ok {
		a.Enabled = v.BoolValue
	}

	if mode, ok := stringField(fields, FieldMode); ok {
		a.Mode = domain.ParseMode(mode)
	}

	return a, true
}

// DaysFromValue extracts the valid weekday tags from a list value.
// Non-list values give an empty set and unknown tags are dropped.
func DaysFromValue(value *structpb.Value) []domain.Day {
	days := []domain.Day{}

	for _, item := range value.GetListValue().GetValues() {
		s, ok := item.GetKind().(*structpb.Value_StringValue)
		if !ok {
			continue
		}

		// Tags are stored lowercase; anything else is not a tag we wrote.
		if d, ok := domain.ParseDay(s.StringValue); ok && string(d) == s.StringValue {
			days = append(days, d)
		}
	}

	return days
}

func stringField(fields map[string]*structpb.Value, name string) (string, bool) {
	v, ok := fields[name].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", false
	}

	return v.StringValue, true
}
