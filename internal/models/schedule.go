package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type ScheduleUnit int

const (
	ScheduleNone ScheduleUnit = iota
	ScheduleHours
	ScheduleDays
)

// Schedule is a publish delay relative to the moment it is applied.
type Schedule struct {
	Unit ScheduleUnit
	N    int
}

var scheduleTokens = map[string]Schedule{
	"1h":    {Unit: ScheduleHours, N: 1},
	"2h":    {Unit: ScheduleHours, N: 2},
	"5h":    {Unit: ScheduleHours, N: 5},
	"10h":   {Unit: ScheduleHours, N: 10},
	"1D":    {Unit: ScheduleDays, N: 1},
	"7D":    {Unit: ScheduleDays, N: 7},
	"Never": {Unit: ScheduleNone},
	"":      {Unit: ScheduleNone},
}

func ParseSchedule(token string) (Schedule, error) {
	s, ok := scheduleTokens[token]
	if !ok {
		return Schedule{}, fmt.Errorf("%w: unknown schedule %q", ErrValidation, token)
	}
	return s, nil
}

func (s Schedule) IsZero() bool {
	return s.Unit == ScheduleNone || s.N <= 0
}

func (s Schedule) Duration() time.Duration {
	switch s.Unit {
	case ScheduleHours:
		return time.Duration(s.N) * time.Hour
	case ScheduleDays:
		return time.Duration(s.N) * 24 * time.Hour
	}
	return 0
}

// At resolves the schedule against now. A zero schedule resolves to nil.
func (s Schedule) At(now time.Time) *time.Time {
	if s.IsZero() {
		return nil
	}
	at := now.Add(s.Duration())
	return &at
}

func (s Schedule) String() string {
	switch s.Unit {
	case ScheduleHours:
		return fmt.Sprintf("%dh", s.N)
	case ScheduleDays:
		return fmt.Sprintf("%dD", s.N)
	}
	return "Never"
}

func (s *Schedule) UnmarshalJSON(data []byte) error {
	var token *string
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("%w: schedule must be a string", ErrValidation)
	}
	if token == nil {
		*s = Schedule{}
		return nil
	}
	parsed, err := ParseSchedule(*token)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
