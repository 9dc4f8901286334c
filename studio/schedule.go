package studio

import (
	"context"
	"sort"
	"strings"
)

// Weekdays in display order. ScheduleEntry.Day may use the three-letter
// abbreviation or the full name.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ScheduledClass is one weekly slot of a class.
type ScheduledClass struct {
	ClassID        string
	ClassName      string
	ClassType      string
	Description    string
	InstructorID   string
	InstructorName string
	Time           string
	Duration       int
}

// WeekdayName normalises "Mon", "monday", "MONDAY" to "Monday".
// Unrecognised values return "".
func WeekdayName(day string) string {
	d := strings.ToLower(strings.TrimSpace(day))
	if len(d) < 3 {
		return ""
	}
	for _, w := range Weekdays {
		lw := strings.ToLower(w)
		if d == lw || d == lw[:3] {
			return w
		}
	}
	return ""
}

// WeeklySchedule groups every class slot by weekday, each day sorted by
// start time. All seven days are present in the result.
func (s *Service) WeeklySchedule(ctx context.Context) (map[string][]ScheduledClass, error) {
	classes, err := s.store.ListClasses(ctx)
	if err != nil {
		return nil, err
	}

	week := make(map[string][]ScheduledClass, len(Weekdays))
	for _, d := range Weekdays {
		week[d] = []ScheduledClass{}
	}

	enricher := NewEnricher(s.store, s.enrichConcurrency)
	for _, c := range classes {
		for _, slot := range c.Daytime {
			day := WeekdayName(slot.Day)
			if day == "" {
				continue
			}
			week[day] = append(week[day], ScheduledClass{
				ClassID:        c.ClassID,
				ClassName:      c.ClassName,
				ClassType:      c.ClassType,
				Description:    c.Description,
				InstructorID:   c.InstructorID,
				InstructorName: enricher.InstructorName(ctx, c.InstructorID),
				Time:           slot.Time,
				Duration:       slot.Duration,
			})
		}
	}

	for _, slots := range week {
		sort.SliceStable(slots, func(i, j int) bool {
			if slots[i].Time != slots[j].Time {
				return slots[i].Time < slots[j].Time
			}
			return slots[i].ClassID < slots[j].ClassID
		})
	}
	return week, nil
}
