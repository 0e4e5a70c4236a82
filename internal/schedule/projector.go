// Package schedule projects raw ingested lessons into per-day, per-lesson
// ordered views filtered by the academic week type.
package schedule

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

// LessonSource is the slice of storage the projector needs.
type LessonSource interface {
	ListLessons(ctx context.Context, groupID int64, from, to time.Time) ([]domain.Lesson, error)
}

// Projector builds week and day schedule views for a group.
type Projector struct {
	lessons LessonSource
	calc    *domain.WeekCalculator
	loc     *time.Location
}

// NewProjector creates a Projector evaluating dates in loc.
func NewProjector(lessons LessonSource, calc *domain.WeekCalculator, loc *time.Location) *Projector {
	return &Projector{lessons: lessons, calc: calc, loc: loc}
}

// WeekSchedule returns six DaySchedules (Monday through Saturday) for the
// week containing now, filtered to the current week type. Days with no
// lessons are present with an empty lesson list so callers can render them.
func (p *Projector) WeekSchedule(ctx context.Context, groupID int64, now time.Time) ([]domain.DaySchedule, error) {
	monday := domain.MondayOf(now.In(p.loc))
	saturday := monday.AddDate(0, 0, 5)
	weekType := p.calc.ForDate(now)

	lessons, err := p.lessons.ListLessons(ctx, groupID, monday, saturday)
	if err != nil {
		return nil, fmt.Errorf("week schedule: %w", err)
	}

	byDate := groupByDate(lessons, weekType)

	days := make([]domain.DaySchedule, 0, 6)
	for i := 0; i < 6; i++ {
		date := monday.AddDate(0, 0, i)
		days = append(days, buildDay(date, i+1, byDate[dateKey(date)]))
	}
	return days, nil
}

// DaySchedule returns the single-day view for date, filtered to that date's
// week type.
func (p *Projector) DaySchedule(ctx context.Context, groupID int64, date time.Time) (domain.DaySchedule, error) {
	day := domain.StartOfDay(date.In(p.loc))
	weekType := p.calc.ForDate(day)

	lessons, err := p.lessons.ListLessons(ctx, groupID, day, day)
	if err != nil {
		return domain.DaySchedule{}, fmt.Errorf("day schedule: %w", err)
	}

	byDate := groupByDate(lessons, weekType)
	return buildDay(day, weekdayIndex(day), byDate[dateKey(day)]), nil
}

// HasLessons reports whether any day of the projection has at least one lesson.
func HasLessons(days []domain.DaySchedule) bool {
	for _, d := range days {
		if len(d.Lessons) > 0 {
			return true
		}
	}
	return false
}

func groupByDate(lessons []domain.Lesson, weekType domain.WeekType) map[string][]domain.Lesson {
	byDate := make(map[string][]domain.Lesson)
	for _, l := range lessons {
		if l.WeekType != weekType {
			continue
		}
		k := dateKey(l.Date)
		byDate[k] = append(byDate[k], l)
	}
	return byDate
}

func buildDay(date time.Time, dayIndex int, lessons []domain.Lesson) domain.DaySchedule {
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].Number < lessons[j].Number })
	return domain.DaySchedule{
		Date:    date,
		DayName: domain.DayName(dayIndex),
		Lessons: lessons,
	}
}

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// weekdayIndex maps a date to the 1=Monday..6=Saturday scheme; Sunday is
// folded onto Saturday since the timetable has no seventh day.
func weekdayIndex(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 6
	}
	return wd
}
