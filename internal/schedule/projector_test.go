package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

type fakeLessons struct {
	lessons []domain.Lesson
	err     error
}

func (f *fakeLessons) ListLessons(_ context.Context, groupID int64, from, to time.Time) ([]domain.Lesson, error) {
	if f.err != nil {
		return nil, f.err
	}
	var res []domain.Lesson
	for _, l := range f.lessons {
		if l.GroupID != groupID {
			continue
		}
		k := l.Date.Format("2006-01-02")
		if k >= from.Format("2006-01-02") && k <= to.Format("2006-01-02") {
			res = append(res, l)
		}
	}
	return res, nil
}

func lesson(id int64, date time.Time, number int, wt domain.WeekType) domain.Lesson {
	return domain.Lesson{
		ID:        id,
		GroupID:   1,
		Name:      "Subject",
		Date:      date,
		DayOfWeek: int(date.Weekday()),
		Number:    number,
		StartTime: "08:30:00",
		EndTime:   "10:00:00",
		WeekType:  wt,
	}
}

func newProjector(src LessonSource) *Projector {
	loc := time.UTC
	anchor := time.Date(2024, time.September, 2, 0, 0, 0, 0, loc) // Monday, odd week
	return NewProjector(src, domain.NewWeekCalculator(anchor, loc), loc)
}

func TestWeekScheduleFiltersAndOrders(t *testing.T) {
	monday := time.Date(2024, time.September, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	src := &fakeLessons{lessons: []domain.Lesson{
		lesson(3, monday, 3, domain.WeekOdd),
		lesson(1, monday, 1, domain.WeekOdd),
		lesson(2, monday, 2, domain.WeekEven), // wrong week type, dropped
		lesson(4, tuesday, 1, domain.WeekOdd),
	}}
	p := newProjector(src)

	days, err := p.WeekSchedule(context.Background(), 1, monday.Add(10*time.Hour))
	require.NoError(t, err)
	require.Len(t, days, 6)

	require.Equal(t, "Monday", days[0].DayName)
	require.Len(t, days[0].Lessons, 2)
	require.Equal(t, 1, days[0].Lessons[0].Number)
	require.Equal(t, 3, days[0].Lessons[1].Number)
	require.EqualValues(t, 1, days[0].Lessons[0].ID) // ids carried through

	require.Len(t, days[1].Lessons, 1)
	for i := 2; i < 6; i++ {
		require.Empty(t, days[i].Lessons, "day %d should be empty", i)
	}

	require.True(t, HasLessons(days))
}

func TestWeekScheduleEmptyWeek(t *testing.T) {
	p := newProjector(&fakeLessons{})
	now := time.Date(2024, time.September, 4, 12, 0, 0, 0, time.UTC)

	days, err := p.WeekSchedule(context.Background(), 1, now)
	require.NoError(t, err)
	require.Len(t, days, 6)
	require.False(t, HasLessons(days))
}

func TestDayScheduleUsesDateWeekType(t *testing.T) {
	// 2024-09-09 falls in the even (second) semester week.
	evenMonday := time.Date(2024, time.September, 9, 0, 0, 0, 0, time.UTC)

	src := &fakeLessons{lessons: []domain.Lesson{
		lesson(1, evenMonday, 1, domain.WeekEven),
		lesson(2, evenMonday, 2, domain.WeekOdd),
	}}
	p := newProjector(src)

	day, err := p.DaySchedule(context.Background(), 1, evenMonday.Add(7*time.Hour))
	require.NoError(t, err)
	require.Equal(t, "Monday", day.DayName)
	require.Len(t, day.Lessons, 1)
	require.Equal(t, domain.WeekEven, day.Lessons[0].WeekType)
}

func TestProjectorPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	p := newProjector(&fakeLessons{err: boom})
	now := time.Date(2024, time.September, 2, 8, 0, 0, 0, time.UTC)

	_, err := p.WeekSchedule(context.Background(), 1, now)
	require.ErrorIs(t, err, boom)

	_, err = p.DaySchedule(context.Background(), 1, now)
	require.ErrorIs(t, err, boom)
}
