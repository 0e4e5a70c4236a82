package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPlanTodayDigestIsIdempotent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 1001, "07:00:00", false)
	h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Calculus")

	now := h.anchor.Add(6 * time.Hour) // 06:00, before the configured time
	require.NoError(t, h.planner.PlanToday(ctx, now))

	entries := listAll(t, h.repo, h.anchor.Add(7*time.Hour))
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].LessonID, "daily digest carries no lesson reference")
	require.True(t, entries[0].ScheduledAt.Equal(h.anchor.Add(7*time.Hour)))

	// A second pass on the same day must not create a duplicate.
	require.NoError(t, h.planner.PlanToday(ctx, now.Add(10*time.Minute)))
	entries = listAll(t, h.repo, h.anchor.Add(7*time.Hour))
	require.Len(t, entries, 1)
}

func TestPlanTodaySkipsChatPastNotificationTime(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 1002, "07:00:00", false)

	// 08:00 is past the 07:00 slot; no retroactive reminder.
	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(8*time.Hour)))
	require.Empty(t, listAll(t, h.repo, h.anchor.Add(24*time.Hour)))
}

func TestPlanTodayEveryLesson(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 1003, "23:59:00", true)
	first := h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Calculus")
	second := h.addLesson(t, h.anchor, 2, "10:40:00", "12:10:00", "Physics")

	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))

	entries := listAll(t, h.repo, h.anchor.Add(24*time.Hour))
	require.Len(t, entries, 2)

	// 15 minutes before each lesson, ascending, with the lesson carried along.
	require.NotNil(t, entries[0].LessonID)
	require.Equal(t, first, *entries[0].LessonID)
	require.True(t, entries[0].ScheduledAt.Equal(h.anchor.Add(8*time.Hour+45*time.Minute)))

	require.NotNil(t, entries[1].LessonID)
	require.Equal(t, second, *entries[1].LessonID)
	require.True(t, entries[1].ScheduledAt.Equal(h.anchor.Add(10*time.Hour+25*time.Minute)))
}

func TestPlanTodayEveryLessonSkipsElapsedLeads(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 1004, "23:59:00", true)
	h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Calculus")
	second := h.addLesson(t, h.anchor, 2, "10:40:00", "12:10:00", "Physics")

	// At 09:00 the first lesson's 08:45 reminder is already in the past.
	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(9*time.Hour)))

	entries := listAll(t, h.repo, h.anchor.Add(24*time.Hour))
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].LessonID)
	require.Equal(t, second, *entries[0].LessonID)
}

func TestPlanTodayBadChatDoesNotBlockOthers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	broken, err := h.repo.UpsertChat(ctx, 1005, h.group.ID)
	require.NoError(t, err)
	// Corrupt the stored notification time behind the setter's validation.
	_, err = h.repo.DB().ExecContext(ctx, `UPDATE chats SET notification_time = 'bogus' WHERE id = ?`, broken.ID)
	require.NoError(t, err)

	h.addChat(t, 1006, "07:00:00", false)

	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))

	entries := listAll(t, h.repo, h.anchor.Add(24*time.Hour))
	require.Len(t, entries, 1)
}
