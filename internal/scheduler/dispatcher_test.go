package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatchDailyDigest(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	chat := h.addChat(t, 2001, "07:00:00", false)
	h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Calculus")

	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))

	// Before the slot nothing goes out.
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(6*time.Hour+59*time.Minute)))
	require.Empty(t, h.sender.messages())

	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(7*time.Hour)))

	msgs := h.sender.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, chat.ExternalChatID, msgs[0].chatID)
	require.Contains(t, msgs[0].text, "Good morning")
	require.Contains(t, msgs[0].text, "Calculus")
	require.Contains(t, msgs[0].text, h.group.Name)

	// Delivered entries never reappear.
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(8*time.Hour)))
	require.Len(t, h.sender.messages(), 1)
}

func TestDispatchLessonReminder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	chat := h.addChat(t, 2002, "23:59:00", true)
	h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Physics")

	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(8*time.Hour+45*time.Minute)))

	msgs := h.sender.messages()
	require.Len(t, msgs, 1)
	require.Equal(t, chat.ExternalChatID, msgs[0].chatID)
	require.Contains(t, msgs[0].text, "Lesson reminder")
	require.Contains(t, msgs[0].text, "Physics")
	require.Contains(t, msgs[0].text, "09:00–10:30")
}

func TestDispatchSendFailureLeavesEntryForRetry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 2003, "07:00:00", false)
	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))

	h.sender.fail = errors.New("telegram is down")
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(7*time.Hour)))
	require.Empty(t, h.sender.messages())
	require.Len(t, listAll(t, h.repo, h.anchor.Add(7*time.Hour)), 1)

	// Once the channel recovers the same entry is delivered.
	h.sender.fail = nil
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(7*time.Hour+time.Minute)))
	require.Len(t, h.sender.messages(), 1)
	require.Empty(t, listAll(t, h.repo, h.anchor.Add(8*time.Hour)))
}

func TestDispatchMissingLessonIsDropped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	chat := h.addChat(t, 2004, "23:59:00", true)

	ghost := int64(99999)
	_, err := h.repo.Enqueue(ctx, chat.ID, h.anchor.Add(9*time.Hour), &ghost)
	require.NoError(t, err)

	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(9*time.Hour)))
	require.Empty(t, h.sender.messages())
	// The dangling entry is retired instead of retrying forever.
	require.Empty(t, listAll(t, h.repo, h.anchor.Add(24*time.Hour)))
}

func TestDispatchDeliversInScheduledOrder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.addChat(t, 2005, "23:59:00", true)
	h.addLesson(t, h.anchor, 1, "09:00:00", "10:30:00", "Calculus")
	h.addLesson(t, h.anchor, 2, "10:40:00", "12:10:00", "Physics")

	require.NoError(t, h.planner.PlanToday(ctx, h.anchor.Add(6*time.Hour)))
	require.NoError(t, h.dispatcher.SendDuePending(ctx, h.anchor.Add(12*time.Hour)))

	msgs := h.sender.messages()
	require.Len(t, msgs, 2)
	require.Contains(t, msgs[0].text, "Calculus")
	require.Contains(t, msgs[1].text, "Physics")
}
