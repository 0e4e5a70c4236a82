package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/cache"
	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

// fakeSender records outbound messages and can be told to fail.
type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail error
}

type sentMessage struct {
	chatID int64
	text   string
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

// harness wires a real in-memory store to the engine under test.
type harness struct {
	repo       *store.SQLiteRepo
	planner    *Planner
	dispatcher *Dispatcher
	sender     *fakeSender
	loc        *time.Location
	group      *domain.Group
	anchor     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	repo, err := store.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	loc := time.UTC
	anchor := time.Date(2024, time.September, 2, 0, 0, 0, 0, loc) // Monday, odd week
	calc := domain.NewWeekCalculator(anchor, loc)
	projector := schedule.NewProjector(repo, calc, loc)
	log := zap.NewNop()
	sender := &fakeSender{}

	group, err := repo.EnsureGroup(ctx, "B7391")
	require.NoError(t, err)

	return &harness{
		repo:       repo,
		planner:    NewPlanner(repo, projector, log, loc, 15*time.Minute),
		dispatcher: NewDispatcher(repo, projector, sender, cache.Noop{}, log, loc, 50),
		sender:     sender,
		loc:        loc,
		group:      group,
		anchor:     anchor,
	}
}

func (h *harness) addChat(t *testing.T, externalID int64, notifyTime string, everyLesson bool) *domain.Chat {
	t.Helper()
	ctx := context.Background()
	chat, err := h.repo.UpsertChat(ctx, externalID, h.group.ID)
	require.NoError(t, err)
	require.NoError(t, h.repo.SetNotificationTime(ctx, chat.ID, notifyTime))
	require.NoError(t, h.repo.SetNotifyEveryLesson(ctx, chat.ID, everyLesson))
	chat2, err := h.repo.GetChat(ctx, chat.ID)
	require.NoError(t, err)
	return chat2
}

func (h *harness) addLesson(t *testing.T, date time.Time, number int, start, end, name string) int64 {
	t.Helper()
	id, err := h.repo.InsertLesson(context.Background(), &domain.Lesson{
		GroupID:   h.group.ID,
		Name:      name,
		Date:      date,
		DayOfWeek: 1,
		Number:    number,
		StartTime: start,
		EndTime:   end,
		Teacher:   "J. Smith",
		Cabinet:   "301",
		WeekType:  domain.WeekOdd,
	})
	require.NoError(t, err)
	return id
}

func listAll(t *testing.T, repo *store.SQLiteRepo, byTime time.Time) []domain.NotificationEntry {
	t.Helper()
	entries, err := repo.ListDue(context.Background(), byTime, 100)
	require.NoError(t, err)
	return entries
}
