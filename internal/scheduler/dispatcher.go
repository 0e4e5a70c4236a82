package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/cache"
	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

// Sender is the outbound messaging channel. telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// Dispatcher delivers due notification entries. An entry is marked sent only
// after the outbound send succeeded; on failure it stays unsent and is
// retried on the next poll.
type Dispatcher struct {
	repo      store.Repo
	projector *schedule.Projector
	sender    Sender
	cache     cache.Cache
	log       *zap.Logger
	loc       *time.Location
	batchSize int
}

// NewDispatcher creates a Dispatcher fetching at most batchSize entries per pass.
func NewDispatcher(repo store.Repo, projector *schedule.Projector, sender Sender, c cache.Cache, log *zap.Logger, loc *time.Location, batchSize int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Dispatcher{
		repo:      repo,
		projector: projector,
		sender:    sender,
		cache:     c,
		log:       log,
		loc:       loc,
		batchSize: batchSize,
	}
}

// SendDuePending processes one batch of due entries in ascending scheduled
// order. Per-entry failures are logged and do not stop the batch.
func (d *Dispatcher) SendDuePending(ctx context.Context, now time.Time) error {
	due, err := d.repo.ListDue(ctx, now, d.batchSize)
	if err != nil {
		return fmt.Errorf("send due pending: %w", err)
	}
	if len(due) == 0 {
		d.log.Debug("no due notifications")
		return nil
	}

	d.log.Info("processing due notifications", zap.Int("count", len(due)))

	for _, entry := range due {
		if err := d.dispatch(ctx, entry, now); err != nil {
			d.log.Error("failed to send notification",
				zap.Int64("notifyID", entry.ID),
				zap.Error(err),
			)
		}
	}
	return nil
}

// dispatch delivers a single entry. A dangling reference (chat or lesson gone
// from the store) is dead-lettered: the entry is marked sent so it cannot
// retry every poll forever.
func (d *Dispatcher) dispatch(ctx context.Context, entry domain.NotificationEntry, now time.Time) error {
	chat, err := d.chat(ctx, entry.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		d.log.Warn("chat missing, dropping notification", zap.Int64("notifyID", entry.ID))
		return d.repo.MarkSent(ctx, entry.ID)
	}
	if err != nil {
		return err
	}

	groupName, err := d.groupName(ctx, chat.GroupID)
	if err != nil {
		return err
	}

	var text string
	if entry.LessonID != nil {
		lesson, err := d.repo.GetLesson(ctx, *entry.LessonID)
		if errors.Is(err, store.ErrNotFound) {
			d.log.Warn("lesson missing, dropping notification",
				zap.Int64("notifyID", entry.ID),
				zap.Int64("lessonID", *entry.LessonID),
			)
			return d.repo.MarkSent(ctx, entry.ID)
		}
		if err != nil {
			return err
		}
		text = lessonReminderText(lesson, groupName)
	} else {
		day, err := d.projector.DaySchedule(ctx, chat.GroupID, now.In(d.loc))
		if err != nil {
			return err
		}
		text = dailyDigestText(day, groupName)
	}

	if err := d.sender.SendMessage(chat.ExternalChatID, text); err != nil {
		// Leave unsent; the next poll retries this same row.
		return fmt.Errorf("deliver: %w", err)
	}

	if err := d.repo.MarkSent(ctx, entry.ID); err != nil {
		return err
	}
	d.log.Info("notification sent",
		zap.Int64("notifyID", entry.ID),
		zap.Int64("chatID", chat.ID),
	)
	return nil
}

func (d *Dispatcher) chat(ctx context.Context, chatID int64) (*domain.Chat, error) {
	key := fmt.Sprintf("chat:%d", chatID)
	if v, ok := d.cache.Get(key); ok {
		return v.(*domain.Chat), nil
	}
	chat, err := d.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(key, chat)
	return chat, nil
}

func (d *Dispatcher) groupName(ctx context.Context, groupID int64) (string, error) {
	key := fmt.Sprintf("group:%d", groupID)
	if v, ok := d.cache.Get(key); ok {
		return v.(string), nil
	}
	group, err := d.repo.GetGroup(ctx, groupID)
	if err != nil {
		return "", err
	}
	d.cache.Set(key, group.Name)
	return group.Name, nil
}
