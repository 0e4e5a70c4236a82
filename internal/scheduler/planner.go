// Package scheduler contains the notification engine: the daily planner that
// writes reminders into the durable queue, the dispatcher that delivers due
// entries, and the supervisor that drives both on recurring timers.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

// Planner computes which reminders each notifiable chat needs today and
// enqueues them. Enqueueing is idempotent, so repeated passes on the same day
// never produce duplicates.
type Planner struct {
	notifications store.NotificationRepo
	projector     *schedule.Projector
	log           *zap.Logger
	loc           *time.Location
	lessonLead    time.Duration // how long before a lesson its reminder fires
}

// NewPlanner creates a Planner. lessonLead is the per-lesson reminder lead
// time (15 minutes unless configured otherwise).
func NewPlanner(notifications store.NotificationRepo, projector *schedule.Projector, log *zap.Logger, loc *time.Location, lessonLead time.Duration) *Planner {
	return &Planner{
		notifications: notifications,
		projector:     projector,
		log:           log,
		loc:           loc,
		lessonLead:    lessonLead,
	}
}

// PlanToday enqueues today's reminders for every chat with notifications
// enabled. A failure for one chat is logged and does not abort the rest.
func (p *Planner) PlanToday(ctx context.Context, now time.Time) error {
	chats, err := p.notifications.ListNotifiableChats(ctx)
	if err != nil {
		return fmt.Errorf("plan today: %w", err)
	}
	if len(chats) == 0 {
		p.log.Debug("no notifiable chats to plan")
		return nil
	}

	now = now.In(p.loc)
	p.log.Debug("planning notifications", zap.Int("chats", len(chats)))

	for _, chat := range chats {
		if err := p.planChat(ctx, chat, now); err != nil {
			p.log.Error("failed to plan chat",
				zap.Int64("chatID", chat.ChatID),
				zap.Error(err),
			)
		}
	}
	return nil
}

func (p *Planner) planChat(ctx context.Context, chat domain.NotifiableChat, now time.Time) error {
	mins, err := domain.ParseTimeOfDay(chat.NotificationTime)
	if err != nil {
		return err
	}

	today := domain.StartOfDay(now)
	at := domain.At(today, mins)

	// No retroactive reminders: once the configured time has passed,
	// today's planning for this chat is over.
	if !at.After(now) {
		return nil
	}

	if !chat.NotifyEveryLesson {
		entry, err := p.notifications.Enqueue(ctx, chat.ChatID, at, nil)
		if err != nil {
			return err
		}
		p.log.Debug("daily digest planned",
			zap.Int64("chatID", chat.ChatID),
			zap.Int64("notifyID", entry.ID),
			zap.Time("at", at),
		)
		return nil
	}

	day, err := p.projector.DaySchedule(ctx, chat.GroupID, today)
	if err != nil {
		return err
	}

	for _, lesson := range day.Lessons {
		startM, err := domain.ParseTimeOfDay(lesson.StartTime)
		if err != nil {
			p.log.Warn("lesson has invalid start time",
				zap.Int64("lessonID", lesson.ID),
				zap.String("start", lesson.StartTime),
			)
			continue
		}
		notifyAt := domain.At(today, startM).Add(-p.lessonLead)
		if !notifyAt.After(now) {
			continue
		}
		lessonID := lesson.ID
		if _, err := p.notifications.Enqueue(ctx, chat.ChatID, notifyAt, &lessonID); err != nil {
			return err
		}
	}
	return nil
}
