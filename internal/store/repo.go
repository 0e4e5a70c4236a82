package store

import (
	"context"
	"errors"
	"time"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// NotificationRepo is the durable queue of scheduled notifications.
type NotificationRepo interface {
	// Enqueue inserts an unsent entry for the given chat and instant.
	// A nil lessonID means a daily digest. Inserting into an already
	// occupied (chat, lesson, day) slot is a no-op; the existing entry
	// is returned either way.
	Enqueue(ctx context.Context, chatID int64, at time.Time, lessonID *int64) (*domain.NotificationEntry, error)

	// GetNotification returns an entry by id.
	GetNotification(ctx context.Context, id int64) (*domain.NotificationEntry, error)

	// ListDue returns up to limit unsent entries with scheduled_at <= now,
	// ascending by scheduled time.
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.NotificationEntry, error)

	// MarkSent flips an entry to sent and stamps sent_at. Idempotent: a
	// second call leaves the first call's timestamp in place.
	MarkSent(ctx context.Context, id int64) error

	// PurgeSentOlderThan deletes sent entries whose sent_at precedes
	// now minus days. Returns the number of rows removed.
	PurgeSentOlderThan(ctx context.Context, now time.Time, days int) (int64, error)

	// ListNotifiableChats returns all chats with notifications enabled,
	// ordered by notification time.
	ListNotifiableChats(ctx context.Context) ([]domain.NotifiableChat, error)
}

// ChatRepo provides chat registration and settings access.
// The scheduler only reads chats; writes come from the telegram layer.
type ChatRepo interface {
	UpsertChat(ctx context.Context, externalChatID, groupID int64) (*domain.Chat, error)
	GetChat(ctx context.Context, id int64) (*domain.Chat, error)
	GetChatByExternalID(ctx context.Context, externalChatID int64) (*domain.Chat, error)
	SetNotificationsEnabled(ctx context.Context, chatID int64, enabled bool) error
	SetNotifyEveryLesson(ctx context.Context, chatID int64, every bool) error
	SetNotificationTime(ctx context.Context, chatID int64, timeOfDay string) error
}

// LessonRepo provides read access to ingested lessons.
type LessonRepo interface {
	GetLesson(ctx context.Context, id int64) (*domain.Lesson, error)
	// ListLessons returns lessons of a group whose calendar date lies in
	// [from, to], any week type, unordered.
	ListLessons(ctx context.Context, groupID int64, from, to time.Time) ([]domain.Lesson, error)
	InsertLesson(ctx context.Context, l *domain.Lesson) (int64, error)
}

// GroupRepo provides group lookup and creation.
type GroupRepo interface {
	GetGroup(ctx context.Context, id int64) (*domain.Group, error)
	EnsureGroup(ctx context.Context, name string) (*domain.Group, error)
}

// Repo aggregates all storage operations, implemented by SQLiteRepo.
type Repo interface {
	NotificationRepo
	ChatRepo
	LessonRepo
	GroupRepo
	Close() error
}
