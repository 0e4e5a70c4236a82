package domain

import "time"

// Group is an academic group whose schedule the bot serves.
type Group struct {
	ID   int64
	Name string
}

// Chat represents a subscribed Telegram chat and its notification settings.
// The scheduler only reads chats; settings are mutated by the telegram layer.
type Chat struct {
	ID                   int64
	ExternalChatID       int64  // Telegram chat id used for outbound sends
	GroupID              int64
	NotificationTime     string // "HH:MM:SS"
	NotificationsEnabled bool
	NotifyEveryLesson    bool
	CreatedAt            time.Time // UTC
}

// NotifiableChat is the planner's view of a chat with notifications enabled.
type NotifiableChat struct {
	ChatID            int64
	ExternalChatID    int64
	GroupID           int64
	NotificationTime  string // "HH:MM:SS"
	NotifyEveryLesson bool
}

// Lesson is a single class occurrence. Lessons are produced by an external
// ingestion process and are immutable from the scheduler's perspective.
type Lesson struct {
	ID        int64
	GroupID   int64
	Name      string
	Date      time.Time // calendar date, midnight in the bot's location
	DayOfWeek int       // 1=Monday .. 6=Saturday
	Number    int       // ordinal within the day
	StartTime string    // "HH:MM:SS"
	EndTime   string    // "HH:MM:SS"
	Teacher   string    // optional, empty when unknown
	Cabinet   string    // optional
	Type      string    // optional type tag (lecture, lab, ...)
	WeekType  WeekType
}

// NotificationEntry is one scheduled reminder in the durable queue.
// A nil LessonID means a daily digest; otherwise a single-lesson reminder.
// Sent is true iff SentAt is non-nil; the only state transition is the
// one-time unsent->sent flip performed by the dispatcher.
type NotificationEntry struct {
	ID          int64
	ChatID      int64
	LessonID    *int64
	ScheduledAt time.Time // UTC
	Sent        bool
	CreatedAt   time.Time  // UTC
	SentAt      *time.Time // UTC, nil until sent
}

// DaySchedule is one projected day of a group's timetable, already filtered
// by week-type and ordered by lesson number. Lessons may be empty.
type DaySchedule struct {
	Date    time.Time
	DayName string
	Lessons []Lesson
}
