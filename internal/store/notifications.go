package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

const notificationCols = "id, chat_id, lesson_id, scheduled_at, sent, created_at, sent_at"

// Enqueue inserts a new unsent entry. The unique slot index makes the insert
// idempotent: re-enqueueing the same (chat, lesson, day) is a no-op and the
// existing row is returned.
func (r *SQLiteRepo) Enqueue(ctx context.Context, chatID int64, at time.Time, lessonID *int64) (*domain.NotificationEntry, error) {
	slotDate := at.Format("2006-01-02")
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO notifications (chat_id, lesson_id, scheduled_at, slot_date, sent, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`,
		chatID, toNullInt64(lessonID), at.UTC().Unix(), slotDate, time.Now().UTC().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationCols+`
		FROM notifications
		WHERE chat_id = ? AND ifnull(lesson_id, 0) = ifnull(?, 0) AND slot_date = ?`,
		chatID, toNullInt64(lessonID), slotDate,
	)
	entry, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("enqueue notification: %w", err)
	}
	return entry, nil
}

// GetNotification returns an entry by id or ErrNotFound.
func (r *SQLiteRepo) GetNotification(ctx context.Context, id int64) (*domain.NotificationEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+notificationCols+`
		FROM notifications
		WHERE id = ?`, id,
	)
	entry, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return entry, nil
}

// ListDue returns up to limit unsent entries whose scheduled time has passed,
// ascending by scheduled time.
func (r *SQLiteRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.NotificationEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+notificationCols+`
		FROM notifications
		WHERE sent = 0
		  AND scheduled_at <= ?
		ORDER BY scheduled_at ASC
		LIMIT ?`,
		now.UTC().Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	defer rows.Close()

	var res []domain.NotificationEntry
	for rows.Next() {
		entry, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("list due notifications: %w", err)
		}
		res = append(res, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list due notifications: %w", err)
	}
	return res, nil
}

// MarkSent flips an entry to sent. The sent=0 guard keeps the operation
// idempotent: a repeated call never overwrites the original sent_at.
func (r *SQLiteRepo) MarkSent(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET sent = 1, sent_at = ?
		WHERE id = ? AND sent = 0`,
		time.Now().UTC().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

// PurgeSentOlderThan deletes sent entries whose sent_at precedes now minus
// the given number of days. Unsent rows are never touched.
func (r *SQLiteRepo) PurgeSentOlderThan(ctx context.Context, now time.Time, days int) (int64, error) {
	cutoff := now.UTC().AddDate(0, 0, -days).Unix()
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE sent = 1
		  AND sent_at IS NOT NULL
		  AND sent_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return res.RowsAffected()
}

// ListNotifiableChats returns all chats with notifications enabled,
// ordered by their configured notification time.
func (r *SQLiteRepo) ListNotifiableChats(ctx context.Context) ([]domain.NotifiableChat, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, external_chat_id, group_id, notification_time, notify_every_lesson
		FROM chats
		WHERE notifications_enabled = 1
		ORDER BY notification_time ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list notifiable chats: %w", err)
	}
	defer rows.Close()

	var res []domain.NotifiableChat
	for rows.Next() {
		var c domain.NotifiableChat
		var every int
		if err := rows.Scan(&c.ChatID, &c.ExternalChatID, &c.GroupID, &c.NotificationTime, &every); err != nil {
			return nil, fmt.Errorf("list notifiable chats: %w", err)
		}
		c.NotifyEveryLesson = every != 0
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notifiable chats: %w", err)
	}
	return res, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*domain.NotificationEntry, error) {
	var (
		e           domain.NotificationEntry
		lessonNS    sql.NullInt64
		scheduledAt int64
		sentInt     int
		createdAt   int64
		sentNS      sql.NullInt64
	)
	if err := row.Scan(&e.ID, &e.ChatID, &lessonNS, &scheduledAt, &sentInt, &createdAt, &sentNS); err != nil {
		return nil, err
	}
	e.LessonID = fromNullInt64(lessonNS)
	e.ScheduledAt = time.Unix(scheduledAt, 0).UTC()
	e.Sent = sentInt != 0
	e.CreatedAt = time.Unix(createdAt, 0).UTC()
	e.SentAt = timeFromNull(sentNS)
	return &e, nil
}
