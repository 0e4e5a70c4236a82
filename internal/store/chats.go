package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

const chatCols = "id, external_chat_id, group_id, notification_time, notifications_enabled, notify_every_lesson, created_at"

// UpsertChat registers a chat for a group, or rebinds an existing chat to a
// new group keeping its notification settings.
func (r *SQLiteRepo) UpsertChat(ctx context.Context, externalChatID, groupID int64) (*domain.Chat, error) {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO chats (external_chat_id, group_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(external_chat_id) DO UPDATE SET group_id = excluded.group_id`,
		externalChatID, groupID, time.Now().UTC().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert chat: %w", err)
	}
	return r.GetChatByExternalID(ctx, externalChatID)
}

// GetChat returns a chat by internal id or ErrNotFound.
func (r *SQLiteRepo) GetChat(ctx context.Context, id int64) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chatCols+` FROM chats WHERE id = ?`, id)
	return scanChat(row)
}

// GetChatByExternalID returns a chat by its Telegram chat id or ErrNotFound.
func (r *SQLiteRepo) GetChatByExternalID(ctx context.Context, externalChatID int64) (*domain.Chat, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+chatCols+` FROM chats WHERE external_chat_id = ?`, externalChatID)
	return scanChat(row)
}

// SetNotificationsEnabled toggles reminder delivery for a chat.
func (r *SQLiteRepo) SetNotificationsEnabled(ctx context.Context, chatID int64, enabled bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chats SET notifications_enabled = ? WHERE id = ?`, boolToInt(enabled), chatID)
	if err != nil {
		return fmt.Errorf("set notifications enabled: %w", err)
	}
	return nil
}

// SetNotifyEveryLesson switches a chat between the daily digest and
// per-lesson reminder modes.
func (r *SQLiteRepo) SetNotifyEveryLesson(ctx context.Context, chatID int64, every bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE chats SET notify_every_lesson = ? WHERE id = ?`, boolToInt(every), chatID)
	if err != nil {
		return fmt.Errorf("set notify every lesson: %w", err)
	}
	return nil
}

// SetNotificationTime updates a chat's reminder time of day ("HH:MM:SS").
func (r *SQLiteRepo) SetNotificationTime(ctx context.Context, chatID int64, timeOfDay string) error {
	if _, err := domain.ParseTimeOfDay(timeOfDay); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE chats SET notification_time = ? WHERE id = ?`, timeOfDay, chatID)
	if err != nil {
		return fmt.Errorf("set notification time: %w", err)
	}
	return nil
}

func scanChat(row rowScanner) (*domain.Chat, error) {
	var (
		c         domain.Chat
		enabled   int
		every     int
		createdAt int64
	)
	err := row.Scan(&c.ID, &c.ExternalChatID, &c.GroupID, &c.NotificationTime, &enabled, &every, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan chat: %w", err)
	}
	c.NotificationsEnabled = enabled != 0
	c.NotifyEveryLesson = every != 0
	c.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &c, nil
}
