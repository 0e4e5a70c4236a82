package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

const maxGroupNameLen = 32

// chatFor resolves the registered chat for a Telegram chat ID. Returns nil
// (and prompts the user) when the chat has not run /start yet.
func (r *Router) chatFor(ctx context.Context, externalChatID int64) *domain.Chat {
	chat, err := r.repo.GetChatByExternalID(ctx, externalChatID)
	if errors.Is(err, store.ErrNotFound) {
		r.sendText(externalChatID, notRegisteredText)
		return nil
	}
	if err != nil {
		r.log.Error("chat lookup failed", zap.Int64("chatID", externalChatID), zap.Error(err))
		r.sendText(externalChatID, "Something went wrong. Please try again later.")
		return nil
	}
	return chat
}

// --- Generic helpers ---

func (r *Router) sendText(chatID int64, text string) {
	_, _ = r.bot.Send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

func (r *Router) invalidateChat(chat *domain.Chat) {
	r.cache.Invalidate(fmt.Sprintf("chat:%d", chat.ID))
}

// --- Core commands ---

func (r *Router) handleStart(ctx context.Context, chatID int64, arg string) {
	if arg == "" {
		r.sendText(chatID, askGroupText)
		r.setPending(chatID, pendingGroup)
		return
	}
	r.registerGroup(ctx, chatID, arg)
}

func (r *Router) registerGroup(ctx context.Context, chatID int64, name string) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" || len(name) > maxGroupNameLen {
		r.sendText(chatID, "Group name looks wrong. Example: B7391")
		return
	}

	group, err := r.repo.EnsureGroup(ctx, name)
	if err != nil {
		r.log.Error("ensureGroup failed", zap.String("group", name), zap.Error(err))
		r.sendText(chatID, "Could not register the group. Please try again later.")
		return
	}
	chat, err := r.repo.UpsertChat(ctx, chatID, group.ID)
	if err != nil {
		r.log.Error("upsertChat failed", zap.Int64("chatID", chatID), zap.Error(err))
		r.sendText(chatID, "Could not register the chat. Please try again later.")
		return
	}
	r.invalidateChat(chat)

	r.log.Info("chat registered",
		zap.Int64("chatID", chatID),
		zap.String("group", group.Name),
	)
	r.sendText(chatID, fmt.Sprintf(startedFmt, group.Name))
}

func (r *Router) handleToday(ctx context.Context, chatID int64) {
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}

	day, err := r.projector.DaySchedule(ctx, chat.GroupID, time.Now())
	if err != nil {
		r.log.Error("day schedule failed", zap.Int64("groupID", chat.GroupID), zap.Error(err))
		r.sendText(chatID, "Could not load today's schedule.")
		return
	}
	r.sendText(chatID, renderDay(day, r.calc.ForDate(day.Date)))
}

func (r *Router) handleWeek(ctx context.Context, chatID int64) {
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}

	days, err := r.projector.WeekSchedule(ctx, chat.GroupID, time.Now())
	if err != nil {
		r.log.Error("week schedule failed", zap.Int64("groupID", chat.GroupID), zap.Error(err))
		r.sendText(chatID, "Could not load the week schedule.")
		return
	}
	r.sendText(chatID, renderWeek(days, r.calc.Current()))
}

func (r *Router) handleSettings(ctx context.Context, chatID int64) {
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}
	msg := tgbotapi.NewMessage(chatID, settingsText(chat))
	msg.ReplyMarkup = settingsInlineKeyboard(chat)
	_, _ = r.bot.Send(msg)
}

// --- Settings callbacks ---

func (r *Router) handleNotifyCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}

	enabled := strings.TrimPrefix(data, "notify:") == "on"
	if err := r.repo.SetNotificationsEnabled(ctx, chat.ID, enabled); err != nil {
		r.log.Error("toggle notifications failed", zap.Int64("chatID", chat.ID), zap.Error(err))
		r.sendText(chatID, "Could not update notifications.")
		return
	}
	r.invalidateChat(chat)

	if enabled {
		r.sendText(chatID, "Notifications enabled ✅")
	} else {
		r.sendText(chatID, "Notifications disabled 🔕")
	}
}

func (r *Router) handleModeCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}

	everyLesson := strings.TrimPrefix(data, "mode:") == "every"
	if err := r.repo.SetNotifyEveryLesson(ctx, chat.ID, everyLesson); err != nil {
		r.log.Error("toggle mode failed", zap.Int64("chatID", chat.ID), zap.Error(err))
		r.sendText(chatID, "Could not update the notification mode.")
		return
	}
	r.invalidateChat(chat)

	if everyLesson {
		r.sendText(chatID, "You will get a reminder before every lesson 🔔")
	} else {
		r.sendText(chatID, "You will get one daily digest 📋")
	}
}

// --- Notification time flow ---

func (r *Router) askTimePresets(ctx context.Context, chatID int64, cbID string) {
	_ = r.answerCallback(cbID, "")
	msg := tgbotapi.NewMessage(chatID, "Choose a notification time (or Custom to enter your own):")
	msg.ReplyMarkup = timePresetsKeyboard()
	_, _ = r.bot.Send(msg)
}

func (r *Router) handleTimeCallback(ctx context.Context, chatID int64, data, cbID string) {
	_ = r.answerCallback(cbID, "")
	if data == "time:custom" {
		r.sendText(chatID, "Enter the time as HH:MM, e.g.: 07:30")
		r.setPending(chatID, pendingTime)
		return
	}
	r.updateTime(ctx, chatID, strings.TrimPrefix(data, "time:"))
}

func (r *Router) updateTime(ctx context.Context, chatID int64, value string) {
	chat := r.chatFor(ctx, chatID)
	if chat == nil {
		return
	}

	mins, err := domain.ParseTimeOfDay(value)
	if err != nil {
		r.sendText(chatID, "Invalid time. Example: 07:30")
		return
	}
	normalized := domain.FormatMinutes(mins) + ":00"
	if err := r.repo.SetNotificationTime(ctx, chat.ID, normalized); err != nil {
		r.log.Error("set notification time failed", zap.Int64("chatID", chat.ID), zap.Error(err))
		r.sendText(chatID, "Could not save the time.")
		return
	}
	r.invalidateChat(chat)
	r.sendText(chatID, "Notification time updated: "+domain.FormatMinutes(mins))
}

// --- Free-form dispatcher (for all "Custom" inputs) ---

func (r *Router) handleFreeForm(ctx context.Context, chatID int64, text string) {
	switch r.getPending(chatID) {
	case pendingGroup:
		r.clearPending(chatID)
		r.registerGroup(ctx, chatID, text)

	case pendingTime:
		r.clearPending(chatID)
		r.updateTime(ctx, chatID, text)

	default:
		// No pending flow: ignore free-form message
	}
}
