package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
)

// UI texts in English
const (
	askGroupText = "👋 I am a schedule bot.\n\n" +
		"Send me your group name (e.g. B7391) and I will show timetables " +
		"and remind you about lessons."
	notRegisteredText = "You are not registered yet. Send /start to pick a group."
	startedFmt        = "✅ Registered for group %s.\n\n" +
		"/today — today's schedule\n" +
		"/week — current week\n" +
		"/settings — notifications"
)

// settingsText summarizes the chat's current notification setup.
func settingsText(chat *domain.Chat) string {
	enabled := "🔕 off"
	if chat.NotificationsEnabled {
		enabled = "🔔 on"
	}
	mode := "📋 daily digest"
	if chat.NotifyEveryLesson {
		mode = "🔔 before every lesson"
	}
	return fmt.Sprintf("⚙️ Your settings:\n\n• Notifications: %s\n• Mode: %s\n• Time: %s",
		enabled, mode, domain.FormatClock(chat.NotificationTime))
}

// renderDay renders a single day's lessons for /today.
func renderDay(day domain.DaySchedule, weekType domain.WeekType) string {
	header := fmt.Sprintf("📅 %s, %s (%s week)",
		day.DayName, day.Date.Format("02.01"), weekType.Label())

	if len(day.Lessons) == 0 {
		return header + "\n\n📭 No lessons. Enjoy the day off!"
	}

	lines := []string{header, ""}
	for i, lesson := range day.Lessons {
		lines = append(lines, formatLesson(i+1, lesson))
	}
	return strings.Join(lines, "\n")
}

// renderWeek renders Monday through Saturday for /week.
func renderWeek(days []domain.DaySchedule, weekType domain.WeekType) string {
	lines := []string{fmt.Sprintf("🗓 Week schedule (%s week)", weekType.Label()), ""}

	if !schedule.HasLessons(days) {
		return lines[0] + "\n\n📭 No lessons this week."
	}

	for _, day := range days {
		lines = append(lines, fmt.Sprintf("— %s, %s —", day.DayName, day.Date.Format("02.01")))
		if len(day.Lessons) == 0 {
			lines = append(lines, "📭 no lessons", "")
			continue
		}
		for i, lesson := range day.Lessons {
			lines = append(lines, formatLesson(i+1, lesson))
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

func formatLesson(n int, lesson domain.Lesson) string {
	item := fmt.Sprintf("%d. %s–%s %s",
		n,
		domain.FormatClock(lesson.StartTime),
		domain.FormatClock(lesson.EndTime),
		lesson.Name,
	)
	var extra []string
	if lesson.Teacher != "" {
		extra = append(extra, lesson.Teacher)
	}
	if lesson.Cabinet != "" {
		extra = append(extra, "room "+lesson.Cabinet)
	}
	if len(extra) > 0 {
		item += " (" + strings.Join(extra, ", ") + ")"
	}
	return item
}

// Inline keyboards
func settingsInlineKeyboard(chat *domain.Chat) tgbotapi.InlineKeyboardMarkup {
	notifyToggle := tgbotapi.NewInlineKeyboardButtonData("🔕 Turn off", "notify:off")
	if !chat.NotificationsEnabled {
		notifyToggle = tgbotapi.NewInlineKeyboardButtonData("🔔 Turn on", "notify:on")
	}
	modeToggle := tgbotapi.NewInlineKeyboardButtonData("🔔 Every lesson", "mode:every")
	if chat.NotifyEveryLesson {
		modeToggle = tgbotapi.NewInlineKeyboardButtonData("📋 Daily digest", "mode:digest")
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			notifyToggle,
			modeToggle,
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕘 Time", "set_time"),
		),
	)
}

func timePresetsKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("06:30", "time:06:30:00"),
			tgbotapi.NewInlineKeyboardButtonData("07:00", "time:07:00:00"),
			tgbotapi.NewInlineKeyboardButtonData("07:30", "time:07:30:00"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("08:00", "time:08:00:00"),
			tgbotapi.NewInlineKeyboardButtonData("08:30", "time:08:30:00"),
			tgbotapi.NewInlineKeyboardButtonData("✍️ Custom…", "time:custom"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back_to_settings"),
		),
	)
}
