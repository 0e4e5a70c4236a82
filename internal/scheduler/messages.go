package scheduler

import (
	"fmt"
	"strings"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

// lessonReminderText renders a single-lesson reminder.
func lessonReminderText(lesson *domain.Lesson, groupName string) string {
	lines := []string{
		"🔔 Lesson reminder",
		"",
		"👥 Group: " + groupName,
		fmt.Sprintf("🕘 Time: %s–%s", domain.FormatClock(lesson.StartTime), domain.FormatClock(lesson.EndTime)),
		"📚 Subject: " + lesson.Name,
	}
	if lesson.Teacher != "" {
		lines = append(lines, "👤 Teacher: "+lesson.Teacher)
	}
	if lesson.Cabinet != "" {
		lines = append(lines, "🚪 Room: "+lesson.Cabinet)
	}
	return strings.Join(lines, "\n")
}

// dailyDigestText renders the "good morning" summary of a day's lessons.
func dailyDigestText(day domain.DaySchedule, groupName string) string {
	header := []string{
		"🔔 Good morning!",
		"",
		"👥 Group: " + groupName,
		fmt.Sprintf("📅 %s, %s", day.DayName, day.Date.Format("02.01")),
		"",
	}

	if len(day.Lessons) == 0 {
		return strings.Join(append(header, "📭 No lessons today. Enjoy the day off!"), "\n")
	}

	items := make([]string, 0, len(day.Lessons))
	for i, lesson := range day.Lessons {
		item := fmt.Sprintf("%d. %s–%s — %s",
			i+1,
			domain.FormatClock(lesson.StartTime),
			domain.FormatClock(lesson.EndTime),
			lesson.Name,
		)
		if lesson.Teacher != "" {
			item += "\n   👤 " + lesson.Teacher
		}
		if lesson.Cabinet != "" {
			item += "\n   🚪 " + lesson.Cabinet
		}
		items = append(items, item)
	}

	body := append(header, "Today's schedule:", "")
	body = append(body, strings.Join(items, "\n\n"))
	body = append(body, "", "Have a good day! ✅")
	return strings.Join(body, "\n")
}
