package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/no-krul-tepes/esstu-bot/internal/domain"
)

const lessonCols = "id, group_id, name, lesson_date, day_of_week, lesson_number, start_time, end_time, teacher_name, cabinet, lesson_type, week_type"

const lessonDateLayout = "2006-01-02"

// GetLesson returns a lesson by id or ErrNotFound.
func (r *SQLiteRepo) GetLesson(ctx context.Context, id int64) (*domain.Lesson, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+lessonCols+` FROM lessons WHERE id = ?`, id)
	l, err := scanLesson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	return l, nil
}

// ListLessons returns lessons of a group whose calendar date lies within
// [from, to] inclusive. Week-type filtering is the projector's job.
func (r *SQLiteRepo) ListLessons(ctx context.Context, groupID int64, from, to time.Time) ([]domain.Lesson, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+lessonCols+`
		FROM lessons
		WHERE group_id = ?
		  AND lesson_date >= ?
		  AND lesson_date <= ?`,
		groupID, from.Format(lessonDateLayout), to.Format(lessonDateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var res []domain.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("list lessons: %w", err)
		}
		res = append(res, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return res, nil
}

// InsertLesson stores an ingested lesson and returns its id.
func (r *SQLiteRepo) InsertLesson(ctx context.Context, l *domain.Lesson) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO lessons (group_id, name, lesson_date, day_of_week, lesson_number,
		                     start_time, end_time, teacher_name, cabinet, lesson_type, week_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.GroupID, l.Name, l.Date.Format(lessonDateLayout), l.DayOfWeek, l.Number,
		l.StartTime, l.EndTime, strToNull(l.Teacher), strToNull(l.Cabinet), strToNull(l.Type), string(l.WeekType),
	)
	if err != nil {
		return 0, fmt.Errorf("insert lesson: %w", err)
	}
	return res.LastInsertId()
}

func scanLesson(row rowScanner) (*domain.Lesson, error) {
	var (
		l        domain.Lesson
		date     string
		teacher  sql.NullString
		cabinet  sql.NullString
		typ      sql.NullString
		weekType string
	)
	if err := row.Scan(&l.ID, &l.GroupID, &l.Name, &date, &l.DayOfWeek, &l.Number,
		&l.StartTime, &l.EndTime, &teacher, &cabinet, &typ, &weekType); err != nil {
		return nil, err
	}
	d, err := time.ParseInLocation(lessonDateLayout, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("bad lesson_date %q: %w", date, err)
	}
	l.Date = d
	l.Teacher = strFromNull(teacher)
	l.Cabinet = strFromNull(cabinet)
	l.Type = strFromNull(typ)
	l.WeekType = domain.WeekType(weekType)
	return &l, nil
}
