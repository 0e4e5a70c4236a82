package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string `envconfig:"BOT_TOKEN" required:"true"`
	DBPath        string `envconfig:"DB_PATH" default:"./data/schedule.db"`
	Timezone      string `envconfig:"TZ_NAME" default:"Europe/Moscow"`
	SemesterStart string `envconfig:"SEMESTER_START" default:"2024-09-02"` // Monday of the first (odd) week

	DispatchInterval  time.Duration `envconfig:"DISPATCH_INTERVAL" default:"60s"`
	PlanningInterval  time.Duration `envconfig:"PLANNING_INTERVAL" default:"30m"`
	CleanupInterval   time.Duration `envconfig:"CLEANUP_INTERVAL" default:"24h"`
	DispatchBatchSize int           `envconfig:"DISPATCH_BATCH_SIZE" default:"50"`
	LessonLead        time.Duration `envconfig:"LESSON_NOTIFY_LEAD" default:"15m"`
	RetentionDays     int           `envconfig:"RETENTION_DAYS" default:"30"`
	CacheTTL          time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SemesterStartDate parses the semester anchor as midnight in loc.
func (c Config) SemesterStartDate(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", c.SemesterStart, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("semester start %q: %w", c.SemesterStart, err)
	}
	return t, nil
}
