package telegram

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/no-krul-tepes/esstu-bot/internal/cache"
	"github.com/no-krul-tepes/esstu-bot/internal/domain"
	"github.com/no-krul-tepes/esstu-bot/internal/schedule"
	"github.com/no-krul-tepes/esstu-bot/internal/store"
)

// Pending state keys used in conversational flows.
const (
	pendingGroup = "await_group_text"
	pendingTime  = "await_time_text"
)

// Router wires Telegram updates to handlers and holds minimal in-memory state.
type Router struct {
	bot       *tgbotapi.BotAPI
	log       *zap.Logger
	repo      store.Repo
	projector *schedule.Projector
	calc      *domain.WeekCalculator
	cache     cache.Cache
	state     map[int64]string // external chatID -> pending state
	mu        sync.RWMutex
}

// NewRouter creates a new Telegram router.
func NewRouter(bot *tgbotapi.BotAPI, log *zap.Logger, repo store.Repo, projector *schedule.Projector, calc *domain.WeekCalculator, c cache.Cache) *Router {
	return &Router{
		bot:       bot,
		log:       log,
		repo:      repo,
		projector: projector,
		calc:      calc,
		cache:     c,
		state:     make(map[int64]string),
	}
}

// setPending sets a pending state for a chat (non-persistent, in-memory).
func (r *Router) setPending(chatID int64, s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state[chatID] = s
}

// getPending returns current pending state for a chat.
func (r *Router) getPending(chatID int64) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state[chatID]
}

// clearPending clears a pending state for a chat.
func (r *Router) clearPending(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state, chatID)
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	// Text messages
	if upd.Message != nil {
		msg := upd.Message
		chatID := msg.Chat.ID
		text := strings.TrimSpace(msg.Text)

		switch {
		case strings.HasPrefix(text, "/start"):
			r.handleStart(ctx, chatID, strings.TrimSpace(strings.TrimPrefix(text, "/start")))
		case strings.HasPrefix(text, "/today"):
			r.handleToday(ctx, chatID)
		case strings.HasPrefix(text, "/week"):
			r.handleWeek(ctx, chatID)
		case strings.HasPrefix(text, "/settings"):
			r.handleSettings(ctx, chatID)
		default:
			// Free-form text used in "Custom" flows (group / notification time)
			r.handleFreeForm(ctx, chatID, text)
		}
		return
	}

	// Callback queries (inline buttons)
	if upd.CallbackQuery != nil {
		cb := upd.CallbackQuery
		data := cb.Data
		chatID := cb.Message.Chat.ID

		switch {
		case strings.HasPrefix(data, "notify:"):
			r.handleNotifyCallback(ctx, chatID, data, cb.ID)
		case strings.HasPrefix(data, "mode:"):
			r.handleModeCallback(ctx, chatID, data, cb.ID)
		case data == "set_time":
			r.askTimePresets(ctx, chatID, cb.ID)
		case strings.HasPrefix(data, "time:"):
			r.handleTimeCallback(ctx, chatID, data, cb.ID)
		case data == "back_to_settings":
			_ = r.answerCallback(cb.ID, "")
			r.handleSettings(ctx, chatID)
		default:
			// Unknown callback — ignore silently
		}
		return
	}
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy scheduler.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
