package telegram

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"fitmate/internal/app"
	"fitmate/internal/config"
	"fitmate/internal/database"
	"fitmate/internal/meal"
	"fitmate/internal/planner"
	"fitmate/internal/storage"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chatID  = int64(1001)
	adminID = int64(9)
)

type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	answers  []string
	nextID   int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answers = append(f.answers, cb.Text)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every message sent or edited so far.
func (f *fakeSender) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeSender) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) lastText() string {
	t := f.texts()
	return t[len(t)-1]
}

func (f *fakeSender) lastAnswer() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.answers[len(f.answers)-1]
}

type testBot struct {
	bot    *Bot
	sender *fakeSender
	app    *app.App
}

func newTestBot(t *testing.T) *testBot {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:    filepath.Join(dir, "fitmate.db"),
		CatalogPath:     filepath.Join(dir, "meals"),
		MaxPlanDays:     14,
		AdminTelegramID: adminID,
	}

	catalog, err := storage.NewCatalogStore(cfg.CatalogPath)
	require.NoError(t, err)
	for _, e := range []storage.CatalogEntry{
		{Identifier: "eggs", Name: "Scrambled Eggs", Type: "Breakfast", Categories: []string{"keto"}, Ingredients: []string{"eggs", "butter"}},
		{Identifier: "yogurt", Name: "Greek Yogurt", Type: "Breakfast", Categories: []string{"keto"}, Ingredients: []string{"yogurt"}},
		{Identifier: "steak", Name: "Steak", Type: "Dinner", Categories: []string{"keto"}, Ingredients: []string{"beef", "butter"}},
		{Identifier: "salmon", Name: "Salmon", Type: "Lunch", Categories: []string{"keto"}, Ingredients: []string{"salmon"}},
		{Identifier: "chicken", Name: "Chicken Bowl", Type: "Lunch/Dinner", Categories: []string{"keto"}, Ingredients: []string{"chicken"}},
	} {
		require.NoError(t, catalog.Save(e))
	}

	db, err := database.NewDB(cfg.DatabasePath)
	require.NoError(t, err)
	a, err := app.NewApp(cfg, db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	_, err = a.SeedCatalog(ctx)
	require.NoError(t, err)

	sender := &fakeSender{}
	bot := NewBot(cfg, sender, a, NewSessionRepository(db.SQL))
	return &testBot{bot: bot, sender: sender, app: a}
}

func (tb *testBot) message(from int64, text string) {
	msg := &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: from, UserName: "tester", FirstName: "Test"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
	if strings.HasPrefix(text, "/") {
		cmd, _, _ := strings.Cut(text, " ")
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd)}}
	}
	tb.bot.HandleUpdate(context.Background(), tgbotapi.Update{Message: msg})
}

func (tb *testBot) press(data string) {
	tb.bot.HandleUpdate(context.Background(), tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "q",
		From:    &tgbotapi.User{ID: chatID, UserName: "tester", FirstName: "Test"},
		Message: &tgbotapi.Message{MessageID: 50, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}})
}

func slotConfigIndex(t *testing.T, c planner.SlotConfig) string {
	t.Helper()
	for i, sc := range planner.SlotConfigs() {
		if sc == c {
			return strconv.Itoa(i)
		}
	}
	t.Fatalf("slot config %q not offered", c)
	return ""
}

func buttons(kb tgbotapi.InlineKeyboardMarkup) []tgbotapi.InlineKeyboardButton {
	var out []tgbotapi.InlineKeyboardButton
	for _, row := range kb.InlineKeyboard {
		out = append(out, row...)
	}
	return out
}

func TestPlanWizard(t *testing.T) {
	tb := newTestBot(t)

	tb.message(chatID, "/start")
	assert.Contains(t, tb.sender.lastText(), "Hi Test")

	tb.message(chatID, "/plan")
	first, ok := tb.sender.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, first.Text, "What is your goal?")
	assert.Len(t, buttons(first.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)), 12)

	tb.press("goal|keto")
	assert.Contains(t, tb.sender.lastText(), "Which meals")

	tb.press("meals|" + slotConfigIndex(t, planner.SlotsAll))
	assert.Contains(t, tb.sender.lastText(), "For how many days?")

	tb.message(chatID, "2")
	texts := tb.sender.texts()
	joined := strings.Join(texts, "\n")
	assert.Contains(t, joined, "Your plan is ready!")
	assert.Contains(t, joined, "*Day 1*")
	assert.Contains(t, joined, "*Day 2*")

	days, err := tb.app.Plan(context.Background(), mustUserID(t, tb))
	require.NoError(t, err)
	assert.Len(t, days, 2)

	t.Run("SessionIsConsumed", func(t *testing.T) {
		tb.press("days|3")
		assert.Contains(t, tb.sender.lastText(), "This menu has expired")
	})
}

func TestPlanWizardInsufficientMeals(t *testing.T) {
	tb := newTestBot(t)

	tb.message(chatID, "/plan")
	tb.press("goal|vegan")
	tb.press("meals|" + slotConfigIndex(t, planner.SlotsAll))
	tb.press("days|3")

	assert.Equal(t, insufficientMealsText, tb.sender.lastText())
}

func TestPlanWizardRejectsBadDuration(t *testing.T) {
	tb := newTestBot(t)

	tb.message(chatID, "/plan")
	tb.press("goal|keto")
	tb.press("meals|0")
	tb.message(chatID, "forty")
	assert.Contains(t, tb.sender.lastText(), "between 1 and 14")
	tb.message(chatID, "40")
	assert.Contains(t, tb.sender.lastText(), "between 1 and 14")
}

func mustUserID(t *testing.T, tb *testBot) int64 {
	t.Helper()
	u, err := tb.app.EnsureTelegramUser(context.Background(), chatID, "tester", "Test")
	require.NoError(t, err)
	return u.ID
}

func TestTodayActions(t *testing.T) {
	tb := newTestBot(t)
	ctx := context.Background()
	userID := mustUserID(t, tb)
	_, err := tb.app.GeneratePlan(ctx, userID, []meal.Category{meal.Keto}, planner.SlotsBreakfastAndLunch, 2)
	require.NoError(t, err)

	tb.message(chatID, "/today")
	msg, ok := tb.sender.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "*Day 1*")
	kb := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.Len(t, kb.InlineKeyboard, 2)
	for _, b := range buttons(kb) {
		require.NotNil(t, b.CallbackData)
		assert.LessOrEqual(t, len(*b.CallbackData), maxCallbackLen)
	}

	t.Run("DoneAndSkip", func(t *testing.T) {
		tb.press("done|1|Breakfast")
		assert.Equal(t, "Breakfast marked done", tb.sender.lastAnswer())
		tb.press("skip|1|Lunch")
		assert.Contains(t, tb.sender.lastText(), "Day complete!")

		dp, err := tb.app.Today(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 2, dp.Day)
	})

	t.Run("MissingSlot", func(t *testing.T) {
		tb.press("done|1|Dinner")
		assert.Equal(t, "That meal is not in your plan.", tb.sender.lastAnswer())
	})

	t.Run("Swap", func(t *testing.T) {
		tb.press("swap|2|Lunch")
		edit, ok := tb.sender.last().(tgbotapi.EditMessageTextConfig)
		require.True(t, ok)
		assert.Contains(t, edit.Text, "Pick a category")

		tb.press("swc|2|Lunch|keto")
		edit, ok = tb.sender.last().(tgbotapi.EditMessageTextConfig)
		require.True(t, ok)
		candidates := buttons(*edit.ReplyMarkup)
		require.Greater(t, len(candidates), 1)
		target := *candidates[0].CallbackData
		assert.True(t, strings.HasPrefix(target, "swt|2|Lunch|"))

		tb.press(target)
		assert.Equal(t, "Meal swapped", tb.sender.lastAnswer())

		dp, err := tb.app.PlanByDay(ctx, userID, 2)
		require.NoError(t, err)
		wantID := target[len("swt|2|Lunch|"):]
		for _, e := range dp.Entries {
			if e.Slot == planner.Lunch {
				assert.Equal(t, wantID, strconv.FormatInt(e.MealID, 10))
				assert.Equal(t, planner.StatusPending, e.Status)
			}
		}
	})

	t.Run("SwapNoCandidates", func(t *testing.T) {
		tb.press("swc|2|Breakfast|vegan")
		assert.Equal(t, "No other meals in that category", tb.sender.lastAnswer())
	})

	t.Run("Favorites", func(t *testing.T) {
		dp, err := tb.app.PlanByDay(ctx, userID, 2)
		require.NoError(t, err)
		mealID := strconv.FormatInt(dp.Entries[0].MealID, 10)

		tb.press("fav|" + mealID)
		assert.Equal(t, "⭐ Added to favorites", tb.sender.lastAnswer())
		tb.press("fav|" + mealID)
		assert.Equal(t, "Already a favorite", tb.sender.lastAnswer())

		tb.message(chatID, "/favorites")
		assert.Contains(t, tb.sender.lastText(), dp.Entries[0].Meal.Name)

		tb.press("unfav|" + mealID)
		assert.Equal(t, "Removed from favorites", tb.sender.lastAnswer())
		assert.Contains(t, tb.sender.lastText(), "no favorite meals")
	})

	t.Run("Shopping", func(t *testing.T) {
		tb.message(chatID, "/shopping")
		assert.Contains(t, tb.sender.lastText(), "Shopping List")
	})

	t.Run("Review", func(t *testing.T) {
		tb.message(chatID, "/review")
		text := tb.sender.lastText()
		assert.Contains(t, text, "Your 2-day meal plan")
		assert.Contains(t, text, "✅ *Breakfast*")
		assert.Contains(t, text, "⏭️ *Lunch*")
	})
}

func TestCommands(t *testing.T) {
	tb := newTestBot(t)

	t.Run("Meal", func(t *testing.T) {
		tb.message(chatID, "/meal_2")
		assert.Contains(t, tb.sender.lastText(), "*Scrambled Eggs*")
		tb.message(chatID, "/meal 2")
		assert.Contains(t, tb.sender.lastText(), "• Butter")
		tb.message(chatID, "/meal 999")
		assert.Equal(t, "Meal not found.", tb.sender.lastText())
		tb.message(chatID, "/meal")
		assert.Equal(t, "Usage: /meal <id>", tb.sender.lastText())
	})

	t.Run("Profile", func(t *testing.T) {
		tb.message(chatID, "/profile age=31 height=180cm")
		text := tb.sender.lastText()
		assert.Contains(t, text, "*Age:* 31")
		assert.Contains(t, text, "*Height:* 180 cm")

		tb.message(chatID, "/profile shoe=44")
		assert.Contains(t, tb.sender.lastText(), "unknown profile field")

		u, err := tb.app.User(context.Background(), mustUserID(t, tb))
		require.NoError(t, err)
		assert.Equal(t, 31, u.Profile.Age)
	})

	t.Run("StatsAdminOnly", func(t *testing.T) {
		tb.message(chatID, "/stats")
		assert.Contains(t, tb.sender.lastText(), "Access Denied")

		tb.message(adminID, "/stats")
		assert.Contains(t, tb.sender.lastText(), "Usage & Health Report")
	})

	t.Run("ImportDisabled", func(t *testing.T) {
		tb.message(chatID, "https://example.com/recipe")
		assert.Equal(t, "Recipe import is disabled on this server.", tb.sender.lastText())
	})

	t.Run("Unknown", func(t *testing.T) {
		tb.message(chatID, "/dance")
		assert.Contains(t, tb.sender.lastText(), "Unknown command")
		tb.message(chatID, "hello")
		assert.Contains(t, tb.sender.lastText(), "/help")
	})
}

func TestAllowList(t *testing.T) {
	tb := newTestBot(t)
	tb.bot.cfg.TelegramAllowedUserIDs = []int64{adminID}

	tb.message(chatID, "/start")
	assert.Empty(t, tb.sender.texts())

	tb.message(adminID, "/start")
	assert.Len(t, tb.sender.texts(), 1)
}
