package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fitmate/internal/app"
	"fitmate/internal/clipper"
	"fitmate/internal/config"
	"fitmate/internal/meal"
	"fitmate/internal/metrics"
	"fitmate/internal/planner"
	"fitmate/internal/shopping"
	"fitmate/internal/user"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// updateTimeout bounds the handling of a single webhook update.
const updateTimeout = 2 * time.Minute

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Service is the application behaviour the bot exposes.
type Service interface {
	EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName string) (*user.User, error)
	User(ctx context.Context, userID int64) (*user.User, error)
	UpdateProfile(ctx context.Context, userID int64, p user.Profile) error
	GeneratePlan(ctx context.Context, userID int64, goals []meal.Category, slots planner.SlotConfig, duration int) ([]planner.DayPlan, error)
	Plan(ctx context.Context, userID int64) ([]planner.DayPlan, error)
	PlanByDay(ctx context.Context, userID int64, day int) (*planner.DayPlan, error)
	Today(ctx context.Context, userID int64) (*planner.DayPlan, error)
	MarkMeal(ctx context.Context, userID int64, day int, slot planner.SlotName, status planner.Status) error
	SwapCandidates(ctx context.Context, userID int64, day int, slot planner.SlotName, category meal.Category) ([]meal.Meal, error)
	SwapMeal(ctx context.Context, userID int64, day int, slot planner.SlotName, mealID int64) error
	AddFavorite(ctx context.Context, userID, mealID int64) (bool, error)
	RemoveFavorite(ctx context.Context, userID, mealID int64) (bool, error)
	Favorites(ctx context.Context, userID int64) ([]meal.Meal, error)
	ShoppingList(ctx context.Context, userID int64) ([]shopping.Item, error)
	MealDetails(ctx context.Context, mealID int64) (*meal.Details, error)
	ImportURL(ctx context.Context, url string) (*meal.Meal, error)
	Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error)
	SysHealth() metrics.SysHealth
}

// Bot turns Telegram updates into FitMate operations.
type Bot struct {
	api      Sender
	svc      Service
	sessions *SessionRepository
	cfg      *config.Config
}

// Connect authorizes against the Telegram API and points its webhook at us.
func Connect(cfg *config.Config) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Printf("Authorized on account %s", bot.Self.UserName)

	webhookURL := cfg.TelegramWebhookURL
	wh, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook url %s: %w", webhookURL, err)
	}
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", webhookURL, err)
	}
	log.Printf("Webhook set response: %s", resp.Description)
	return bot, nil
}

// NewBot creates a Bot.
func NewBot(cfg *config.Config, api Sender, svc Service, sessions *SessionRepository) *Bot {
	return &Bot{
		api:      api,
		svc:      svc,
		sessions: sessions,
		cfg:      cfg,
	}
}

// RegisterHandlers registers the webhook endpoint on mux.
func (b *Bot) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook", b.handleWebhook)
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), updateTimeout)
		defer cancel()
		b.HandleUpdate(ctx, update)
	}()
}

// HandleUpdate processes one update synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// authorize maps a Telegram account onto a FitMate user.
func (b *Bot) authorize(ctx context.Context, from *tgbotapi.User) (*user.User, bool) {
	if from == nil {
		return nil, false
	}
	if !b.cfg.IsAllowed(from.ID) {
		log.Printf("⚠️ Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
		return nil, false
	}
	u, err := b.svc.EnsureTelegramUser(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		log.Printf("Failed to resolve user %d: %v", from.ID, err)
		return nil, false
	}
	return u, true
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	u, ok := b.authorize(ctx, msg.From)
	if !ok {
		return
	}
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, u, msg)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(ctx, chatID, text)
		return
	}

	s, err := b.sessions.GetActive(ctx, chatID, time.Now())
	if err != nil {
		log.Printf("Warning: failed to load session for chat %d: %v", chatID, err)
	}
	if s != nil && s.State == stateAwaitingDuration {
		days, err := strconv.Atoi(text)
		if err != nil {
			b.sendText(chatID, fmt.Sprintf("Please send a number of days between 1 and %d.", b.cfg.MaxPlanDays))
			return
		}
		b.finishWizard(ctx, u, chatID, 0, s, days)
		return
	}

	b.sendText(chatID, "I didn't get that. Send /help to see what I can do.")
}

func (b *Bot) handleCommand(ctx context.Context, u *user.User, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())

	// /meal_12 is the tappable form of /meal 12.
	if id, ok := strings.CutPrefix(cmd, "meal_"); ok {
		cmd, args = "meal", id
	}

	switch cmd {
	case "start":
		b.sendText(chatID, fmt.Sprintf("👋 Hi %s!\n\n%s", escape(u.DisplayName()), helpText))
	case "help":
		b.sendText(chatID, helpText)
	case "plan":
		b.startWizard(ctx, chatID)
	case "cancel":
		if err := b.sessions.Clear(ctx, chatID); err != nil {
			log.Printf("Warning: failed to clear sessions for chat %d: %v", chatID, err)
		}
		b.sendText(chatID, "Cancelled.")
	case "review":
		b.handleReview(ctx, u, chatID)
	case "today":
		b.handleToday(ctx, u, chatID)
	case "shopping":
		items, err := b.svc.ShoppingList(ctx, u.ID)
		if err != nil {
			b.sendError(chatID, err)
			return
		}
		b.sendText(chatID, formatShopping(items))
	case "favorites":
		b.handleFavorites(ctx, u, chatID)
	case "meal":
		b.handleMeal(ctx, chatID, args)
	case "profile":
		b.handleProfile(ctx, u, chatID, args)
	case "stats", "metrics":
		b.handleStats(ctx, msg)
	default:
		b.sendText(chatID, "Unknown command. Send /help to see what I can do.")
	}
}

func (b *Bot) startWizard(ctx context.Context, chatID int64) {
	if _, err := b.sessions.Start(ctx, chatID, sessionPlanWizard, stateAwaitingGoal, WizardData{}); err != nil {
		b.sendError(chatID, err)
		return
	}
	kb := goalKeyboard()
	b.sendWithKeyboard(chatID, "🎯 *What is your goal?*", kb)
}

// finishWizard generates the plan; messageID is the wizard message to
// edit, or 0 when the duration was typed.
func (b *Bot) finishWizard(ctx context.Context, u *user.User, chatID int64, messageID int, s *Session, days int) {
	if days < 1 || days > b.cfg.MaxPlanDays {
		b.sendText(chatID, fmt.Sprintf("Please choose between 1 and %d days.", b.cfg.MaxPlanDays))
		return
	}
	goal, err := meal.ParseCategory(s.Data.Goal)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	slots := planner.ParseSlotConfig(s.Data.Slots)

	status := "🧑‍🍳 *Thinking...*\n(Picking meals for your plan)"
	if messageID == 0 {
		sent, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, status)))
		if err != nil {
			log.Printf("Failed to send initial reply: %v", err)
		}
		messageID = sent.MessageID
	} else {
		b.editText(chatID, messageID, status, nil)
	}

	if err := b.sessions.Delete(ctx, s.ID); err != nil {
		log.Printf("Warning: failed to delete session %d: %v", s.ID, err)
	}

	log.Printf("Generating plan for user %d: goal=%s slots=%q days=%d", u.ID, goal, slots, days)
	plan, err := b.svc.GeneratePlan(ctx, u.ID, []meal.Category{goal}, slots, days)
	if err != nil {
		b.editText(chatID, messageID, b.userError(err), nil)
		return
	}

	b.editText(chatID, messageID, fmt.Sprintf("✅ *Your plan is ready!*\n%s · %s · %d days\nSend /today to start.", goal.Label(), slots, days), nil)
	for _, text := range formatPlan(plan) {
		b.sendText(chatID, text)
	}
}

func (b *Bot) handleReview(ctx context.Context, u *user.User, chatID int64) {
	days, err := b.svc.Plan(ctx, u.ID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	for _, text := range formatPlan(days) {
		b.sendText(chatID, text)
	}
}

func (b *Bot) handleToday(ctx context.Context, u *user.User, chatID int64) {
	dp, err := b.svc.Today(ctx, u.ID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if dp == nil {
		b.sendText(chatID, "🎉 No pending meals. Send /plan to create a new plan.")
		return
	}
	b.sendWithKeyboard(chatID, formatDay(*dp), dayKeyboard(*dp))
}

func (b *Bot) handleFavorites(ctx context.Context, u *user.User, chatID int64) {
	meals, err := b.svc.Favorites(ctx, u.ID)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if len(meals) == 0 {
		b.sendText(chatID, formatFavorites(meals))
		return
	}
	b.sendWithKeyboard(chatID, formatFavorites(meals), favoritesKeyboard(meals))
}

func (b *Bot) handleMeal(ctx context.Context, chatID int64, args string) {
	id, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.sendText(chatID, "Usage: /meal <id>")
		return
	}
	d, err := b.svc.MealDetails(ctx, id)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	b.sendText(chatID, formatMealDetails(*d))
}

// handleProfile shows the profile, or applies "key=value" pairs first.
func (b *Bot) handleProfile(ctx context.Context, u *user.User, chatID int64, args string) {
	if args != "" {
		for _, pair := range strings.Fields(args) {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				b.sendText(chatID, fmt.Sprintf("Expected key=value, got %q.", escape(pair)))
				return
			}
			if err := u.Profile.Set(key, value); err != nil {
				b.sendText(chatID, "❌ "+escape(err.Error()))
				return
			}
		}
		if err := b.svc.UpdateProfile(ctx, u.ID, u.Profile); err != nil {
			b.sendError(chatID, err)
			return
		}
	}
	b.sendText(chatID, formatProfile(u))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From.ID != b.cfg.AdminTelegramID {
		b.sendText(msg.Chat.ID, "⛔ *Access Denied*: Admin only.")
		return
	}
	usage, err := b.svc.Usage(ctx, 7)
	if err != nil {
		b.sendText(msg.Chat.ID, "❌ Error fetching metrics.")
		return
	}
	b.sendText(msg.Chat.ID, formatStats(usage, b.svc.SysHealth()))
}

func (b *Bot) handleImport(ctx context.Context, chatID int64, url string) {
	sent, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, "✂️ *Clipping recipe...*\n(Extracting it into the catalog)")))
	if err != nil {
		log.Printf("Failed to send initial reply: %v", err)
		return
	}

	m, err := b.svc.ImportURL(ctx, url)
	var finalText string
	switch {
	case errors.Is(err, app.ErrLLMDisabled):
		finalText = "Recipe import is disabled on this server."
	case errors.Is(err, clipper.ErrAlreadyImported):
		finalText = "That recipe is already in the catalog."
	case err != nil:
		log.Printf("Error clipping recipe: %v", err)
		safeErr := strings.ReplaceAll(err.Error(), "`", "'")
		finalText = fmt.Sprintf("❌ *Error clipping recipe:*\n```\n%v\n```", safeErr)
	default:
		finalText = fmt.Sprintf("✅ *Recipe imported!*\n\n*Name:* %s\n/meal\\_%d", escape(m.Name), m.ID)
	}
	b.editText(chatID, sent.MessageID, finalText, nil)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	u, ok := b.authorize(ctx, query.From)
	if !ok || query.Message == nil {
		return
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	action, args := parseCallback(query.Data)

	answer := ""
	switch action {
	case actGoal, actMeals, actDays:
		answer = b.handleWizardStep(ctx, u, chatID, messageID, action, args)
	case actDone, actSkip:
		answer = b.handleMark(ctx, u, chatID, messageID, action, args)
	case actFav, actUnfav:
		answer = b.handleFavoriteToggle(ctx, u, chatID, messageID, action, args)
	case actSwap, actSwapCat, actSwapTo:
		answer = b.handleSwap(ctx, u, chatID, messageID, action, args)
	case actShowDay:
		if len(args) == 1 {
			if day, err := strconv.Atoi(args[0]); err == nil {
				b.refreshDay(ctx, u, chatID, messageID, day)
			}
		}
	default:
		log.Printf("Unknown callback data %q", query.Data)
	}

	// Answer callback to remove spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, answer)); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}
}

func (b *Bot) handleWizardStep(ctx context.Context, u *user.User, chatID int64, messageID int, action string, args []string) string {
	s, err := b.sessions.GetActive(ctx, chatID, time.Now())
	if err != nil {
		log.Printf("Warning: failed to load session for chat %d: %v", chatID, err)
	}
	if s == nil || s.Type != sessionPlanWizard || len(args) != 1 {
		b.editText(chatID, messageID, "This menu has expired. Send /plan to start again.", nil)
		return ""
	}

	switch {
	case action == actGoal && s.State == stateAwaitingGoal:
		goal, err := meal.ParseCategory(args[0])
		if err != nil {
			return "Unknown goal"
		}
		if err := b.sessions.Advance(ctx, s, stateAwaitingMeals, WizardData{Goal: string(goal)}); err != nil {
			b.sendError(chatID, err)
			return ""
		}
		kb := mealsKeyboard()
		b.editText(chatID, messageID, fmt.Sprintf("🎯 %s\n\n🍽️ *Which meals should I plan each day?*", goal.Label()), &kb)

	case action == actMeals && s.State == stateAwaitingMeals:
		i, err := strconv.Atoi(args[0])
		configs := planner.SlotConfigs()
		if err != nil || i < 0 || i >= len(configs) {
			return "Unknown option"
		}
		data := s.Data
		data.Slots = string(configs[i])
		if err := b.sessions.Advance(ctx, s, stateAwaitingDuration, data); err != nil {
			b.sendError(chatID, err)
			return ""
		}
		kb := durationKeyboard(b.cfg.MaxPlanDays)
		b.editText(chatID, messageID, fmt.Sprintf("🎯 %s · %s\n\n📆 *For how many days?*\nPick one or type a number up to %d.",
			meal.Category(data.Goal).Label(), configs[i], b.cfg.MaxPlanDays), &kb)

	case action == actDays && s.State == stateAwaitingDuration:
		days, err := strconv.Atoi(args[0])
		if err != nil {
			return "Unknown option"
		}
		b.finishWizard(ctx, u, chatID, messageID, s, days)

	default:
		return "Please use the latest menu"
	}
	return ""
}

func parseSlotArgs(args []string) (int, planner.SlotName, bool) {
	if len(args) < 2 {
		return 0, "", false
	}
	day, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, "", false
	}
	slot, err := planner.ParseSlotName(args[1])
	if err != nil {
		return 0, "", false
	}
	return day, slot, true
}

func (b *Bot) handleMark(ctx context.Context, u *user.User, chatID int64, messageID int, action string, args []string) string {
	day, slot, ok := parseSlotArgs(args)
	if !ok {
		return "Invalid button"
	}
	status := planner.StatusDone
	if action == actSkip {
		status = planner.StatusSkipped
	}
	if err := b.svc.MarkMeal(ctx, u.ID, day, slot, status); err != nil {
		return b.userError(err)
	}
	b.refreshDay(ctx, u, chatID, messageID, day)
	return fmt.Sprintf("%s marked %s", slot, status)
}

func (b *Bot) handleFavoriteToggle(ctx context.Context, u *user.User, chatID int64, messageID int, action string, args []string) string {
	if len(args) != 1 {
		return "Invalid button"
	}
	mealID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return "Invalid button"
	}

	if action == actFav {
		added, err := b.svc.AddFavorite(ctx, u.ID, mealID)
		if err != nil {
			return b.userError(err)
		}
		if !added {
			return "Already a favorite"
		}
		return "⭐ Added to favorites"
	}

	if _, err := b.svc.RemoveFavorite(ctx, u.ID, mealID); err != nil {
		return b.userError(err)
	}
	meals, err := b.svc.Favorites(ctx, u.ID)
	if err == nil {
		if len(meals) == 0 {
			b.editText(chatID, messageID, formatFavorites(meals), nil)
		} else {
			kb := favoritesKeyboard(meals)
			b.editText(chatID, messageID, formatFavorites(meals), &kb)
		}
	}
	return "Removed from favorites"
}

func (b *Bot) handleSwap(ctx context.Context, u *user.User, chatID int64, messageID int, action string, args []string) string {
	day, slot, ok := parseSlotArgs(args)
	if !ok {
		return "Invalid button"
	}

	switch action {
	case actSwap:
		kb := swapCategoryKeyboard(day, slot)
		b.editText(chatID, messageID, fmt.Sprintf("🔄 *Day %d %s*\nPick a category for the replacement.", day, slot), &kb)

	case actSwapCat:
		if len(args) != 3 {
			return "Invalid button"
		}
		category, err := meal.ParseCategory(args[2])
		if err != nil {
			return "Unknown category"
		}
		candidates, err := b.svc.SwapCandidates(ctx, u.ID, day, slot, category)
		if err != nil {
			return b.userError(err)
		}
		if len(candidates) == 0 {
			return "No other meals in that category"
		}
		kb := swapCandidatesKeyboard(day, slot, candidates)
		b.editText(chatID, messageID, fmt.Sprintf("🔄 *Day %d %s* · %s\nPick the new meal.", day, slot, category.Label()), &kb)

	case actSwapTo:
		if len(args) != 3 {
			return "Invalid button"
		}
		mealID, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return "Invalid button"
		}
		if err := b.svc.SwapMeal(ctx, u.ID, day, slot, mealID); err != nil {
			return b.userError(err)
		}
		b.refreshDay(ctx, u, chatID, messageID, day)
		return "Meal swapped"
	}
	return ""
}

// refreshDay redraws a day message with its action keyboard.
func (b *Bot) refreshDay(ctx context.Context, u *user.User, chatID int64, messageID int, day int) {
	dp, err := b.svc.PlanByDay(ctx, u.ID, day)
	if err != nil {
		b.sendError(chatID, err)
		return
	}
	if dp == nil {
		b.editText(chatID, messageID, "That day is no longer in your plan.", nil)
		return
	}
	text := formatDay(*dp)
	if dp.Complete() {
		text += "\n🎉 Day complete! Send /today for the next one."
	}
	kb := dayKeyboard(*dp)
	b.editText(chatID, messageID, text, &kb)
}

// userError turns an error into a message for the user. Unexpected
// errors are logged and reported to the admin.
func (b *Bot) userError(err error) string {
	switch {
	case errors.Is(err, planner.ErrInsufficientMeals):
		return insufficientMealsText
	case errors.Is(err, planner.ErrInvalidDuration):
		return fmt.Sprintf("Please choose between 1 and %d days.", b.cfg.MaxPlanDays)
	case errors.Is(err, planner.ErrAssignmentNotFound):
		return "That meal is not in your plan."
	case errors.Is(err, app.ErrMealNotFound):
		return "Meal not found."
	case errors.Is(err, app.ErrIncompatibleMeal):
		return "That meal does not fit this slot."
	case errors.Is(err, app.ErrMealAlreadyPlanned):
		return "That meal is already planned for this day."
	case errors.Is(err, meal.ErrUnknownCategory):
		return "Unknown category."
	}
	log.Printf("Error handling update: %v", err)
	b.sendAdminAlert(fmt.Sprintf("⚠️ *Bot error*\n```\n%s\n```", strings.ReplaceAll(err.Error(), "`", "'")))
	return "❌ Something went wrong. Please try again."
}

func (b *Bot) sendError(chatID int64, err error) {
	b.sendText(chatID, b.userError(err))
}

func markdown(msg tgbotapi.MessageConfig) tgbotapi.MessageConfig {
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

func (b *Bot) sendText(chatID int64, text string) {
	if _, err := b.api.Send(markdown(tgbotapi.NewMessage(chatID, text))); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := markdown(tgbotapi.NewMessage(chatID, text))
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) editText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	edit.ReplyMarkup = kb
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Failed to edit message %d in chat %d: %v", messageID, chatID, err)
	}
}

func (b *Bot) sendAdminAlert(text string) {
	if b.cfg.AdminTelegramID == 0 {
		return
	}
	b.sendText(b.cfg.AdminTelegramID, text)
}
