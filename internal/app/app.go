package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"fitmate/internal/clipper"
	"fitmate/internal/config"
	"fitmate/internal/database"
	"fitmate/internal/favorites"
	"fitmate/internal/llm"
	"fitmate/internal/meal"
	"fitmate/internal/metrics"
	"fitmate/internal/planner"
	"fitmate/internal/shopping"
	"fitmate/internal/storage"
	"fitmate/internal/user"
)

var (
	// ErrUserNotFound is returned for operations on an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrMealNotFound is returned for an unknown meal id.
	ErrMealNotFound = errors.New("meal not found")
	// ErrIncompatibleMeal is returned when swapping in a meal of the wrong slot type.
	ErrIncompatibleMeal = errors.New("meal does not fit this slot")
	// ErrMealAlreadyPlanned is returned when swapping in a meal another slot of the day already has.
	ErrMealAlreadyPlanned = errors.New("meal already planned for this day")
	// ErrLLMDisabled is returned by features that need GEMINI_API_KEY.
	ErrLLMDisabled = errors.New("GEMINI_API_KEY not set, LLM features are disabled")
)

// App holds the application's dependencies.
type App struct {
	cfg          *config.Config
	db           *database.DB
	meals        *meal.Repository
	users        *user.Repository
	favorites    *favorites.Repository
	plans        *planner.PlanRepository
	generator    *planner.Generator
	reader       *planner.Reader
	metricsStore *metrics.Store
	catalog      *storage.CatalogStore

	// Optional: nil without an LLM
	tagger        *meal.Tagger
	recipeClipper *clipper.Clipper

	// Pause between LLM calls to stay under free tier rate limits
	llmDelay time.Duration
}

// NewApp creates and initializes a new App instance. textGen may be nil.
func NewApp(cfg *config.Config, db *database.DB, textGen llm.TextGenerator) (*App, error) {
	catalog, err := storage.NewCatalogStore(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	meals := meal.NewRepository(db.SQL)
	plans := planner.NewPlanRepository(db.SQL)

	a := &App{
		cfg:          cfg,
		db:           db,
		meals:        meals,
		users:        user.NewRepository(db.SQL),
		favorites:    favorites.NewRepository(db.SQL),
		plans:        plans,
		generator:    planner.NewGenerator(meals, plans, nil),
		reader:       planner.NewReader(plans),
		metricsStore: metrics.NewStore(db.SQL),
		catalog:      catalog,
	}

	if textGen != nil {
		a.tagger = meal.NewTagger(textGen)
		a.recipeClipper = clipper.NewClipper(catalog, meals, textGen)
		a.llmDelay = 4 * time.Second
	}
	return a, nil
}

// EnsureTelegramUser returns the user behind a Telegram account, registering it on first contact.
func (a *App) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName string) (*user.User, error) {
	return a.users.EnsureTelegramUser(ctx, telegramID, username, firstName)
}

// CreateUser registers a user that is not linked to Telegram.
func (a *App) CreateUser(ctx context.Context, username, name string) (int64, error) {
	return a.users.Create(ctx, username, name)
}

// User returns a user or ErrUserNotFound.
func (a *App) User(ctx context.Context, userID int64) (*user.User, error) {
	u, err := a.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %d", ErrUserNotFound, userID)
	}
	return u, nil
}

// UpdateProfile stores the user's personal attributes.
func (a *App) UpdateProfile(ctx context.Context, userID int64, p user.Profile) error {
	return a.users.UpdateProfile(ctx, userID, p)
}

// GeneratePlan replaces the user's plan and returns it grouped by day.
func (a *App) GeneratePlan(ctx context.Context, userID int64, goals []meal.Category, slots planner.SlotConfig, duration int) ([]planner.DayPlan, error) {
	if _, err := a.User(ctx, userID); err != nil {
		return nil, err
	}
	if duration > a.cfg.MaxPlanDays {
		return nil, fmt.Errorf("%w: at most %d days", planner.ErrInvalidDuration, a.cfg.MaxPlanDays)
	}

	start := time.Now()
	_, genErr := a.generator.Generate(ctx, planner.Request{
		UserID:   userID,
		Goals:    goals,
		Slots:    slots,
		Duration: duration,
	})

	err := a.metricsStore.Record(ctx, metrics.GenerationMetric{
		UserID:     userID,
		Goals:      meal.FormatCategories(goals),
		SlotConfig: string(slots),
		Duration:   duration,
		Success:    genErr == nil,
		Latency:    time.Since(start),
	})
	if err != nil {
		log.Printf("Warning: failed to record generation metric for user %d: %v", userID, err)
	}

	if genErr != nil {
		return nil, genErr
	}
	return a.reader.Days(ctx, userID)
}

// Plan returns the user's plan grouped by day.
func (a *App) Plan(ctx context.Context, userID int64) ([]planner.DayPlan, error) {
	return a.reader.Days(ctx, userID)
}

// PlanByDay returns one day of the user's plan, or nil if there is no such day.
func (a *App) PlanByDay(ctx context.Context, userID int64, day int) (*planner.DayPlan, error) {
	return a.reader.Day(ctx, userID, day)
}

// Today returns the earliest day that still has pending meals, or nil.
func (a *App) Today(ctx context.Context, userID int64) (*planner.DayPlan, error) {
	return a.reader.EarliestIncompleteDay(ctx, userID)
}

// MarkMeal sets the status of one planned meal.
func (a *App) MarkMeal(ctx context.Context, userID int64, day int, slot planner.SlotName, status planner.Status) error {
	if err := a.plans.UpdateStatus(ctx, userID, day, slot, status); err != nil {
		return err
	}
	metrics.ObserveStatusUpdate(string(status))
	return nil
}

// SwapCandidates lists meals of category that could replace the meal in (day, slot).
// Meals already planned for that day are left out.
func (a *App) SwapCandidates(ctx context.Context, userID int64, day int, slot planner.SlotName, category meal.Category) ([]meal.Meal, error) {
	dp, err := a.findDay(ctx, userID, day, slot)
	if err != nil {
		return nil, err
	}
	planned := make(map[int64]struct{}, len(dp.Entries))
	for _, e := range dp.Entries {
		planned[e.MealID] = struct{}{}
	}

	pool, err := a.meals.ListByCategory(ctx, category, slot.SlotType())
	if err != nil {
		return nil, err
	}

	out := make([]meal.Meal, 0, len(pool))
	for _, m := range pool {
		if _, ok := planned[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// SwapMeal puts another meal into (day, slot). The slot goes back to pending.
// A meal planned in another slot of the same day is rejected.
func (a *App) SwapMeal(ctx context.Context, userID int64, day int, slot planner.SlotName, mealID int64) error {
	m, err := a.meals.Get(ctx, mealID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: %d", ErrMealNotFound, mealID)
	}
	if m.SlotType() != slot.SlotType() {
		return fmt.Errorf("%w: %s is a %s meal", ErrIncompatibleMeal, m.Name, m.SlotType())
	}

	dp, err := a.findDay(ctx, userID, day, slot)
	if err != nil {
		return err
	}
	for _, e := range dp.Entries {
		if e.Slot != slot && e.MealID == mealID {
			return fmt.Errorf("%w: %s is day %d %s", ErrMealAlreadyPlanned, m.Name, day, e.Slot)
		}
	}

	if err := a.plans.SwapMeal(ctx, userID, day, slot, mealID); err != nil {
		return err
	}
	metrics.ObserveStatusUpdate("swapped")
	return nil
}

// AddFavorite marks a meal as favorite. It reports false if it already was one.
func (a *App) AddFavorite(ctx context.Context, userID, mealID int64) (bool, error) {
	if _, err := a.MealDetails(ctx, mealID); err != nil {
		return false, err
	}
	return a.favorites.Add(ctx, userID, mealID)
}

// RemoveFavorite unmarks a meal. It reports false if it was not a favorite.
func (a *App) RemoveFavorite(ctx context.Context, userID, mealID int64) (bool, error) {
	return a.favorites.Remove(ctx, userID, mealID)
}

// Favorites lists the user's favorite meals.
func (a *App) Favorites(ctx context.Context, userID int64) ([]meal.Meal, error) {
	return a.favorites.List(ctx, userID)
}

// IsFavorite reports whether the user marked the meal as favorite.
func (a *App) IsFavorite(ctx context.Context, userID, mealID int64) (bool, error) {
	return a.favorites.IsFavorite(ctx, userID, mealID)
}

// ShoppingList aggregates the ingredients of the pending meals in the user's plan.
func (a *App) ShoppingList(ctx context.Context, userID int64) ([]shopping.Item, error) {
	entries, err := a.reader.ListPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	return shopping.Build(entries), nil
}

// MealDetails returns the display form of a meal or ErrMealNotFound.
func (a *App) MealDetails(ctx context.Context, mealID int64) (*meal.Details, error) {
	m, err := a.meals.Get(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ErrMealNotFound, mealID)
	}
	d := meal.NewDetails(*m)
	return &d, nil
}

// Usage returns daily generation statistics for the last days.
func (a *App) Usage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	return a.metricsStore.GetDailyUsage(ctx, days)
}

// CleanupMetrics deletes generation metrics older than days.
func (a *App) CleanupMetrics(ctx context.Context, days int) (int64, error) {
	return a.metricsStore.Cleanup(ctx, days)
}

// SysHealth reports runtime statistics and the size of the database and catalog.
func (a *App) SysHealth() metrics.SysHealth {
	return metrics.GetSysHealth(a.cfg.DatabasePath, a.cfg.CatalogPath)
}

// findDay returns the plan day holding (day, slot) or ErrAssignmentNotFound.
func (a *App) findDay(ctx context.Context, userID int64, day int, slot planner.SlotName) (*planner.DayPlan, error) {
	dp, err := a.reader.Day(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if dp != nil {
		for _, e := range dp.Entries {
			if e.Slot == slot {
				return dp, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: day %d %s", planner.ErrAssignmentNotFound, day, slot)
}

// DB exposes the connection for supporting stores such as chat sessions.
func (a *App) DB() *sql.DB {
	return a.db.SQL
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.db.Close()
}
