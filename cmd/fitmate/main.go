package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"fitmate/internal/api"
	"fitmate/internal/app"
	"fitmate/internal/config"
	"fitmate/internal/database"
	"fitmate/internal/llm"
	"fitmate/internal/meal"
	"fitmate/internal/planner"
	"fitmate/internal/telegram"

	"github.com/spf13/cobra"
)

func main() {
	config.LoadDotEnv()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "fitmate",
		Short:        "Meal plan generator for fitness goals",
		SilenceUsage: true,
	}

	cmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		importURLCmd(),
		userCmd(),
		planCmd(),
		todayCmd(),
		tokenCmd(),
		cleanupCmd(),
	)
	return cmd
}

// withApp loads the configuration, opens the database and runs fn.
func withApp(fn func(ctx context.Context, cfg *config.Config, a *app.App) error) error {
	ctx := context.Background()

	cfg, err := config.NewFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	var textGen llm.TextGenerator
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, cfg)
		if err != nil {
			db.Close()
			return err
		}
		defer geminiClient.Close()
		textGen = geminiClient
	}

	application, err := app.NewApp(cfg, db, textGen)
	if err != nil {
		db.Close()
		return err
	}
	defer application.Close()

	return fn(ctx, cfg, application)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFromEnv()
			if err != nil {
				return err
			}
			if err := database.RunMigrations(cfg.DatabasePath); err != nil {
				return err
			}
			fmt.Println("Database is up to date.")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the YAML meal catalog into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				report, err := a.SeedCatalog(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("Loaded %d meals (%d auto-tagged, %d skipped).\n", report.Loaded, report.Tagged, report.Skipped)
				return nil
			})
		},
	}
}

func importURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-url <url>",
		Short: "Import a recipe page into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				m, err := a.ImportURL(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Printf("Imported %q as meal %d (%s).\n", m.Name, m.ID, m.Identifier)
				return nil
			})
		},
	}
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var username, name string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				id, err := a.CreateUser(ctx, username, name)
				if err != nil {
					return err
				}
				fmt.Printf("Created user %d.\n", id)
				return nil
			})
		},
	}
	add.Flags().StringVar(&username, "username", "", "Login name")
	add.Flags().StringVar(&name, "name", "", "Display name")
	_ = add.MarkFlagRequired("username")

	cmd.AddCommand(add)
	return cmd
}

func planCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate or show meal plans",
	}

	var (
		userID int64
		goals  []string
		meals  string
		days   int
	)
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new plan, replacing the current one",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := make([]meal.Category, 0, len(goals))
			for _, g := range goals {
				c, err := meal.ParseCategory(g)
				if err != nil {
					return err
				}
				cats = append(cats, c)
			}
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				plan, err := a.GeneratePlan(ctx, userID, cats, planner.ParseSlotConfig(meals), days)
				if err != nil {
					return err
				}
				printPlan(plan)
				return nil
			})
		},
	}
	generate.Flags().Int64Var(&userID, "user", 0, "User ID")
	generate.Flags().StringSliceVar(&goals, "goal", nil, fmt.Sprintf("Goal categories (%s)", categoryList()))
	generate.Flags().StringVar(&meals, "meals", string(planner.SlotsAll), "Meals per day")
	generate.Flags().IntVar(&days, "days", 7, "Plan duration in days")
	_ = generate.MarkFlagRequired("user")
	_ = generate.MarkFlagRequired("goal")

	var showUser int64
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				plan, err := a.Plan(ctx, showUser)
				if err != nil {
					return err
				}
				if len(plan) == 0 {
					fmt.Println("No plan yet.")
					return nil
				}
				printPlan(plan)
				return nil
			})
		},
	}
	show.Flags().Int64Var(&showUser, "user", 0, "User ID")
	_ = show.MarkFlagRequired("user")

	cmd.AddCommand(generate, show)
	return cmd
}

func todayCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Print the earliest day with pending meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, _ *config.Config, a *app.App) error {
				dp, err := a.Today(ctx, userID)
				if err != nil {
					return err
				}
				if dp == nil {
					fmt.Println("No pending meals.")
					return nil
				}
				printPlan([]planner.DayPlan{*dp})
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				if _, err := a.User(ctx, userID); err != nil {
					return err
				}
				token, err := api.IssueToken([]byte(cfg.APISigningKey), userID, ttl)
				if err != nil {
					return err
				}
				fmt.Println(token)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "User ID")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func cleanupCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "metrics-cleanup",
		Short: "Remove old metric records and expired chat sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, cfg *config.Config, a *app.App) error {
				affected, err := a.CleanupMetrics(ctx, days)
				if err != nil {
					return fmt.Errorf("cleanup failed: %w", err)
				}
				fmt.Printf("Successfully removed %d old metric records.\n", affected)

				sessions, err := telegram.NewSessionRepository(a.DB()).CleanupExpired(ctx)
				if err != nil {
					log.Printf("Warning: failed to clean up sessions: %v", err)
					return nil
				}
				fmt.Printf("Removed %d expired chat sessions.\n", sessions)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Keep records for the last N days")
	return cmd
}

func printPlan(days []planner.DayPlan) {
	for _, dp := range days {
		fmt.Printf("Day %d\n", dp.Day)
		for _, e := range dp.Entries {
			fmt.Printf("  %-9s  %-7s  %s (#%d)\n", e.Slot, e.Status, e.Meal.Name, e.MealID)
		}
	}
}

func categoryList() string {
	cats := meal.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
