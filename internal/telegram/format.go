package telegram

import (
	"fmt"
	"strings"

	"fitmate/internal/meal"
	"fitmate/internal/metrics"
	"fitmate/internal/planner"
	"fitmate/internal/shopping"
	"fitmate/internal/user"
)

// maxMessageLen stays under Telegram's 4096 character limit.
const maxMessageLen = 4000

const insufficientMealsText = "Not enough meals in the catalog to satisfy your plan."

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape makes catalog text safe for legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

func statusIcon(s planner.Status) string {
	switch s {
	case planner.StatusDone:
		return "✅"
	case planner.StatusSkipped:
		return "⏭️"
	default:
		return "🍽️"
	}
}

func formatDay(dp planner.DayPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Day %d*", dp.Day)
	if dp.Complete() {
		b.WriteString(" (complete)")
	}
	b.WriteString("\n")
	for _, e := range dp.Entries {
		fmt.Fprintf(&b, "%s *%s*: %s", statusIcon(e.Status), e.Slot, escape(e.Meal.Name))
		if e.Meal.PrepTime > 0 {
			fmt.Fprintf(&b, " (%d min)", e.Meal.PrepTime)
		}
		fmt.Fprintf(&b, " /meal\\_%d\n", e.MealID)
	}
	return b.String()
}

// formatPlan renders the plan and splits it into sendable messages.
func formatPlan(days []planner.DayPlan) []string {
	if len(days) == 0 {
		return []string{"You have no meal plan yet. Send /plan to create one."}
	}
	blocks := make([]string, 0, len(days)+1)
	blocks = append(blocks, fmt.Sprintf("🗓️ *Your %d-day meal plan*", len(days)))
	for _, dp := range days {
		blocks = append(blocks, formatDay(dp))
	}
	return splitMessage(blocks, maxMessageLen)
}

// splitMessage packs blocks into messages no longer than limit.
func splitMessage(blocks []string, limit int) []string {
	var out []string
	var cur strings.Builder
	for _, block := range blocks {
		if cur.Len() > 0 && cur.Len()+len(block)+1 > limit {
			out = append(out, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteString("\n")
		}
		cur.WriteString(block)
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func formatShopping(items []shopping.Item) string {
	if len(items) == 0 {
		return "🛒 Nothing left to buy. All planned meals are done or skipped."
	}
	var b strings.Builder
	b.WriteString("🛒 *Shopping List*\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "• %s", escape(item.Name))
		if item.Count > 1 {
			fmt.Fprintf(&b, " ×%d", item.Count)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatMealDetails(d meal.Details) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🍽️ *%s*\n_%s_", escape(d.Name), escape(d.Type))
	if d.PrepTime > 0 {
		fmt.Fprintf(&b, " · %d min", d.PrepTime)
	}
	if d.Overnight {
		b.WriteString(" · prepare the night before")
	}
	b.WriteString("\n")

	if len(d.Categories) > 0 {
		labels := make([]string, len(d.Categories))
		for i, c := range d.Categories {
			labels[i] = c.Label()
		}
		fmt.Fprintf(&b, "🏷 %s\n", strings.Join(labels, ", "))
	}
	if len(d.EquipmentSet) > 0 {
		fmt.Fprintf(&b, "\n*Equipment:* %s\n", escape(strings.Join(d.EquipmentSet, ", ")))
	}
	if len(d.IngredientSet) > 0 {
		b.WriteString("\n*Ingredients*\n")
		for _, ing := range d.IngredientSet {
			fmt.Fprintf(&b, "• %s\n", escape(ing))
		}
	}
	if len(d.Steps) > 0 {
		b.WriteString("\n*Instructions*\n")
		for i, step := range d.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, escape(step))
		}
	}
	return b.String()
}

func formatFavorites(meals []meal.Meal) string {
	if len(meals) == 0 {
		return "⭐ You have no favorite meals yet. Tap ⭐ on a meal in /today to add one."
	}
	var b strings.Builder
	b.WriteString("⭐ *Favorite meals*\n\n")
	for _, m := range meals {
		fmt.Fprintf(&b, "• %s /meal\\_%d\n", escape(m.Name), m.ID)
	}
	return b.String()
}

func formatProfile(u *user.User) string {
	p := u.Profile
	var b strings.Builder
	fmt.Fprintf(&b, "👤 *%s*\n\n", escape(u.DisplayName()))
	row := func(label, value string) {
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(&b, "*%s:* %s\n", label, escape(value))
	}
	row("Name", strings.TrimSpace(p.Name+" "+p.Lastname))
	if p.Age > 0 {
		row("Age", fmt.Sprintf("%d", p.Age))
	} else {
		row("Age", "")
	}
	row("Gender", p.Gender)
	if p.Height > 0 {
		row("Height", fmt.Sprintf("%g %s", p.Height, p.HeightUnit))
	} else {
		row("Height", "")
	}
	if p.Weight > 0 {
		row("Weight", fmt.Sprintf("%g %s", p.Weight, p.WeightUnit))
	} else {
		row("Weight", "")
	}
	row("Diet", p.DietaryPreferences)
	row("Allergies", p.Allergies)

	fmt.Fprintf(&b, "\nUpdate with `/profile key=value`, keys: %s", strings.Join(user.ProfileFields(), ", "))
	return b.String()
}

func formatStats(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Plan generations*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d runs, %d ok, avg %dms\n", d.Date, d.Generations, d.Successes, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Uptime: %s\n", health.Uptime))
	sb.WriteString(fmt.Sprintf("• Database: %s\n", health.DatabaseSize))
	sb.WriteString(fmt.Sprintf("• Catalog: %d files, %s\n", health.CatalogFiles, health.CatalogSize))
	return sb.String()
}

const helpText = `🥗 *FitMate* builds meal plans from the catalog around your goals.

/plan - create a new plan
/today - meals for your current day
/review - the whole plan
/shopping - ingredients for pending meals
/favorites - your favorite meals
/meal <id> - recipe details
/profile - show or update your profile
/cancel - abort the current wizard

Send a recipe link to import it into the catalog.`
