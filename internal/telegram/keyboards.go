package telegram

import (
	"fmt"
	"strconv"
	"strings"

	"fitmate/internal/meal"
	"fitmate/internal/planner"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram rejects callback data longer than 64 bytes.
const maxCallbackLen = 64

// Callback actions.
const (
	actGoal     = "goal"
	actMeals    = "meals"
	actDays     = "days"
	actDone     = "done"
	actSkip     = "skip"
	actFav      = "fav"
	actUnfav    = "unfav"
	actSwap     = "swap"
	actSwapCat  = "swc"
	actSwapTo   = "swt"
	actShowDay  = "day"
	maxSwapRows = 8
)

var durationChoices = []int{3, 7, 14, 30}

// callbackData encodes an action and its arguments as "action|arg|...".
func callbackData(action string, args ...string) string {
	data := strings.Join(append([]string{action}, args...), "|")
	if len(data) > maxCallbackLen {
		data = data[:maxCallbackLen]
	}
	return data
}

func parseCallback(data string) (string, []string) {
	parts := strings.Split(data, "|")
	return parts[0], parts[1:]
}

func goalKeyboard() tgbotapi.InlineKeyboardMarkup {
	return categoryGrid(func(c meal.Category) string {
		return callbackData(actGoal, string(c))
	}, nil)
}

// categoryGrid lays categories out two per row, with an optional trailing row.
func categoryGrid(data func(meal.Category) string, extra []tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range meal.Categories() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Label(), data(c)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	if len(extra) > 0 {
		rows = append(rows, extra)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func mealsKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, c := range planner.SlotConfigs() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(string(c), callbackData(actMeals, strconv.Itoa(i))),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func durationKeyboard(maxDays int) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	for _, n := range durationChoices {
		if n > maxDays {
			break
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d days", n), callbackData(actDays, strconv.Itoa(n))))
	}
	if len(row) == 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d days", maxDays), callbackData(actDays, strconv.Itoa(maxDays))))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// dayKeyboard has one row of actions per planned meal.
func dayKeyboard(dp planner.DayPlan) tgbotapi.InlineKeyboardMarkup {
	day := strconv.Itoa(dp.Day)
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, e := range dp.Entries {
		slot := string(e.Slot)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+slot, callbackData(actDone, day, slot)),
			tgbotapi.NewInlineKeyboardButtonData("⏭️ Skip", callbackData(actSkip, day, slot)),
			tgbotapi.NewInlineKeyboardButtonData("⭐", callbackData(actFav, strconv.FormatInt(e.MealID, 10))),
			tgbotapi.NewInlineKeyboardButtonData("🔄", callbackData(actSwap, day, slot)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func backButton(day int) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("« Back", callbackData(actShowDay, strconv.Itoa(day))),
	)
}

func swapCategoryKeyboard(day int, slot planner.SlotName) tgbotapi.InlineKeyboardMarkup {
	d := strconv.Itoa(day)
	return categoryGrid(func(c meal.Category) string {
		return callbackData(actSwapCat, d, string(slot), string(c))
	}, backButton(day))
}

func swapCandidatesKeyboard(day int, slot planner.SlotName, candidates []meal.Meal) tgbotapi.InlineKeyboardMarkup {
	d := strconv.Itoa(day)
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, m := range candidates {
		if i == maxSwapRows {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(truncate(m.Name, 40), callbackData(actSwapTo, d, string(slot), strconv.FormatInt(m.ID, 10))),
		))
	}
	rows = append(rows, backButton(day))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func favoritesKeyboard(meals []meal.Meal) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range meals {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖ "+truncate(m.Name, 40), callbackData(actUnfav, strconv.FormatInt(m.ID, 10))),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
