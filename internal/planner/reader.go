package planner

import (
	"context"
	"fmt"
	"sort"
)

// Reader projects stored plans for display.
type Reader struct {
	store PlanLister
}

// NewReader creates a new Reader.
func NewReader(store PlanLister) *Reader {
	return &Reader{store: store}
}

// ListPlan returns the user's plan ordered by day, then Breakfast, Lunch,
// Dinner and anything else.
func (r *Reader) ListPlan(ctx context.Context, userID int64) ([]Entry, error) {
	entries, err := r.store.ListPlanEntries(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan for user %d: %w", userID, err)
	}
	SortEntries(entries)
	return entries, nil
}

// Days returns the user's plan grouped by day.
func (r *Reader) Days(ctx context.Context, userID int64) ([]DayPlan, error) {
	entries, err := r.ListPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	return GroupByDay(entries), nil
}

// Day returns one day of the user's plan, or nil if the plan has no such day.
func (r *Reader) Day(ctx context.Context, userID int64, day int) (*DayPlan, error) {
	days, err := r.Days(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range days {
		if days[i].Day == day {
			return &days[i], nil
		}
	}
	return nil, nil
}

// EarliestIncompleteDay returns the first day with a meal that is neither
// done nor skipped. It returns nil when the plan is empty or fully resolved.
func (r *Reader) EarliestIncompleteDay(ctx context.Context, userID int64) (*DayPlan, error) {
	days, err := r.Days(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range days {
		if !days[i].Complete() {
			return &days[i], nil
		}
	}
	return nil, nil
}

// SortEntries orders entries by day and slot rank, keeping ties stable.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day < entries[j].Day
		}
		return slotRank(entries[i].Slot) < slotRank(entries[j].Slot)
	})
}

// GroupByDay splits sorted entries into consecutive days.
func GroupByDay(entries []Entry) []DayPlan {
	var days []DayPlan
	for _, e := range entries {
		if n := len(days); n > 0 && days[n-1].Day == e.Day {
			days[n-1].Entries = append(days[n-1].Entries, e)
			continue
		}
		days = append(days, DayPlan{Day: e.Day, Entries: []Entry{e}})
	}
	return days
}
