package api

import (
	"log"
	"net/http"
	"strings"

	"fitmate/internal/meal"
	"fitmate/internal/planner"
	"fitmate/internal/shopping"
	"fitmate/internal/user"
)

// planRequest is the body of POST /api/plan. Goal is accepted as a
// shorthand for a single-element Goals.
type planRequest struct {
	Goal        string   `json:"goal"`
	Goals       []string `json:"goals"`
	MealsPerDay string   `json:"meals_per_day"`
	Duration    int      `json:"duration"`
}

type mealJSON struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
	PrepTime   int      `json:"prep_time"`
	Overnight  bool     `json:"overnight"`
	Image      string   `json:"image,omitempty"`
}

type mealDetailsJSON struct {
	mealJSON
	Equipment    []string `json:"equipment"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

type entryJSON struct {
	Slot   string   `json:"slot"`
	Status string   `json:"status"`
	Meal   mealJSON `json:"meal"`
}

type dayJSON struct {
	Day      int         `json:"day"`
	Complete bool        `json:"complete"`
	Meals    []entryJSON `json:"meals"`
}

type profileJSON struct {
	ID                 int64   `json:"id"`
	Username           string  `json:"username"`
	Name               string  `json:"name"`
	Lastname           string  `json:"lastname"`
	Age                int     `json:"age,omitempty"`
	Gender             string  `json:"gender,omitempty"`
	Height             float64 `json:"height,omitempty"`
	HeightUnit         string  `json:"height_unit,omitempty"`
	Weight             float64 `json:"weight,omitempty"`
	WeightUnit         string  `json:"weight_unit,omitempty"`
	DietaryPreferences string  `json:"diet,omitempty"`
	Allergies          string  `json:"allergies,omitempty"`
}

func toMealJSON(m meal.Meal) mealJSON {
	cats := make([]string, len(m.Categories))
	for i, c := range m.Categories {
		cats[i] = string(c)
	}
	return mealJSON{
		ID:         m.ID,
		Name:       m.Name,
		Type:       m.Type,
		Categories: cats,
		PrepTime:   m.PrepTime,
		Overnight:  m.Overnight,
		Image:      m.Image,
	}
}

func toDayJSON(d planner.DayPlan) dayJSON {
	out := dayJSON{Day: d.Day, Complete: d.Complete(), Meals: make([]entryJSON, 0, len(d.Entries))}
	for _, e := range d.Entries {
		out.Meals = append(out.Meals, entryJSON{
			Slot:   string(e.Slot),
			Status: string(e.Status),
			Meal:   toMealJSON(e.Meal),
		})
	}
	return out
}

func toDaysJSON(days []planner.DayPlan) []dayJSON {
	out := make([]dayJSON, 0, len(days))
	for _, d := range days {
		out = append(out, toDayJSON(d))
	}
	return out
}

func toProfileJSON(u *user.User) profileJSON {
	p := u.Profile
	return profileJSON{
		ID:                 u.ID,
		Username:           u.Username,
		Name:               p.Name,
		Lastname:           p.Lastname,
		Age:                p.Age,
		Gender:             p.Gender,
		Height:             p.Height,
		HeightUnit:         p.HeightUnit,
		Weight:             p.Weight,
		WeightUnit:         p.WeightUnit,
		DietaryPreferences: p.DietaryPreferences,
		Allergies:          p.Allergies,
	}
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if !decodeBody(w, r, &req) {
		return
	}

	rawGoals := req.Goals
	if strings.TrimSpace(req.Goal) != "" {
		rawGoals = append([]string{req.Goal}, rawGoals...)
	}
	goals := make([]meal.Category, 0, len(rawGoals))
	for _, raw := range rawGoals {
		c, err := meal.ParseCategory(raw)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		goals = append(goals, c)
	}

	days, err := s.svc.GeneratePlan(r.Context(), userIDFrom(r.Context()), goals, planner.ParseSlotConfig(req.MealsPerDay), req.Duration)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDaysJSON(days))
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	days, err := s.svc.Plan(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDaysJSON(days))
}

func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	day, err := s.svc.Today(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, "no pending meals in your plan")
		return
	}
	writeJSON(w, http.StatusOK, toDayJSON(*day))
}

func (s *Server) handleGetDay(w http.ResponseWriter, r *http.Request) {
	n, ok := pathInt(w, r, "day")
	if !ok {
		return
	}
	day, err := s.svc.PlanByDay(r.Context(), userIDFrom(r.Context()), int(n))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if day == nil {
		writeError(w, http.StatusNotFound, "day not in plan")
		return
	}
	writeJSON(w, http.StatusOK, toDayJSON(*day))
}

func (s *Server) handleMarkMeal(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := pathSlot(w, r)
	if !ok {
		return
	}

	var status planner.Status
	switch r.PathValue("action") {
	case "done":
		status = planner.StatusDone
	case "skip":
		status = planner.StatusSkipped
	default:
		writeError(w, http.StatusNotFound, "unknown action")
		return
	}

	if err := s.svc.MarkMeal(r.Context(), userIDFrom(r.Context()), day, slot, status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (s *Server) handleSwapCandidates(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := pathSlot(w, r)
	if !ok {
		return
	}
	category, err := meal.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	candidates, err := s.svc.SwapCandidates(r.Context(), userIDFrom(r.Context()), day, slot, category)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]mealJSON, 0, len(candidates))
	for _, m := range candidates {
		out = append(out, toMealJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSwapMeal(w http.ResponseWriter, r *http.Request) {
	day, slot, ok := pathSlot(w, r)
	if !ok {
		return
	}
	var req struct {
		MealID int64 `json:"meal_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MealID < 1 {
		writeError(w, http.StatusBadRequest, "meal_id is required")
		return
	}

	if err := s.svc.SwapMeal(r.Context(), userIDFrom(r.Context()), day, slot, req.MealID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// The swap is committed, so a failed reload still answers 200.
	dp, err := s.svc.PlanByDay(r.Context(), userIDFrom(r.Context()), day)
	if err != nil {
		log.Printf("Warning: swapped day %d %s but failed to reload it [%s]: %v", day, slot, RequestID(r.Context()), err)
	}
	if err != nil || dp == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": string(planner.StatusPending)})
		return
	}
	writeJSON(w, http.StatusOK, toDayJSON(*dp))
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	meals, err := s.svc.Favorites(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]mealJSON, 0, len(meals))
	for _, m := range meals {
		out = append(out, toMealJSON(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddFavorite(w http.ResponseWriter, r *http.Request) {
	mealID, ok := pathInt(w, r, "mealID")
	if !ok {
		return
	}
	added, err := s.svc.AddFavorite(r.Context(), userIDFrom(r.Context()), mealID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]bool{"favorite": true})
}

func (s *Server) handleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	mealID, ok := pathInt(w, r, "mealID")
	if !ok {
		return
	}
	if _, err := s.svc.RemoveFavorite(r.Context(), userIDFrom(r.Context()), mealID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShopping(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.ShoppingList(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if items == nil {
		items = []shopping.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleMealDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	d, err := s.svc.MealDetails(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mealDetailsJSON{
		mealJSON:     toMealJSON(d.Meal),
		Equipment:    nonNil(d.EquipmentSet),
		Ingredients:  nonNil(d.IngredientSet),
		Instructions: nonNil(d.Steps),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.User(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(u))
}

// handleUpdateProfile applies a map of profile fields, e.g. {"height": "180cm"}.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var fields map[string]string
	if !decodeBody(w, r, &fields) {
		return
	}
	userID := userIDFrom(r.Context())
	u, err := s.svc.User(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	for k, v := range fields {
		if err := u.Profile.Set(k, v); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := s.svc.UpdateProfile(r.Context(), userID, u.Profile); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileJSON(u))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
