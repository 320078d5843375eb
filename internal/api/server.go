package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"fitmate/internal/app"
	"fitmate/internal/meal"
	"fitmate/internal/planner"
	"fitmate/internal/shopping"
	"fitmate/internal/user"
)

// maxRequestBodySize limits request bodies.
const maxRequestBodySize = 1 << 20

// Service is the part of the application the API exposes.
type Service interface {
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
}

// Server serves the JSON API.
type Server struct {
	svc        Service
	signingKey []byte
}

// NewServer creates a new Server.
func NewServer(svc Service, signingKey []byte) *Server {
	return &Server{svc: svc, signingKey: signingKey}
}

// RegisterHTTPHandlers registers the API routes on mux:
//
//	POST   /api/plan
//	GET    /api/plan
//	GET    /api/plan/today
//	GET    /api/plan/{day}
//	GET    /api/plan/{day}/{slot}/candidates?category=
//	POST   /api/plan/{day}/{slot}/{action}    action is done or skip
//	PUT    /api/plan/{day}/{slot}
//	GET    /api/favorites
//	POST   /api/favorites/{mealID}
//	DELETE /api/favorites/{mealID}
//	GET    /api/shopping
//	GET    /api/meals/{id}
//	GET    /api/profile
//	PATCH  /api/profile
func (s *Server) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/plan", s.requireUser(s.handleGeneratePlan))
	mux.HandleFunc("GET /api/plan", s.requireUser(s.handleGetPlan))
	mux.HandleFunc("GET /api/plan/today", s.requireUser(s.handleToday))
	mux.HandleFunc("GET /api/plan/{day}", s.requireUser(s.handleGetDay))
	mux.HandleFunc("GET /api/plan/{day}/{slot}/candidates", s.requireUser(s.handleSwapCandidates))
	mux.HandleFunc("POST /api/plan/{day}/{slot}/{action}", s.requireUser(s.handleMarkMeal))
	mux.HandleFunc("PUT /api/plan/{day}/{slot}", s.requireUser(s.handleSwapMeal))
	mux.HandleFunc("GET /api/favorites", s.requireUser(s.handleListFavorites))
	mux.HandleFunc("POST /api/favorites/{mealID}", s.requireUser(s.handleAddFavorite))
	mux.HandleFunc("DELETE /api/favorites/{mealID}", s.requireUser(s.handleRemoveFavorite))
	mux.HandleFunc("GET /api/shopping", s.requireUser(s.handleShopping))
	mux.HandleFunc("GET /api/meals/{id}", s.requireUser(s.handleMealDetails))
	mux.HandleFunc("GET /api/profile", s.requireUser(s.handleGetProfile))
	mux.HandleFunc("PATCH /api/profile", s.requireUser(s.handleUpdateProfile))
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, RequestID: w.Header().Get(requestIDHeader)})
}

// writeServiceError maps domain errors onto status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, planner.ErrInsufficientMeals):
		writeError(w, http.StatusUnprocessableEntity, "Not enough meals in the catalog to satisfy your plan.")
	case errors.Is(err, planner.ErrNoGoals),
		errors.Is(err, planner.ErrInvalidDuration),
		errors.Is(err, planner.ErrInvalidStatus),
		errors.Is(err, meal.ErrUnknownCategory),
		errors.Is(err, user.ErrUnknownField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrIncompatibleMeal),
		errors.Is(err, app.ErrMealAlreadyPlanned):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrAssignmentNotFound),
		errors.Is(err, app.ErrMealNotFound),
		errors.Is(err, app.ErrUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("Request %s failed: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || v < 1 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return v, true
}

func pathSlot(w http.ResponseWriter, r *http.Request) (int, planner.SlotName, bool) {
	day, ok := pathInt(w, r, "day")
	if !ok {
		return 0, "", false
	}
	slot, err := planner.ParseSlotName(r.PathValue("slot"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid slot")
		return 0, "", false
	}
	return int(day), slot, true
}
