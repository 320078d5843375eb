package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fitmate/internal/telegram/sessiondb"
)

// Session types and the states they move through.
const (
	sessionPlanWizard = "plan_wizard"

	stateAwaitingGoal     = "awaiting_goal"
	stateAwaitingMeals    = "awaiting_meals"
	stateAwaitingDuration = "awaiting_duration"
)

// sessionTTL is how long an unanswered wizard stays usable.
const sessionTTL = 15 * time.Minute

// Session is an in-progress conversation with a chat.
type Session struct {
	ID        int64
	ChatID    int64
	Type      string
	State     string
	Data      WizardData
	ExpiresAt time.Time
	CreatedAt time.Time
}

// WizardData holds the answers collected so far by the /plan wizard.
type WizardData struct {
	Goal  string `json:"goal,omitempty"`
	Slots string `json:"slots,omitempty"`
}

// SessionRepository persists chat sessions.
type SessionRepository struct {
	queries *sessiondb.Queries
	db      *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{
		queries: sessiondb.New(db),
		db:      db,
	}
}

// Start replaces any session of the chat with a fresh one.
func (sr *SessionRepository) Start(ctx context.Context, chatID int64, sessionType, state string, data WizardData) (*Session, error) {
	if err := sr.queries.DeleteUserSessions(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to clear sessions: %w", err)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(sessionTTL)
	id, err := sr.queries.CreateSession(ctx, sessiondb.CreateSessionParams{
		UserID:      chatID,
		SessionType: sessionType,
		State:       state,
		ContextData: string(jsonData),
		ExpiresAt:   expiresAt.Unix(),
		CreatedAt:   now.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &Session{
		ID:        id,
		ChatID:    chatID,
		Type:      sessionType,
		State:     state,
		Data:      data,
		ExpiresAt: time.Unix(expiresAt.Unix(), 0),
		CreatedAt: time.Unix(now.Unix(), 0),
	}, nil
}

// GetActive returns the chat's unexpired session, or nil.
func (sr *SessionRepository) GetActive(ctx context.Context, chatID int64, now time.Time) (*Session, error) {
	row, err := sr.queries.GetActiveSession(ctx, sessiondb.GetActiveSessionParams{
		UserID:    chatID,
		ExpiresAt: now.Unix(),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var data WizardData
	if err := json.Unmarshal([]byte(row.ContextData), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session %d: %w", row.ID, err)
	}

	return &Session{
		ID:        row.ID,
		ChatID:    row.UserID,
		Type:      row.SessionType,
		State:     row.State,
		Data:      data,
		ExpiresAt: time.Unix(row.ExpiresAt, 0),
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}, nil
}

// Advance stores the new state and data and extends the expiry.
func (sr *SessionRepository) Advance(ctx context.Context, s *Session, state string, data WizardData) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(sessionTTL)
	if err := sr.queries.UpdateSession(ctx, sessiondb.UpdateSessionParams{
		State:       state,
		ContextData: string(jsonData),
		ExpiresAt:   expiresAt.Unix(),
		ID:          s.ID,
	}); err != nil {
		return fmt.Errorf("failed to update session %d: %w", s.ID, err)
	}

	s.State = state
	s.Data = data
	s.ExpiresAt = time.Unix(expiresAt.Unix(), 0)
	return nil
}

// Delete removes a session
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	return sr.queries.DeleteSession(ctx, sessionID)
}

// Clear removes every session of the chat.
func (sr *SessionRepository) Clear(ctx context.Context, chatID int64) error {
	return sr.queries.DeleteUserSessions(ctx, chatID)
}

// CleanupExpired removes expired sessions and reports how many were deleted.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) (int64, error) {
	return sr.queries.CleanupExpiredSessions(ctx, time.Now().Unix())
}
