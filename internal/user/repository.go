package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitmate/internal/user/userdb"
)

// Repository is a database-backed repository for users.
type Repository struct {
	queries *userdb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: userdb.New(d),
		db:      d,
	}
}

// Create registers a user without a Telegram account and returns its ID.
func (r *Repository) Create(ctx context.Context, username, name string) (int64, error) {
	id, err := r.queries.CreateUser(ctx, userdb.CreateUserParams{
		Username:  username,
		Name:      name,
		CreatedAt: time.Now().Unix(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create user %q: %w", username, err)
	}
	return id, nil
}

// EnsureTelegramUser returns the user linked to telegramID, creating it on first contact.
func (r *Repository) EnsureTelegramUser(ctx context.Context, telegramID int64, username, firstName string) (*User, error) {
	tgID := sql.NullInt64{Int64: telegramID, Valid: true}

	row, err := r.queries.GetUserByTelegramID(ctx, tgID)
	if err == nil {
		u := fromRow(row)
		return &u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get telegram user %d: %w", telegramID, err)
	}

	id, err := r.queries.CreateUser(ctx, userdb.CreateUserParams{
		TelegramID: tgID,
		Username:   username,
		Name:       firstName,
		CreatedAt:  time.Now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram user %d: %w", telegramID, err)
	}
	return r.Get(ctx, id)
}

// Get retrieves a user by ID. A missing user is (nil, nil).
func (r *Repository) Get(ctx context.Context, id int64) (*User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	u := fromRow(row)
	return &u, nil
}

// UpdateProfile overwrites the personal attributes of a user.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, p Profile) error {
	n, err := r.queries.UpdateProfile(ctx, userdb.UpdateProfileParams{
		Name:               p.Name,
		Lastname:           p.Lastname,
		Age:                int64(p.Age),
		Gender:             p.Gender,
		Height:             p.Height,
		HeightUnit:         p.HeightUnit,
		Weight:             p.Weight,
		WeightUnit:         p.WeightUnit,
		DietaryPreferences: p.DietaryPreferences,
		Allergies:          p.Allergies,
		ID:                 id,
	})
	if err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("user %d not found", id)
	}
	return nil
}

func fromRow(row userdb.User) User {
	return User{
		ID:         row.ID,
		TelegramID: row.TelegramID.Int64,
		Username:   row.Username,
		Profile: Profile{
			Name:               row.Name,
			Lastname:           row.Lastname,
			Age:                int(row.Age),
			Gender:             row.Gender,
			Height:             row.Height,
			HeightUnit:         row.HeightUnit,
			Weight:             row.Weight,
			WeightUnit:         row.WeightUnit,
			DietaryPreferences: row.DietaryPreferences,
			Allergies:          row.Allergies,
		},
		CreatedAt: time.Unix(row.CreatedAt, 0),
	}
}
