package database

import (
	"context"
	"fmt"

	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

// UserRepository handles database operations for users
type UserRepository struct{}

// NewUserRepository creates a new repository instance
func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

// Upsert registers a user on first contact. Repeated calls are no-ops.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := rebind(`
		INSERT INTO users (user_id, username, first_name)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`)
	if _, err := DB.ExecContext(ctx, query, user.ID, user.Username, user.FirstName); err != nil {
		return fmt.Errorf("failed to add user: %v", err)
	}
	return nil
}

// AllIDs returns the IDs of every registered user
func (r *UserRepository) AllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := DB.SelectContext(ctx, &ids, "SELECT user_id FROM users"); err != nil {
		return nil, fmt.Errorf("failed to get users: %v", err)
	}
	return ids, nil
}

// Count returns the total number of registered users
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := DB.GetContext(ctx, &count, "SELECT COUNT(*) FROM users"); err != nil {
		return 0, fmt.Errorf("failed to count users: %v", err)
	}
	return count, nil
}

// CountActive returns the number of users with at least one correct answer
func (r *UserRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := DB.GetContext(ctx, &count, `
		SELECT COUNT(DISTINCT user_id) FROM user_phrases WHERE correct_streak > 0
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %v", err)
	}
	return count, nil
}
