package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"account_service/internal/db"
)

// ErrUserNotFound is returned by lookups that match no row.
var ErrUserNotFound = errors.New("user not found")

// CreateUserCommand carries a fully prepared row: the password is already
// hashed and both timestamps are set by the caller.
type CreateUserCommand struct {
	ID         uuid.UUID
	Email      string
	Username   string
	Password   string
	CreateTime time.Time
	UpdateTime time.Time
}

// CreateUserResult reports whether the insert hit a uniqueness conflict.
// On conflict User holds the pre-existing row's public fields; otherwise
// it echoes the created row. The password hash is never included.
type CreateUserResult struct {
	Conflict bool
	User     User
}

type UserRepository struct {
	sessions *db.Manager
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, cmd CreateUserCommand) (CreateUserResult, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

func NewUserRepository(sessions *db.Manager) UserRepositoryInterface {
	return &UserRepository{sessions: sessions}
}

var userColumns = []string{"id", "email", "username", "password", "create_time", "update_time"}

// Create inserts the user unless a uniqueness constraint is violated. The
// insert attempt and the conflict re-select run inside one repeatable-read
// transaction so both observe the same snapshot; without that, a writer
// committing between the two statements could be visible to one but not
// the other and the conflict would be misclassified.
func (r *UserRepository) Create(ctx context.Context, cmd CreateUserCommand) (CreateUserResult, error) {
	var result CreateUserResult

	err := r.sessions.Run(ctx, db.RepeatableRead, func(ctx context.Context, s *db.Session) error {
		affected, err := s.InsertIgnore(ctx, "users", userColumns, nil,
			cmd.ID, cmd.Email, cmd.Username, cmd.Password, cmd.CreateTime, cmd.UpdateTime)
		if err != nil {
			return err
		}

		if affected == 1 {
			result = CreateUserResult{
				Conflict: false,
				User: User{
					ID:         cmd.ID,
					Email:      cmd.Email,
					Username:   cmd.Username,
					CreateTime: cmd.CreateTime,
					UpdateTime: cmd.UpdateTime,
				},
			}
			return nil
		}

		// Zero affected rows means some existing row owns our id or email.
		// Re-select it within the same snapshot to let the service decide
		// which constraint was hit.
		row := s.QueryRow(ctx,
			`SELECT id, email, username, create_time, update_time FROM users WHERE id = $1 OR email = $2`,
			cmd.ID, cmd.Email)

		var existing User
		err = row.Scan(&existing.ID, &existing.Email, &existing.Username,
			&existing.CreateTime, &existing.UpdateTime)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// The insert reported a conflict but no row matches either
				// key. Isolation anomaly or concurrent delete; surface it.
				return fmt.Errorf("conflict reported for user %s but no conflicting row found", cmd.ID)
			}
			return fmt.Errorf("select conflicting user: %w", err)
		}

		result = CreateUserResult{Conflict: true, User: existing}
		return nil
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", cmd.ID).Error("Failed to create user")
		return CreateUserResult{}, err
	}

	if result.Conflict {
		logrus.WithFields(logrus.Fields{
			"user_id": cmd.ID,
			"email":   cmd.Email,
		}).Info("User creation hit an existing row")
	} else {
		logrus.WithFields(logrus.Fields{
			"user_id":  cmd.ID,
			"username": cmd.Username,
		}).Info("User created successfully")
	}

	return result, nil
}

// GetByEmail retrieves a user by email, including the stored password hash.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, email, username, password, create_time, update_time
		FROM users
		WHERE email = $1
	`

	u := &User{}
	err := r.sessions.DB().QueryRowContext(ctx, query, email).Scan(
		&u.ID, &u.Email, &u.Username, &u.Password, &u.CreateTime, &u.UpdateTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logrus.WithError(err).Error("Failed to get user by email")
		return nil, fmt.Errorf("select user by email: %w", err)
	}

	return u, nil
}
