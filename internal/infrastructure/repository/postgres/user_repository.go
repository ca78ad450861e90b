package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/antonvlasov/documind/internal/core/domain"
)

const uniqueViolationCode = "23505"

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a credential. The primary key makes the race between two
// simultaneous registrations of the same username lose deterministically:
// at most one insert succeeds, the other sees ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, cred domain.UserCredential) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash)
VALUES ($1, $2)
`, cred.Username, cred.PasswordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.WrapError(domain.ErrAlreadyExists, "insert credential", err)
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.UserCredential, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT username, password_hash
FROM users
WHERE username = $1
`, username)

	var cred domain.UserCredential
	if err := row.Scan(&cred.Username, &cred.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.UserCredential{}, domain.WrapError(domain.ErrNotFound, "fetch credential", err)
		}
		return domain.UserCredential{}, fmt.Errorf("scan credential: %w", err)
	}
	return cred, nil
}
