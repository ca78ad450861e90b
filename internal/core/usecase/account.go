package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/antonvlasov/documind/internal/core/domain"
	"github.com/antonvlasov/documind/internal/core/ports"
)

// AccountUseCase handles registration and login. Passwords are stored as
// bcrypt hashes; a wrong password and an unknown username are both
// reported as ErrAuthRejected so login cannot be used to enumerate users.
type AccountUseCase struct {
	users ports.UserRepository
}

func NewAccountUseCase(users ports.UserRepository) *AccountUseCase {
	return &AccountUseCase{users: users}
}

func (uc *AccountUseCase) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.WrapError(domain.ErrInvalidInput, "register", errors.New("username and password are required"))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	cred := domain.UserCredential{
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := uc.users.Create(ctx, cred); err != nil {
		if domain.IsKind(err, domain.ErrAlreadyExists) {
			return err
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

func (uc *AccountUseCase) Authenticate(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.ErrAuthRejected
	}

	cred, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return domain.ErrAuthRejected
		}
		return fmt.Errorf("fetch credential: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.ErrAuthRejected
		}
		return fmt.Errorf("compare password hash: %w", err)
	}
	return nil
}
