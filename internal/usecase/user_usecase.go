package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iho/gosplit/internal/domain"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("user with this email already exists")

// UserUseCase manages the member directory. The engine only needs ids and
// emails; names exist for display resolution by callers.
type UserUseCase struct {
	userRepo UserRepository
	idGen    IDGenerator
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(userRepo UserRepository, idGen IDGenerator) *UserUseCase {
	return &UserUseCase{
		userRepo: userRepo,
		idGen:    idGen,
	}
}

// RegisterUserInput represents input for registering a directory user.
type RegisterUserInput struct {
	Email string
	Name  string
}

// RegisterUser adds a user to the directory.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))

	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := uc.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	user := &domain.User{
		ID:        uc.idGen.Generate(),
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// LookupUser resolves a user by email.
func (uc *UserUseCase) LookupUser(ctx context.Context, email string) (*domain.User, error) {
	return uc.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

// GetUser retrieves a user by ID.
func (uc *UserUseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// ListUsersInput represents input for listing users.
type ListUsersInput struct {
	Limit  int
	Offset int
}

// ListUsers lists directory users with pagination.
func (uc *UserUseCase) ListUsers(ctx context.Context, input ListUsersInput) ([]*domain.User, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)

	return uc.userRepo.List(ctx, limit, offset)
}
