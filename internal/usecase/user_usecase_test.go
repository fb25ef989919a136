package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/iho/gosplit/internal/domain"
	"github.com/iho/gosplit/internal/usecase"
	"github.com/iho/gosplit/internal/usecase/mocks"
)

func newUserUC() (*usecase.UserUseCase, *mocks.MockUserRepository) {
	repo := mocks.NewMockUserRepository()

	return usecase.NewUserUseCase(repo, mocks.NewMockIDGenerator()), repo
}

func TestUserUseCase_RegisterUser(t *testing.T) {
	uc, _ := newUserUC()

	user, err := uc.RegisterUser(context.Background(), usecase.RegisterUserInput{
		Email: "  Alice@Example.COM ",
		Name:  "Alice",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected generated id")
	}

	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestUserUseCase_RegisterUser_DuplicateEmail(t *testing.T) {
	uc, _ := newUserUC()

	input := usecase.RegisterUserInput{Email: "alice@example.com", Name: "Alice"}

	if _, err := uc.RegisterUser(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.RegisterUser(context.Background(), input)
	if !errors.Is(err, usecase.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserUseCase_RegisterUser_InvalidEmail(t *testing.T) {
	uc, _ := newUserUC()

	_, err := uc.RegisterUser(context.Background(), usecase.RegisterUserInput{Email: "not-an-email"})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestUserUseCase_LookupUser(t *testing.T) {
	uc, _ := newUserUC()

	created, err := uc.RegisterUser(context.Background(), usecase.RegisterUserInput{
		Email: "bob@example.com",
		Name:  "Bob",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := uc.LookupUser(context.Background(), "BOB@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if found.ID != created.ID {
		t.Fatalf("expected %s, got %s", created.ID, found.ID)
	}
}

func TestUserUseCase_LookupUser_NotFound(t *testing.T) {
	uc, _ := newUserUC()

	_, err := uc.LookupUser(context.Background(), "ghost@example.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserUseCase_ListUsers(t *testing.T) {
	uc, _ := newUserUC()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		if _, err := uc.RegisterUser(context.Background(), usecase.RegisterUserInput{Email: email}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	users, err := uc.ListUsers(context.Background(), usecase.ListUsersInput{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
}
