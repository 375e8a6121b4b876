package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/quickcart/api/internal/domain"
)

type stubUserRepo struct {
	insertFn      func(context.Context, domain.User) error
	findFn        func(context.Context, string) (domain.User, error)
	findByEmailFn func(context.Context, string) (domain.User, error)
	summariesFn   func(context.Context, []string) (map[string]domain.UserSummary, error)
}

func (s *stubUserRepo) Insert(ctx context.Context, user domain.User) error {
	if s.insertFn != nil {
		return s.insertFn(ctx, user)
	}
	return nil
}

func (s *stubUserRepo) FindByID(ctx context.Context, userID string) (domain.User, error) {
	if s.findFn != nil {
		return s.findFn(ctx, userID)
	}
	return domain.User{}, errors.New("not implemented")
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	if s.findByEmailFn != nil {
		return s.findByEmailFn(ctx, email)
	}
	return domain.User{}, errors.New("not implemented")
}

func (s *stubUserRepo) SummariesByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserSummary, error) {
	if s.summariesFn != nil {
		return s.summariesFn(ctx, userIDs)
	}
	return nil, nil
}

func newTestAccountService(t *testing.T, users *stubUserRepo) AccountService {
	t.Helper()
	svc, err := NewAccountService(AccountServiceDeps{
		Users:       users,
		BcryptCost:  bcrypt.MinCost,
		Clock:       func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) },
		IDGenerator: func() string { return "000TEST" },
	})
	if err != nil {
		t.Fatalf("new account service: %v", err)
	}
	return svc
}

func TestAccountServiceSignUp(t *testing.T) {
	ctx := context.Background()
	var inserted domain.User
	users := &stubUserRepo{
		insertFn: func(_ context.Context, user domain.User) error {
			inserted = user
			return nil
		},
	}
	svc := newTestAccountService(t, users)

	user, err := svc.SignUp(ctx, SignUpCommand{
		FullName: "Dana Smith",
		Email:    "Dana@Example.com",
		Password: "hunter22",
		Phone:    "555-0100",
	})
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if user.ID != "usr_000TEST" {
		t.Fatalf("unexpected user id %s", user.ID)
	}
	if inserted.Email != "dana@example.com" {
		t.Fatalf("expected lowercased email got %s", inserted.Email)
	}
	if inserted.PasswordHash == "hunter22" || inserted.PasswordHash == "" {
		t.Fatalf("raw password must never be stored")
	}
	if bcrypt.CompareHashAndPassword([]byte(inserted.PasswordHash), []byte("hunter22")) != nil {
		t.Fatalf("stored hash does not verify the password")
	}
}

func TestAccountServiceSignUpValidation(t *testing.T) {
	ctx := context.Background()
	svc := newTestAccountService(t, &stubUserRepo{
		insertFn: func(context.Context, domain.User) error {
			t.Fatalf("insert must not be called")
			return nil
		},
	})

	cases := []SignUpCommand{
		{Email: "a@example.com", Password: "pw"},
		{FullName: "Dana", Password: "pw"},
		{FullName: "Dana", Email: "a@example.com"},
	}
	for _, cmd := range cases {
		if _, err := svc.SignUp(ctx, cmd); !errors.Is(err, ErrAccountInvalidInput) {
			t.Fatalf("expected invalid input for %+v got %v", cmd, err)
		}
	}
}

func TestAccountServiceSignUpDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := &stubUserRepo{
		insertFn: func(context.Context, domain.User) error {
			return &repoError{msg: "email taken", conflict: true}
		},
	}
	svc := newTestAccountService(t, users)

	_, err := svc.SignUp(ctx, SignUpCommand{FullName: "Dana", Email: "dana@example.com", Password: "pw"})
	if !errors.Is(err, ErrAccountEmailTaken) {
		t.Fatalf("expected email taken got %v", err)
	}
}

func TestAccountServiceLogIn(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &stubUserRepo{
		findByEmailFn: func(_ context.Context, email string) (domain.User, error) {
			if email != "dana@example.com" {
				return domain.User{}, &repoError{msg: "missing", notFound: true}
			}
			return domain.User{ID: "usr_1", Email: email, FullName: "Dana Smith", PasswordHash: string(hash)}, nil
		},
	}
	svc := newTestAccountService(t, users)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.LogIn(ctx, LogInCommand{Email: "Dana@Example.com", Password: "hunter22"})
		if err != nil {
			t.Fatalf("log in: %v", err)
		}
		if user.ID != "usr_1" {
			t.Fatalf("unexpected user %+v", user)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.LogIn(ctx, LogInCommand{Email: "dana@example.com", Password: "wrong"}); !errors.Is(err, ErrAccountInvalidCredentials) {
			t.Fatalf("expected invalid credentials got %v", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.LogIn(ctx, LogInCommand{Email: "ghost@example.com", Password: "hunter22"}); !errors.Is(err, ErrAccountInvalidCredentials) {
			t.Fatalf("expected invalid credentials got %v", err)
		}
	})
}
