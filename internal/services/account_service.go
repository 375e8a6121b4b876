package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickcart/api/internal/repositories"
)

const userIDPrefix = "usr_"

var (
	// ErrAccountInvalidInput signals the caller provided invalid data.
	ErrAccountInvalidInput = errors.New("account: invalid input")
	// ErrAccountEmailTaken indicates the email is already registered.
	ErrAccountEmailTaken = errors.New("account: email already registered")
	// ErrAccountInvalidCredentials covers both unknown email and wrong password
	// so the login path does not leak account existence.
	ErrAccountInvalidCredentials = errors.New("account: invalid credentials")
)

// AccountServiceDeps bundles collaborators required to construct the account service.
type AccountServiceDeps struct {
	Users       repositories.UserRepository
	BcryptCost  int
	Clock       func() time.Time
	IDGenerator func() string
}

type accountService struct {
	users      repositories.UserRepository
	bcryptCost int
	clock      func() time.Time
	newID      func() string
}

// NewAccountService wires dependencies into a concrete AccountService implementation.
func NewAccountService(deps AccountServiceDeps) (AccountService, error) {
	if deps.Users == nil {
		return nil, errors.New("account service: user repository is required")
	}

	cost := deps.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string {
			return ulid.Make().String()
		}
	}

	return &accountService{
		users:      deps.Users,
		bcryptCost: cost,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: idGen,
	}, nil
}

func (s *accountService) SignUp(ctx context.Context, cmd SignUpCommand) (User, error) {
	fullName := strings.TrimSpace(cmd.FullName)
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if fullName == "" || email == "" || cmd.Password == "" {
		return User{}, fmt.Errorf("%w: fullName, email, and password are required", ErrAccountInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.bcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("account: hash password: %w", err)
	}

	user := User{
		ID:           userIDPrefix + s.newID(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(cmd.Phone),
		CreatedAt:    s.clock(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsConflict() {
			return User{}, fmt.Errorf("%w: %s", ErrAccountEmailTaken, email)
		}
		return User{}, err
	}
	return user, nil
}

func (s *accountService) LogIn(ctx context.Context, cmd LogInCommand) (User, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || cmd.Password == "" {
		return User{}, fmt.Errorf("%w: email and password are required", ErrAccountInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return User{}, ErrAccountInvalidCredentials
		}
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)) != nil {
		return User{}, ErrAccountInvalidCredentials
	}
	return user, nil
}
