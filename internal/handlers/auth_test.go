package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/quickcart/api/internal/services"
)

type stubAccountService struct {
	signUpFn func(context.Context, services.SignUpCommand) (services.User, error)
	logInFn  func(context.Context, services.LogInCommand) (services.User, error)
}

func (s *stubAccountService) SignUp(ctx context.Context, cmd services.SignUpCommand) (services.User, error) {
	if s.signUpFn != nil {
		return s.signUpFn(ctx, cmd)
	}
	return services.User{}, errors.New("not implemented")
}

func (s *stubAccountService) LogIn(ctx context.Context, cmd services.LogInCommand) (services.User, error) {
	if s.logInFn != nil {
		return s.logInFn(ctx, cmd)
	}
	return services.User{}, errors.New("not implemented")
}

func newAuthRouter(service services.AccountService) chi.Router {
	r := chi.NewRouter()
	NewAuthHandlers(service).Routes(r)
	return r
}

func TestAuthHandlersSignUp(t *testing.T) {
	service := &stubAccountService{
		signUpFn: func(_ context.Context, cmd services.SignUpCommand) (services.User, error) {
			if cmd.Password != "hunter22" {
				t.Fatalf("unexpected password %q", cmd.Password)
			}
			return services.User{ID: "usr_1", Email: cmd.Email}, nil
		},
	}

	body := `{"fullName":"Dana Smith","email":"dana@example.com","password":"hunter22","phone":"555-0100"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newAuthRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeEnvelope(t, rec)
	if payload["message"] != "Account created" {
		t.Fatalf("unexpected message %v", payload["message"])
	}
	if _, leaked := payload["password"]; leaked {
		t.Fatalf("password must not appear in the response")
	}
}

func TestAuthHandlersSignUpDuplicateEmail(t *testing.T) {
	service := &stubAccountService{
		signUpFn: func(context.Context, services.SignUpCommand) (services.User, error) {
			return services.User{}, fmt.Errorf("%w: dana@example.com", services.ErrAccountEmailTaken)
		},
	}

	body := `{"fullName":"Dana","email":"dana@example.com","password":"pw"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newAuthRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["message"] != "Email already registered" {
		t.Fatalf("unexpected message %v", payload["message"])
	}
}

func TestAuthHandlersLogIn(t *testing.T) {
	service := &stubAccountService{
		logInFn: func(_ context.Context, cmd services.LogInCommand) (services.User, error) {
			return services.User{ID: "usr_1", FullName: "Dana Smith", Email: cmd.Email, Phone: "555-0100"}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"dana@example.com","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	newAuthRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["userId"] != "usr_1" || payload["fullName"] != "Dana Smith" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestAuthHandlersLogInBadCredentials(t *testing.T) {
	service := &stubAccountService{
		logInFn: func(context.Context, services.LogInCommand) (services.User, error) {
			return services.User{}, services.ErrAccountInvalidCredentials
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"dana@example.com","password":"wrong"}`))
	rec := httptest.NewRecorder()
	newAuthRouter(service).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	payload := decodeEnvelope(t, rec)
	if payload["message"] != "Invalid credentials" {
		t.Fatalf("unexpected message %v", payload["message"])
	}
}
