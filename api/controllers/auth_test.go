package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/natebrowery/stockroom-backend/internal/auth"
	pkgAuth "github.com/natebrowery/stockroom-backend/pkg/auth"
	"github.com/natebrowery/stockroom-backend/pkg/auth/session"
	"github.com/natebrowery/stockroom-backend/pkg/config"
	"github.com/natebrowery/stockroom-backend/pkg/enums"
	pkgerrors "github.com/natebrowery/stockroom-backend/pkg/errors"
)

type stubAuthService struct {
	login        func(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error)
	register     func(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error)
	logout       func(ctx context.Context, accessID string) error
	requestReset func(ctx context.Context, email string) (string, error)
}

func (s *stubAuthService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
	if s.register == nil {
		panic("unexpected Register")
	}
	return s.register(ctx, req)
}

func (s *stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
	if s.login == nil {
		panic("unexpected Login")
	}
	return s.login(ctx, req)
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	if s.logout == nil {
		panic("unexpected Logout")
	}
	return s.logout(ctx, accessID)
}

func (s *stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*authsvc.AuthResponse, error) {
	panic("unexpected Refresh")
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if s.requestReset == nil {
		panic("unexpected RequestPasswordReset")
	}
	return s.requestReset(ctx, email)
}

func (s *stubAuthService) ConfirmPasswordReset(ctx context.Context, req authsvc.ResetConfirmRequest) error {
	panic("unexpected ConfirmPasswordReset")
}

func authTestConfigs() (config.SessionConfig, config.JWTConfig) {
	sessionCfg := config.SessionConfig{CookieName: "stockroom_session"}
	jwtCfg := config.JWTConfig{
		Secret:            "test-secret-test-secret-test-1234",
		Issuer:            "stockroom-test",
		ExpirationMinutes: 15,
		SessionTTLMinutes: 60,
	}
	return sessionCfg, jwtCfg
}

func sessionCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestAuthLogin(t *testing.T) {
	logg := testLogger()
	sessionCfg, jwtCfg := authTestConfigs()

	t.Run("sets session cookie", func(t *testing.T) {
		stub := &stubAuthService{
			login: func(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
				if req.Email != "jo@example.com" {
					t.Fatalf("unexpected email %s", req.Email)
				}
				return &authsvc.AuthResponse{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
			},
		}

		body := `{"email":"jo@example.com","password":"hunter2hunter2"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		AuthLogin(stub, sessionCfg, jwtCfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		cookie := sessionCookie(rec, sessionCfg.CookieName)
		if cookie == nil {
			t.Fatalf("expected session cookie")
		}
		if cookie.Value != "access-token" || !cookie.HttpOnly {
			t.Fatalf("unexpected cookie %+v", cookie)
		}
		if cookie.MaxAge != int(jwtCfg.SessionTTL().Seconds()) {
			t.Fatalf("expected cookie max-age %d, got %d", int(jwtCfg.SessionTTL().Seconds()), cookie.MaxAge)
		}
	})

	t.Run("bad credentials pass through", func(t *testing.T) {
		stub := &stubAuthService{
			login: func(ctx context.Context, req authsvc.LoginRequest) (*authsvc.AuthResponse, error) {
				return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
			},
		}

		body := `{"email":"jo@example.com","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		rec := httptest.NewRecorder()
		AuthLogin(stub, sessionCfg, jwtCfg, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if sessionCookie(rec, sessionCfg.CookieName) != nil {
			t.Fatalf("no cookie expected on failed login")
		}
	})
}

func TestAuthRegister(t *testing.T) {
	logg := testLogger()
	sessionCfg, jwtCfg := authTestConfigs()

	stub := &stubAuthService{
		register: func(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.AuthResponse, error) {
			return &authsvc.AuthResponse{AccessToken: "access-token", RefreshToken: "refresh-token"}, nil
		},
	}

	body := `{"email":"jo@example.com","password":"hunter2hunter2","first_name":"Jo","last_name":"Smith"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	AuthRegister(stub, sessionCfg, jwtCfg, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if sessionCookie(rec, sessionCfg.CookieName) == nil {
		t.Fatalf("expected session cookie on register")
	}
}

func TestAuthLogout(t *testing.T) {
	logg := testLogger()
	sessionCfg, jwtCfg := authTestConfigs()
	accessID := session.NewAccessID()

	token, err := pkgAuth.MintAccessToken(jwtCfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.UserRoleCustomer,
		JTI:    accessID,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var revoked string
	stub := &stubAuthService{
		logout: func(ctx context.Context, id string) error {
			revoked = id
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: sessionCfg.CookieName, Value: token})

	rec := httptest.NewRecorder()
	AuthLogout(stub, sessionCfg, jwtCfg, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if revoked != accessID {
		t.Fatalf("expected revoke of %s, got %s", accessID, revoked)
	}

	cookie := sessionCookie(rec, sessionCfg.CookieName)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got %+v", cookie)
	}
}

func TestAuthRequestPasswordReset(t *testing.T) {
	logg := testLogger()

	stub := &stubAuthService{
		requestReset: func(ctx context.Context, email string) (string, error) {
			return "opaque-token", nil
		},
	}

	body := `{"email":"jo@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	AuthRequestPasswordReset(stub, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "opaque-token") {
		t.Fatalf("reset token must not appear in the response body")
	}
}
