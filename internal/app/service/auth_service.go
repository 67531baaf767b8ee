package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mrops-br/shopverse-api/internal/app/async"
	"github.com/mrops-br/shopverse-api/internal/app/dto"
	"github.com/mrops-br/shopverse-api/internal/app/session"
	"github.com/mrops-br/shopverse-api/internal/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// AuthService handles the demo sign-in flow. Credentials are never checked
// against a user store; the signed-in user lives in the session's user slot.
type AuthService struct {
	sessions   *session.Registry
	delay      time.Duration
	tracer     trace.Tracer
	logger     *slog.Logger
	operations metric.Int64Counter
}

// NewAuthService creates a new auth service
func NewAuthService(
	sessions *session.Registry,
	delay time.Duration,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		sessions:   sessions,
		delay:      delay,
		tracer:     tracer,
		logger:     logger,
		operations: operationCounter(meter, "auth"),
	}
}

// Login signs the session in with a name derived from the email
func (s *AuthService) Login(ctx context.Context, sessionID string, req dto.LoginRequest) (*dto.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := domain.NewLoginUser(req.Email, req.Password)
	if err != nil {
		failSpan(span, err, "Invalid credentials")
		countOperation(ctx, s.operations, "login", resultInvalid)
		return nil, err
	}
	return s.signIn(ctx, span, sessionID, "login", user)
}

// Signup signs the session in as a newly named user
func (s *AuthService) Signup(ctx context.Context, sessionID string, req dto.SignupRequest) (*dto.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	user, err := domain.NewSignupUser(req.Name, req.Email, req.Password)
	if err != nil {
		failSpan(span, err, "Invalid signup")
		countOperation(ctx, s.operations, "signup", resultInvalid)
		return nil, err
	}
	return s.signIn(ctx, span, sessionID, "signup", user)
}

// Logout signs the session out. Signing out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	if sessionID == "" {
		failSpan(span, session.ErrMissingSessionID, "Missing session")
		countOperation(ctx, s.operations, "logout", resultInvalid)
		return session.ErrMissingSessionID
	}

	if err := s.sessions.Snapshots().Delete(ctx, s.sessions.Key(sessionID, session.SlotUser)); err != nil {
		failSpan(span, err, "Failed to clear user")
		countOperation(ctx, s.operations, "logout", resultFailure)
		return fmt.Errorf("clear user: %w", err)
	}

	s.logger.InfoContext(ctx, "User logged out", slog.String("session_id", sessionID))
	countOperation(ctx, s.operations, "logout", resultSuccess)
	span.SetStatus(codes.Ok, "Logged out")
	return nil
}

// CurrentUser returns the signed-in user or ErrNotAuthenticated
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*dto.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.CurrentUser")
	defer span.End()

	span.SetAttributes(attribute.String("session.id", sessionID))

	if sessionID == "" {
		countOperation(ctx, s.operations, "me", resultNotFound)
		return nil, domain.ErrNotAuthenticated
	}

	data, err := s.sessions.Snapshots().Get(ctx, s.sessions.Key(sessionID, session.SlotUser))
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		countOperation(ctx, s.operations, "me", resultNotFound)
		return nil, domain.ErrNotAuthenticated
	}
	if err != nil {
		failSpan(span, err, "Failed to read user")
		countOperation(ctx, s.operations, "me", resultFailure)
		return nil, err
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil || user.Validate() != nil {
		s.logger.WarnContext(ctx, "Discarding unreadable user record", slog.String("session_id", sessionID))
		countOperation(ctx, s.operations, "me", resultNotFound)
		return nil, domain.ErrNotAuthenticated
	}

	countOperation(ctx, s.operations, "me", resultSuccess)
	span.SetStatus(codes.Ok, "User retrieved")
	return dto.ToUserResponse(&user), nil
}

// signIn stores user after the simulated network delay. A caller that goes
// away during the delay leaves the session signed out.
func (s *AuthService) signIn(ctx context.Context, span trace.Span, sessionID, operation string, user *domain.User) (*dto.UserResponse, error) {
	span.SetAttributes(attribute.String("session.id", sessionID))

	if sessionID == "" {
		failSpan(span, session.ErrMissingSessionID, "Missing session")
		countOperation(ctx, s.operations, operation, resultInvalid)
		return nil, session.ErrMissingSessionID
	}

	data, err := json.Marshal(user)
	if err != nil {
		failSpan(span, err, "Failed to encode user")
		countOperation(ctx, s.operations, operation, resultFailure)
		return nil, err
	}

	task := async.Run(ctx, s.delay, func(ctx context.Context, alive func() bool) error {
		if !alive() {
			return ctx.Err()
		}
		return s.sessions.Snapshots().Set(ctx, s.sessions.Key(sessionID, session.SlotUser), data)
	})
	if err := task.Wait(); err != nil {
		failSpan(span, err, "Sign-in did not complete")
		countOperation(ctx, s.operations, operation, resultFailure)
		return nil, err
	}

	s.logger.InfoContext(ctx, "User signed in",
		slog.String("session_id", sessionID),
		slog.String("operation", operation),
		slog.String("user_id", user.ID),
	)
	countOperation(ctx, s.operations, operation, resultSuccess)
	span.SetStatus(codes.Ok, "Signed in")
	return dto.ToUserResponse(user), nil
}
