package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/telemetry"
)

// AuthService runs register and login one at a time and owns the session.
type AuthService struct {
	repo      port.UserRepository
	hasher    port.PasswordHasher
	validator port.Validator
	session   *Session
	telemetry port.Telemetry
	metrics   *telemetry.AppMetrics
	logger    zerolog.Logger

	mu sync.Mutex
}

type AuthDeps struct {
	Repo      port.UserRepository
	Hasher    port.PasswordHasher
	Validator port.Validator
	Session   *Session
	Telemetry port.Telemetry
	Metrics   *telemetry.AppMetrics
	Logger    zerolog.Logger
}

func NewAuthService(deps AuthDeps) *AuthService {
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NewNoOpProbe()
	}
	if deps.Session == nil {
		deps.Session = NewSession()
	}

	return &AuthService{
		repo:      deps.Repo,
		hasher:    deps.Hasher,
		validator: deps.Validator,
		session:   deps.Session,
		telemetry: deps.Telemetry,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
}

func (as *AuthService) Register(ctx context.Context, username string, password string) domain.AuthResult {
	as.mu.Lock()
	defer as.mu.Unlock()

	ctx, done := track(ctx, as.telemetry, "auth", "register", 0)
	result := as.register(ctx, domain.Credentials{Username: username, Password: password})
	done(result.Err)

	as.report(ctx, "register", username, result)

	return result
}

func (as *AuthService) register(ctx context.Context, creds domain.Credentials) domain.AuthResult {
	if err := as.validate(creds); err != nil {
		return domain.Failure(err)
	}

	_, err := as.repo.GetByUsername(ctx, creds.Username)
	switch {
	case err == nil:
		return domain.Failure(domain.Conflict(domain.MsgUsernameTaken))
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Failure(err)
	}

	hash, err := as.hasher.Hash(creds.Password)
	if err != nil {
		return domain.Failure(domain.Storage("hash password", err))
	}

	// a racing registration is caught by the unique constraint
	user, err := as.repo.Create(ctx, creds.Username, hash)
	if err != nil {
		return domain.Failure(err)
	}

	as.logger.Debug().Int("user_id", user.ID).Str("password_scheme", as.hasher.Scheme()).Msg("User stored")

	return domain.Success(domain.MsgRegistrationDone)
}

// Login sets the session user on success. A failed attempt leaves the session as it was.
func (as *AuthService) Login(ctx context.Context, username string, password string) domain.AuthResult {
	as.mu.Lock()
	defer as.mu.Unlock()

	ctx, done := track(ctx, as.telemetry, "auth", "login", 0)
	result := as.login(ctx, domain.Credentials{Username: username, Password: password})
	done(result.Err)

	as.report(ctx, "login", username, result)

	return result
}

func (as *AuthService) login(ctx context.Context, creds domain.Credentials) domain.AuthResult {
	if err := as.validate(creds); err != nil {
		return domain.Failure(err)
	}

	user, err := as.repo.GetByUsername(ctx, creds.Username)
	if err != nil {
		return domain.Failure(err)
	}

	ok, err := as.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return domain.Failure(domain.Storage("verify password", err))
	}
	if !ok {
		return domain.Failure(domain.Auth(domain.MsgWrongPassword))
	}

	as.session.Set(user)

	return domain.LoggedIn(user)
}

func (as *AuthService) Logout() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if user, ok := as.session.Current(); ok {
		as.logger.Info().
			Int("user_id", user.ID).
			Str("session_id", as.session.ID().String()).
			Msg("Logged out")
	}

	as.session.Clear()
}

// SetCurrentUser switches the session to an existing user without a password check.
func (as *AuthService) SetCurrentUser(ctx context.Context, userID int) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	ctx, done := track(ctx, as.telemetry, "auth", "set_current_user", userID)

	user, err := as.repo.GetByID(ctx, userID)
	if err == nil {
		as.session.Set(user)
		as.logger.Info().
			Int("user_id", user.ID).
			Str("session_id", as.session.ID().String()).
			Msg("Session switched")
	}
	done(err)

	return err
}

func (as *AuthService) CurrentUser() (domain.User, bool) {
	return as.session.Current()
}

func (as *AuthService) Session() *Session {
	return as.session
}

func (as *AuthService) validate(creds domain.Credentials) error {
	if creds.IsBlank() {
		return domain.Validation(domain.MsgCredentialsNeeded)
	}

	if as.validator == nil {
		return nil
	}

	return as.validator.ValidateStruct(creds)
}

func (as *AuthService) report(ctx context.Context, operation, username string, result domain.AuthResult) {
	as.metrics.RecordAuthAttempt(operation, result.Outcome.String())

	if result.Err != nil && domain.UserMessage(result.Err) == domain.MsgStorageFailure {
		as.telemetry.RecordError(ctx, "auth."+operation, result.Err, nil)
		as.logger.Error().Err(result.Err).Str("operation", operation).Msg("Auth failed")
		return
	}

	event := as.logger.Info().
		Str("operation", operation).
		Str("username", username).
		Str("outcome", result.Outcome.String())

	if result.IsLoggedIn() {
		event = event.Str("session_id", as.session.ID().String())
	}

	event.Msg("Auth attempt")
}
