package service_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"securetodo/internal/adapter/database/sqlite"
	"securetodo/internal/adapter/database/sqlite/repository"
	"securetodo/internal/adapter/validation"
	"securetodo/internal/core/domain"
	"securetodo/internal/core/port"
	"securetodo/internal/core/service"
	"securetodo/internal/core/telemetry"
	"securetodo/internal/core/util"
	. "securetodo/pkg/test"
)

type AuthServiceTestSuite struct {
	suite.Suite
	db       *sqlite.DB
	UseCase  *service.AuthService
	repo     port.UserRepository
	registry *prometheus.Registry
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.db = InitTestDB()
	s.repo = repository.NewUserRepository(s.db, nil)
	s.registry = prometheus.NewRegistry()

	s.UseCase = service.NewAuthService(service.AuthDeps{
		Repo:      s.repo,
		Hasher:    util.Sha256Hasher{},
		Validator: validation.MustNewValidator(),
		Metrics:   telemetry.NewAppMetrics(s.registry),
		Logger:    zerolog.Nop(),
	})
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.db.Close()
}

func TestAuthServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	result := s.UseCase.Register(context.Background(), "alice", "pw1")

	assert.Equal(s.T(), domain.OutcomeSuccess, result.Outcome)
	assert.Equal(s.T(), "Registration successful", result.Message)

	user, err := s.repo.GetByUsername(context.Background(), "alice")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), util.HashPassword("pw1"), user.PasswordHash)

	_, loggedIn := s.UseCase.CurrentUser()
	assert.False(s.T(), loggedIn, "registration must not log in")
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateUsername() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")

	result := s.UseCase.Register(ctx, "alice", "other")

	assert.Equal(s.T(), domain.OutcomeError, result.Outcome)
	assert.Equal(s.T(), "Username already exists", result.Message)
	assert.ErrorIs(s.T(), result.Err, domain.ErrConflict)
}

func (s *AuthServiceTestSuite) TestRegister_BlankCredentials() {
	for _, creds := range [][2]string{{"", "pw"}, {"alice", ""}, {"  ", "pw"}} {
		result := s.UseCase.Register(context.Background(), creds[0], creds[1])

		assert.Equal(s.T(), domain.OutcomeError, result.Outcome)
		assert.Equal(s.T(), "Username and password are required", result.Message)
	}
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")

	result := s.UseCase.Login(ctx, "alice", "pw1")

	Expect(result.IsLoggedIn()).To(BeTrue())
	Expect(result.User.Username).To(Equal("alice"))

	current, ok := s.UseCase.CurrentUser()
	Expect(ok).To(BeTrue())
	Expect(current.ID).To(Equal(result.User.ID))
	Expect(s.UseCase.Session().ID().String()).NotTo(Equal("00000000-0000-0000-0000-000000000000"))
}

func (s *AuthServiceTestSuite) TestLogin_UnknownUser() {
	result := s.UseCase.Login(context.Background(), "bob", "x")

	assert.Equal(s.T(), domain.OutcomeError, result.Outcome)
	assert.Equal(s.T(), "User not found", result.Message)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")

	result := s.UseCase.Login(ctx, "alice", "wrong")

	assert.Equal(s.T(), domain.OutcomeError, result.Outcome)
	assert.Equal(s.T(), "Wrong password", result.Message)
	assert.ErrorIs(s.T(), result.Err, domain.ErrAuth)

	_, ok := s.UseCase.CurrentUser()
	assert.False(s.T(), ok)
}

func (s *AuthServiceTestSuite) TestLogout_ClearsSession() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")
	s.UseCase.Login(ctx, "alice", "pw1")

	s.UseCase.Logout()

	_, ok := s.UseCase.CurrentUser()
	assert.False(s.T(), ok)
	assert.Zero(s.T(), s.UseCase.Session().UserID())
}

func (s *AuthServiceTestSuite) TestSetCurrentUser() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")
	alice, _ := s.repo.GetByUsername(ctx, "alice")

	require.NoError(s.T(), s.UseCase.SetCurrentUser(ctx, alice.ID))
	assert.Equal(s.T(), alice.ID, s.UseCase.Session().UserID())

	err := s.UseCase.SetCurrentUser(ctx, 999)
	assert.ErrorIs(s.T(), err, domain.ErrNotFound)
	assert.Equal(s.T(), alice.ID, s.UseCase.Session().UserID())
}

func (s *AuthServiceTestSuite) TestMetrics_CountOutcomes() {
	ctx := context.Background()
	s.UseCase.Register(ctx, "alice", "pw1")
	s.UseCase.Register(ctx, "alice", "pw1")
	s.UseCase.Login(ctx, "alice", "pw1")
	s.UseCase.Login(ctx, "alice", "nope")

	count, err := testutil.GatherAndCount(s.registry, "auth_attempts_total")
	require.NoError(s.T(), err)
	// register/success, register/error, login/logged_in, login/error
	assert.Equal(s.T(), 4, count)
}

func TestAuthService_LogsSessionID(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	var buf bytes.Buffer
	uc := service.NewAuthService(service.AuthDeps{
		Repo:   repository.NewUserRepository(db, nil),
		Hasher: util.Sha256Hasher{},
		Logger: zerolog.New(&buf),
	})

	ctx := context.Background()
	uc.Register(ctx, "alice", "pw1")
	Expect(buf.String()).NotTo(ContainSubstring("session_id"))

	Expect(uc.Login(ctx, "alice", "pw1").IsLoggedIn()).To(BeTrue())
	sessionID := uc.Session().ID().String()
	Expect(buf.String()).To(ContainSubstring(`"session_id":"` + sessionID + `"`))

	buf.Reset()
	uc.Logout()
	Expect(buf.String()).To(ContainSubstring(`"session_id":"` + sessionID + `"`))
}

func TestAuthService_BcryptScheme(t *testing.T) {
	RegisterTestingT(t)

	db := InitTestDB()
	defer db.Close()

	repo := repository.NewUserRepository(db, nil)
	uc := service.NewAuthService(service.AuthDeps{
		Repo:   repo,
		Hasher: util.NewBcryptHasher(4),
		Logger: zerolog.Nop(),
	})

	ctx := context.Background()
	Expect(uc.Register(ctx, "alice", "pw1").Outcome).To(Equal(domain.OutcomeSuccess))

	user, err := repo.GetByUsername(ctx, "alice")
	Expect(err).NotTo(HaveOccurred())
	Expect(user.PasswordHash).To(HavePrefix("$2a$"))

	Expect(uc.Login(ctx, "alice", "pw1").IsLoggedIn()).To(BeTrue())
	Expect(uc.Login(ctx, "alice", "pw2").Message).To(Equal("Wrong password"))
}

func TestAuthService_StorageFailureIsAnOutcome(t *testing.T) {
	RegisterTestingT(t)

	raw, mock, err := sqlmock.New()
	Expect(err).NotTo(HaveOccurred())
	defer raw.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnError(errors.New("disk I/O error"))

	uc := service.NewAuthService(service.AuthDeps{
		Repo:   repository.NewUserRepository(sqlite.Wrap(raw), nil),
		Hasher: util.Sha256Hasher{},
		Logger: zerolog.Nop(),
	})

	for _, result := range []domain.AuthResult{
		uc.Register(context.Background(), "alice", "pw1"),
		uc.Login(context.Background(), "alice", "pw1"),
	} {
		Expect(result.Outcome).To(Equal(domain.OutcomeError))
		Expect(result.Message).To(Equal("Something went wrong, please try again"))
		Expect(errors.Is(result.Err, domain.ErrStorage)).To(BeTrue())
	}
}
