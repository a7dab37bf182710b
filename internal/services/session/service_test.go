package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/seungho-m/jikgwan/internal/api"
	mockclock "github.com/seungho-m/jikgwan/internal/common/clock/mocks"
	"github.com/seungho-m/jikgwan/internal/models"
	"github.com/seungho-m/jikgwan/internal/repositories/credential"
)

type ServiceTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   credential.Repository
	clock  *mockclock.MockClock

	server *httptest.Server
	mux    *http.ServeMux

	service Service
	ctx     context.Context
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ctx = context.Background()

	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr
	s.client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

	repo, err := credential.NewRedis(&credential.Config{RedisClient: s.client})
	s.Require().NoError(err)
	s.repo = repo

	s.mux = http.NewServeMux()
	s.server = httptest.NewServer(s.mux)

	apiClient, err := api.New(&api.Config{BaseURL: s.server.URL})
	s.Require().NoError(err)

	s.clock = mockclock.NewMockClock(s.ctrl)

	svc, err := New(&Config{
		Repository: s.repo,
		API:        apiClient,
		Clock:      s.clock,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *ServiceTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
	s.mr.Close()
	s.ctrl.Finish()
}

func (s *ServiceTestSuite) respond(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

func (s *ServiceTestSuite) signedToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	s.Require().NoError(err)
	return signed
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) TestLoginPersistsTokensAndProfile() {
	s.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		s.Require().NoError(json.NewDecoder(r.Body).Decode(&body))
		s.Equal("fan@jikgwan.kr", body["email"])
		s.respond(w, http.StatusOK, models.TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
		})
	})
	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, models.User{ID: 42, Email: "fan@jikgwan.kr", Nickname: "두산팬"})
	})

	output, err := s.service.Login(s.ctx, &LoginInput{
		Email:    "fan@jikgwan.kr",
		Password: "password123",
	})
	s.Require().NoError(err)
	s.Equal(int64(42), output.User.ID)
	s.Equal("access-1", output.Tokens.AccessToken)

	tokens, err := s.repo.GetTokens(s.ctx)
	s.Require().NoError(err)
	s.Equal("refresh-1", tokens.RefreshToken)

	user, err := s.repo.GetUser(s.ctx)
	s.Require().NoError(err)
	s.Equal("두산팬", user.Nickname)
}

func (s *ServiceTestSuite) TestLoginValidatesInput() {
	_, err := s.service.Login(s.ctx, &LoginInput{Email: "not-an-email", Password: "password123"})
	s.ErrorIs(err, ErrInvalidEmail)

	_, err = s.service.Login(s.ctx, &LoginInput{Email: "fan@jikgwan.kr", Password: "short"})
	s.ErrorIs(err, ErrPasswordTooShort)
}

func (s *ServiceTestSuite) TestLoginRollsBackWhenProfileFetchFails() {
	s.mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"})
	})
	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.service.Login(s.ctx, &LoginInput{
		Email:    "fan@jikgwan.kr",
		Password: "password123",
	})
	s.Require().Error(err)

	_, err = s.repo.GetTokens(s.ctx)
	s.ErrorIs(err, credential.ErrNotFound)
}

func (s *ServiceTestSuite) TestSignupValidatesNickname() {
	_, err := s.service.Signup(s.ctx, &SignupInput{
		Email:    "fan@jikgwan.kr",
		Password: "password123",
		Nickname: "a",
	})
	s.ErrorIs(err, ErrInvalidNickname)

	_, err = s.service.Signup(s.ctx, &SignupInput{
		Email:           "fan@jikgwan.kr",
		Password:        "password123",
		Nickname:        "두산팬",
		SupportingTeams: []string{"NOPE"},
	})
	s.ErrorIs(err, ErrUnknownTeam)
}

func (s *ServiceTestSuite) TestSignupCreatesAccount() {
	s.mux.HandleFunc("/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		s.Require().NoError(r.ParseMultipartForm(1 << 20))
		s.Equal("두산팬", r.FormValue("nickname"))
		s.Equal([]string{"DOOSAN", "LG"}, r.MultipartForm.Value["supportingTeams"])
		s.respond(w, http.StatusCreated, models.User{ID: 7, Nickname: "두산팬"})
	})

	output, err := s.service.Signup(s.ctx, &SignupInput{
		Email:           "fan@jikgwan.kr",
		Password:        "password123",
		Nickname:        "두산팬",
		Gender:          models.GenderFemale,
		AgeRange:        models.AgeRangeTwenties,
		SupportingTeams: []string{"DOOSAN", "LG"},
	})
	s.Require().NoError(err)
	s.Equal(int64(7), output.User.ID)
}

func (s *ServiceTestSuite) TestLogoutClearsEvenWhenServerFails() {
	s.mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	s.Require().NoError(s.repo.SaveTokens(s.ctx, &credential.SaveTokensInput{
		Tokens: &models.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}))

	s.Require().NoError(s.service.Logout(s.ctx))

	_, err := s.repo.GetTokens(s.ctx)
	s.ErrorIs(err, credential.ErrNotFound)
}

func (s *ServiceTestSuite) TestRestoreWithoutTokens() {
	output, err := s.service.Restore(s.ctx)
	s.Require().NoError(err)
	s.False(output.Authenticated)
	s.Nil(output.User)
}

func (s *ServiceTestSuite) TestRestoreClearsExpiredCredentialsOffline() {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(now)

	var meCalls int
	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls++
	})

	s.Require().NoError(s.repo.SaveTokens(s.ctx, &credential.SaveTokensInput{
		Tokens: &models.TokenPair{
			AccessToken:  "stale",
			RefreshToken: s.signedToken(now.Add(-time.Hour)),
		},
	}))

	output, err := s.service.Restore(s.ctx)
	s.Require().NoError(err)
	s.False(output.Authenticated)
	s.Equal(0, meCalls)

	_, err = s.repo.GetTokens(s.ctx)
	s.ErrorIs(err, credential.ErrNotFound)
}

func (s *ServiceTestSuite) TestRestoreRebuildsSession() {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(now)

	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		s.respond(w, http.StatusOK, models.User{ID: 42, Nickname: "두산팬"})
	})

	s.Require().NoError(s.repo.SaveTokens(s.ctx, &credential.SaveTokensInput{
		Tokens: &models.TokenPair{
			AccessToken:  "live",
			RefreshToken: s.signedToken(now.Add(24 * time.Hour)),
		},
	}))

	output, err := s.service.Restore(s.ctx)
	s.Require().NoError(err)
	s.True(output.Authenticated)
	s.Equal("두산팬", output.User.Nickname)

	cached, err := s.repo.GetUser(s.ctx)
	s.Require().NoError(err)
	s.Equal(int64(42), cached.ID)
}

func (s *ServiceTestSuite) TestRestoreClearsRejectedCredentials() {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	s.clock.EXPECT().Now().Return(now)

	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	s.Require().NoError(s.repo.SaveTokens(s.ctx, &credential.SaveTokensInput{
		Tokens: &models.TokenPair{
			AccessToken:  "revoked",
			RefreshToken: s.signedToken(now.Add(24 * time.Hour)),
		},
	}))

	output, err := s.service.Restore(s.ctx)
	s.Require().NoError(err)
	s.False(output.Authenticated)

	_, err = s.repo.GetTokens(s.ctx)
	s.ErrorIs(err, credential.ErrNotFound)
}

func (s *ServiceTestSuite) TestUpdateProfileRefreshesCache() {
	s.mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		s.Equal(http.MethodPut, r.Method)
		s.respond(w, http.StatusOK, models.User{
			ID:              42,
			Nickname:        "잠실직관러",
			Gender:          models.GenderFemale,
			AgeRange:        models.AgeRangeTwenties,
			SupportingTeams: []string{"DOOSAN"},
			ProfileImageURL: "https://cdn.example.com/42.jpg",
		})
	})

	output, err := s.service.UpdateProfile(s.ctx, &UpdateProfileInput{
		Nickname:        "잠실직관러",
		SupportingTeams: []string{"DOOSAN"},
	})
	s.Require().NoError(err)
	s.Equal("잠실직관러", output.User.Nickname)

	current, err := s.service.CurrentUser(s.ctx)
	s.Require().NoError(err)
	s.True(current.ProfileComplete)
}

func (s *ServiceTestSuite) TestCurrentUserRequiresSession() {
	_, err := s.service.CurrentUser(s.ctx)
	s.ErrorIs(err, ErrNotSignedIn)
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := New(&Config{}); err == nil {
		t.Fatal("expected error for missing repository")
	}
}
