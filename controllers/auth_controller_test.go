package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/testhelpers"
	"github.com/cppla/focusdesk/utils"
)

func newAuthController(t *testing.T) *AuthController {
	t.Helper()
	db := testhelpers.NewDB(t)
	cfg := testhelpers.Config()
	issuer := utils.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL())
	return NewAuthController(db, cfg, issuer, utils.NewTokenBlacklist(nil), utils.NewStateStore(nil), nil)
}

func TestFindOrCreateGoogleUserLinksExistingEmail(t *testing.T) {
	a := newAuthController(t)
	ctx := context.Background()
	existing := testhelpers.CreateUser(t, a.db, "ada@example.com")

	user, err := a.findOrCreateGoogleUser(ctx, &googleProfile{ID: "g-1", Email: "Ada@Example.com", Name: "Ada L"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, user.ID)
	require.NotNil(t, user.GoogleID)
	assert.Equal(t, "g-1", *user.GoogleID)
	assert.Equal(t, "Ada L", user.Name)

	// the google id wins when the email changed upstream
	again, err := a.findOrCreateGoogleUser(ctx, &googleProfile{ID: "g-1", Email: "ada@new.example.com", Name: "Ada L"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, again.ID)

	var stored models.User
	require.NoError(t, a.db.Take(&stored, existing.ID).Error)
	assert.Equal(t, "ada@new.example.com", stored.Email)

	var count int64
	require.NoError(t, a.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestFindOrCreateGoogleUserCreates(t *testing.T) {
	a := newAuthController(t)

	user, err := a.findOrCreateGoogleUser(context.Background(), &googleProfile{ID: "g-2", Email: "new@example.com"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "new@example.com", user.Name)
	assert.Empty(t, user.PasswordHash)
}

func TestFetchGoogleUser(t *testing.T) {
	a := newAuthController(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"g-9","email":"x@example.com","name":"X"}`))
	}))
	defer srv.Close()
	a.userInfoURL = srv.URL

	token := &oauth2.Token{AccessToken: "access-token", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)}
	profile, err := a.fetchGoogleUser(context.Background(), &oauth2.Config{}, token)
	require.NoError(t, err)
	assert.Equal(t, googleProfile{ID: "g-9", Email: "x@example.com", Name: "X"}, *profile)

	_, err = a.fetchGoogleUser(context.Background(), &oauth2.Config{}, &oauth2.Token{AccessToken: "other", Expiry: time.Now().Add(time.Hour)})
	assert.Error(t, err)
}

func TestOAuthConfigRequiresCredentials(t *testing.T) {
	a := newAuthController(t)
	_, err := a.oauthConfig()
	assert.True(t, utils.IsKind(err, utils.KindUnavailable))

	a.cfg.GoogleClientID = "id"
	a.cfg.GoogleClientSecret = "secret"
	a.cfg.OAuthRedirectBase = "http://localhost:8080"
	cfg, err := a.oauthConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1/auth/google/callback", cfg.RedirectURL)
}

func TestSignupLosingUniqueRaceIsValidationError(t *testing.T) {
	a := newAuthController(t)
	fired := false
	// another request inserts the same email between the existence check and the insert
	require.NoError(t, a.db.Callback().Create().Before("gorm:begin_transaction").Register("test:signup_race", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "users" {
			return
		}
		fired = true
		now := time.Now().UTC()
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)",
			"Racer", "race@example.com", now, now,
		)
	}))

	r := gin.New()
	r.POST("/signup", a.Signup)
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"name":"Ada","email":"race@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.True(t, fired)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User already exists")

	var count int64
	require.NoError(t, a.db.Model(&models.User{}).Where("email = ?", "race@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
