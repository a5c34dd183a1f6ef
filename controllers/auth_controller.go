package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/config"
	"github.com/cppla/focusdesk/middleware"
	"github.com/cppla/focusdesk/models"
	"github.com/cppla/focusdesk/utils"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// AuthController handles email/password accounts and Google sign-in.
type AuthController struct {
	db        *gorm.DB
	cfg       config.AppConfig
	issuer    *utils.TokenIssuer
	blacklist *utils.TokenBlacklist
	states    *utils.StateStore
	guard     *utils.SignupGuard
	// userInfoURL is swapped in tests
	userInfoURL string
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB, cfg config.AppConfig, issuer *utils.TokenIssuer, blacklist *utils.TokenBlacklist, states *utils.StateStore, guard *utils.SignupGuard) *AuthController {
	return &AuthController{
		db:          db,
		cfg:         cfg,
		issuer:      issuer,
		blacklist:   blacklist,
		states:      states,
		guard:       guard,
		userInfoURL: googleUserInfoURL,
	}
}

func userResponse(user models.User) gin.H {
	return gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a password account.
func (a *AuthController) Signup(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	ip := ctx.ClientIP()
	if !a.guard.TryAttempt(ctx.Request.Context(), ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "Too many signup attempts, please slow down")
		return
	}
	if !a.guard.UnderDailyLimit(ctx.Request.Context(), ip) {
		utils.Error(ctx, http.StatusTooManyRequests, 42903, "Signup limit reached for today")
		return
	}
	if !bindJSON(ctx, &req) {
		return
	}

	name := utils.Sanitize(req.Name)
	email := normalizeEmail(req.Email)
	if name == "" {
		utils.Fail(ctx, utils.Validation("Name is required"))
		return
	}

	var count int64
	if err := a.db.WithContext(ctx.Request.Context()).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		utils.Fail(ctx, utils.Internal("failed to check user", err))
		return
	}
	if count > 0 {
		utils.Fail(ctx, utils.Validation("User already exists"))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to hash password", err))
		return
	}

	user := models.User{Name: name, Email: email, PasswordHash: hash}
	if err := a.db.WithContext(ctx.Request.Context()).Create(&user).Error; err != nil {
		// a concurrent signup for the same email lost the race on the unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) || a.emailTaken(ctx.Request.Context(), email) {
			utils.Fail(ctx, utils.Validation("User already exists"))
			return
		}
		utils.Fail(ctx, utils.Internal("failed to create user", err))
		return
	}
	a.guard.RecordSuccess(ctx.Request.Context(), ip)
	utils.Created(ctx, gin.H{"message": "User created successfully", "user": userResponse(user)})
}

func (a *AuthController) emailTaken(ctx context.Context, email string) bool {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// Login verifies user credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}

	var user models.User
	err := a.db.WithContext(ctx.Request.Context()).Where("email = ?", normalizeEmail(req.Email)).Take(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Fail(ctx, utils.Internal("failed to load user", err))
		return
	}
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Fail(ctx, utils.Validation("Invalid credentials"))
		return
	}

	token, _, err := a.issuer.Issue(user.ID)
	if err != nil {
		utils.Fail(ctx, utils.Internal("failed to generate token", err))
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userResponse(user)})
}

// Logout invalidates the token by blacklisting it until expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	tokenID := ctx.GetString(middleware.ContextTokenIDKey)
	expiresAt := time.Now().Add(a.cfg.TokenTTL())
	if v, ok := ctx.Get(middleware.ContextTokenExpiryKey); ok {
		if t, ok := v.(time.Time); ok && !t.IsZero() {
			expiresAt = t
		}
	}
	a.blacklist.Revoke(ctx.Request.Context(), tokenID, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Me returns the current authenticated user's information.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	var user models.User
	if err := a.db.WithContext(ctx.Request.Context()).Take(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Fail(ctx, utils.NotFound("User not found"))
			return
		}
		utils.Fail(ctx, utils.Internal("failed to load user", err))
		return
	}
	utils.Success(ctx, user)
}

// GoogleLogin returns the Google authorization URL and stores a single-use state.
func (a *AuthController) GoogleLogin(ctx *gin.Context) {
	cfg, err := a.oauthConfig()
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	state := uuid.NewString()
	a.states.Save(ctx.Request.Context(), state, 10*time.Minute)
	utils.Success(ctx, gin.H{
		"authorization_url": cfg.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":             state,
	})
}

// GoogleCallback exchanges the authorization code, links or creates the account and issues a JWT.
// With a frontend configured the browser is redirected to it; otherwise JSON is returned.
func (a *AuthController) GoogleCallback(ctx *gin.Context) {
	token, user, err := a.completeGoogleLogin(ctx)
	if err != nil {
		utils.Logger.Warn("google login failed", zap.Error(err))
		if a.cfg.FrontendURL != "" {
			ctx.Redirect(http.StatusFound, a.cfg.FrontendURL+"/Login?error=OAuthFailed")
			return
		}
		utils.Fail(ctx, err)
		return
	}
	if a.cfg.FrontendURL != "" {
		ctx.Redirect(http.StatusFound, a.cfg.FrontendURL+"/Dashboard?token="+url.QueryEscape(token))
		return
	}
	utils.Success(ctx, gin.H{"token": token, "user": userResponse(*user)})
}

func (a *AuthController) completeGoogleLogin(ctx *gin.Context) (string, *models.User, error) {
	code := ctx.Query("code")
	state := ctx.Query("state")
	if code == "" || state == "" {
		return "", nil, utils.Validation("missing code or state")
	}
	if !a.states.Consume(ctx.Request.Context(), state) {
		return "", nil, utils.Validation("invalid or expired state")
	}
	cfg, err := a.oauthConfig()
	if err != nil {
		return "", nil, err
	}

	oauthToken, err := cfg.Exchange(ctx.Request.Context(), code)
	if err != nil {
		return "", nil, utils.Validation("failed to exchange code")
	}
	profile, err := a.fetchGoogleUser(ctx.Request.Context(), cfg, oauthToken)
	if err != nil {
		return "", nil, utils.Internal("failed to fetch google profile", err)
	}
	user, err := a.findOrCreateGoogleUser(ctx.Request.Context(), profile)
	if err != nil {
		return "", nil, err
	}
	token, _, err := a.issuer.Issue(user.ID)
	if err != nil {
		return "", nil, utils.Internal("failed to generate token", err)
	}
	return token, user, nil
}

func (a *AuthController) oauthConfig() (*oauth2.Config, error) {
	if a.cfg.GoogleClientID == "" || a.cfg.GoogleClientSecret == "" {
		return nil, utils.Unavailable("google oauth not configured")
	}
	return &oauth2.Config{
		ClientID:     a.cfg.GoogleClientID,
		ClientSecret: a.cfg.GoogleClientSecret,
		RedirectURL:  fmt.Sprintf("%s/api/v1/auth/google/callback", a.cfg.OAuthRedirectBase),
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint:     google.Endpoint,
	}, nil
}

type googleProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (a *AuthController) fetchGoogleUser(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info request failed: %s", resp.Status)
	}
	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		return nil, errors.New("google profile has no id")
	}
	if profile.Email == "" {
		return nil, errors.New("no email found in google profile")
	}
	return &profile, nil
}

// findOrCreateGoogleUser links by email or google id and keeps name, email and google id in sync.
func (a *AuthController) findOrCreateGoogleUser(ctx context.Context, profile *googleProfile) (*models.User, error) {
	email := normalizeEmail(profile.Email)
	name := utils.Sanitize(profile.Name)
	if name == "" {
		name = email
	}

	db := a.db.WithContext(ctx)
	var user models.User
	err := db.Where("email = ? OR google_id = ?", email, profile.ID).Order("id").Take(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		googleID := profile.ID
		user = models.User{Name: name, Email: email, GoogleID: &googleID}
		if err := db.Create(&user).Error; err != nil {
			return nil, utils.Internal("failed to persist user", err)
		}
		return &user, nil
	case err != nil:
		return nil, utils.Internal("failed to load user", err)
	}

	updates := map[string]interface{}{}
	if user.Email != email {
		updates["email"] = email
		user.Email = email
	}
	if user.GoogleID == nil || *user.GoogleID == "" {
		updates["google_id"] = profile.ID
		googleID := profile.ID
		user.GoogleID = &googleID
	}
	if user.Name != name {
		updates["name"] = name
		user.Name = name
	}
	if len(updates) > 0 {
		if err := db.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return nil, utils.Internal("failed to update user", err)
		}
	}
	return &user, nil
}
