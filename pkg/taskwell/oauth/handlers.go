package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/taskwell/taskwell/pkg/taskwell/auth"
	"github.com/taskwell/taskwell/pkg/taskwell/config"
	"github.com/taskwell/taskwell/pkg/taskwell/models"
)

// Handler implements browser login through a single OIDC provider configured
// at startup. A successful callback provisions a local user on first login
// and issues the same JWT the password flow does.
type Handler struct {
	db       *gorm.DB
	issuer   *auth.TokenIssuer
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// StateData stores login state for callback validation
type StateData struct {
	ReturnURL string `json:"return_url"`
	Nonce     string `json:"nonce"`
}

// NewHandler discovers the configured provider and prepares the login flow.
// Returns an error if the issuer cannot be reached.
func NewHandler(db *gorm.DB, issuer *auth.TokenIssuer, cfg config.OAuthConfig) (*Handler, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	return &Handler{
		db:     db,
		issuer: issuer,
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

func generateNonce() string {
	b := make([]byte, 24)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// AuthURLRequest represents a request for an auth URL
type AuthURLRequest struct {
	ReturnURL string `json:"return_url"`
}

// GetAuthURL returns the provider's authorization URL with signed-in state
func (h *Handler) GetAuthURL(c *gin.Context) {
	var req AuthURLRequest
	c.ShouldBindJSON(&req)

	nonce := generateNonce()
	stateJSON, _ := json.Marshal(StateData{ReturnURL: req.ReturnURL, Nonce: nonce})
	state := base64.URLEncoding.EncodeToString(stateJSON)

	c.JSON(http.StatusOK, gin.H{"auth_url": h.config.AuthCodeURL(state, oidc.Nonce(nonce))})
}

// Callback handles the provider redirect: exchanges the code, verifies the
// ID token and nonce, finds or creates the user, and returns a bearer token.
func (h *Handler) Callback(c *gin.Context) {
	stateJSON, err := base64.URLEncoding.DecodeString(c.Query("state"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}
	var stateData StateData
	if err := json.Unmarshal(stateJSON, &stateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		errorDesc := c.Query("error_description")
		if errorDesc == "" {
			errorDesc = c.Query("error")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication failed: " + errorDesc})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := h.config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No ID token in response"})
		return
	}

	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ID token"})
		return
	}

	if idToken.Nonce != stateData.Nonce {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nonce"})
		return
	}

	var claims struct {
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
		Name              string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse claims"})
		return
	}
	if claims.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by identity provider"})
		return
	}

	user, err := h.findOrCreateUser(claims.Email, claims.PreferredUsername)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to provision user"})
		return
	}

	token, err := h.issuer.Generate(user.ID, user.Username, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"return_url": stateData.ReturnURL,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// findOrCreateUser looks a user up by email, creating one on first login.
// OAuth-only users carry no password hash.
func (h *Handler) findOrCreateUser(email, preferredUsername string) (*models.User, error) {
	var user models.User
	err := h.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username := preferredUsername
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}
	// Deduplicate the derived username if taken
	candidate := username
	for i := 1; ; i++ {
		var existing models.User
		if err := h.db.Where("username = ?", candidate).First(&existing).Error; errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		candidate = fmt.Sprintf("%s%d", username, i)
	}

	user = models.User{
		Username: candidate,
		Email:    email,
		Active:   true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RegisterRoutes registers OAuth login routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/authorize", h.GetAuthURL)
	rg.GET("/callback", h.Callback)
}
