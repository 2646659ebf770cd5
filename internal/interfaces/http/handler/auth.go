package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/wzledger/backend/internal/application/identity"
	"github.com/wzledger/backend/internal/interfaces/http/middleware"
)

// AuthUseCases is the identity surface used by AuthHandler
type AuthUseCases interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.AuthResult, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.AuthResult, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, input identityapp.LogoutInput) error
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	auth AuthUseCases
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth AuthUseCases) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// LogoutRequest optionally names a refresh token to revoke with the access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and signs it in
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login authenticates with email and password
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Refresh exchanges a refresh token for a new token pair
// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tokens, err := h.auth.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// Logout revokes the presented access token
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c)
		return
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		h.Unauthorized(c)
		return
	}

	// The body is optional; a missing or malformed one only skips refresh revocation.
	var req LogoutRequest
	_ = c.ShouldBindJSON(&req)

	err = h.auth.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:       userID,
		TokenJTI:     claims.ID,
		TokenTTL:     claims.GetRemainingTTL(),
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, "Successfully logged out.")
}

// Me returns the current user's profile
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
