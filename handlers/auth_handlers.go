package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"classroom-notes-go/auth"
)

const sessionUserKey = "user"

// AuthHandler serves login and logout. The session it sets is informational.
type AuthHandler struct {
	Authenticator auth.Authenticator
	logger        *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(a auth.Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{Authenticator: a, logger: logger}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var creds auth.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid request body: " + err.Error()})
		return
	}
	h.logger.Debug("Login attempt", zap.String("email", creds.Email))

	principal, err := h.Authenticator.Authenticate(c.Request.Context(), creds)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.logger.Warn("Failed login attempt", zap.String("email", creds.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "Invalid credentials"})
		return
	}
	if err != nil {
		h.logger.Error("Login error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, principal.Email)
	if err := session.Save(); err != nil {
		h.logger.Error("Error saving session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.logger.Info("Successful login", zap.String("email", principal.Email))
	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Logged in successfully"})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		h.logger.Error("Error clearing session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
