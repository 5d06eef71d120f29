package api

import (
	"net/http" // HTTP status codes
	"time"     // Token lifetime

	"voicebox/internal/domain"     // Importing domain models
	"voicebox/internal/middleware" // Session access and cookie name
	"voicebox/internal/repository" // Account storage
	"voicebox/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Display name
	Email    string `json:"email" binding:"required"`    // Login identifier
	Password string `json:"password" binding:"required"` // Plain password, hashed before storage
	Role     string `json:"role"`                        // User or Creator, defaults to User
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Login identifier
	Password string `json:"password" binding:"required"` // Plain password
}

// Response struct for authentication
type AuthResponse struct {
	ID       string      `json:"_id"`      // User ID
	Username string      `json:"username"` // Display name
	Email    string      `json:"email"`    // Email
	Role     domain.Role `json:"role"`     // User role
	Token    string      `json:"token"`    // JWT token
}

// TokenIssuer signs session tokens and sets the session cookie
type TokenIssuer struct {
	Secret       string
	TTL          time.Duration
	SecureCookie bool // Set the Secure flag on the cookie
}

// issue signs a token for user, sets the cookie and writes the auth response
func (t TokenIssuer) issue(c *gin.Context, status int, user *domain.User) {
	token, err := utils.GenerateJWT(user.ID, user.Role.String(), t.Secret, t.TTL)
	if err != nil {
		respondError(c, domain.InternalError(err))
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, int(t.TTL.Seconds()), "/", "", t.SecureCookie, true)
	c.JSON(status, AuthResponse{ID: user.ID, Username: user.Username, Email: user.Email, Role: user.Role, Token: token})
}

// RegisterHandler creates an account and signs the new user in
func RegisterHandler(users *repository.UserRepository, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide username, email and password"})
			return
		}
		role := domain.RoleUser // Default role
		if req.Role != "" {
			parsed, ok := domain.ParseRole(req.Role)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid role"})
				return
			}
			role = parsed
		}
		user, err := users.Register(c.Request.Context(), req.Username, req.Email, req.Password, role)
		if err != nil {
			respondError(c, err)
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,   // User ID
			"role":    user.Role, // User role
		}).Info("User registered")
		tokens.issue(c, http.StatusCreated, user)
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *repository.UserRepository, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"message": "Please provide email and password"})
			return
		}
		user, err := users.Authenticate(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		tokens.issue(c, http.StatusOK, user)
	}
}

// LogoutHandler clears the session cookie
func LogoutHandler(tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(middleware.TokenCookie, "", -1, "/", "", tokens.SecureCookie, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// MeHandler returns the signed-in user
func MeHandler(users *repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := middleware.CurrentSession(c)
		user, err := users.FindByID(c.Request.Context(), session.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
