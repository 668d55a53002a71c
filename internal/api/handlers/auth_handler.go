package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swappy/backend/internal/auth"
	"swappy/backend/internal/models"
	"swappy/backend/internal/services"
)

// AuthHandler issues and checks bearer tokens.
type AuthHandler struct {
	userService services.IUserService
	resolver    auth.IResolver
}

func NewAuthHandler(userService services.IUserService, resolver auth.IResolver) *AuthHandler {
	return &AuthHandler{userService: userService, resolver: resolver}
}

// Login handles POST /api/auth
func (h *AuthHandler) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respondBadRequest(c, "Email and password are required")
		return
	}

	token, _, err := h.userService.Login(c.Request.Context(), creds)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Authentication successful", "token": token})
}

// Validate handles POST /api/auth/validate
func (h *AuthHandler) Validate(c *gin.Context) {
	userID, err := h.resolver.Resolve(c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "invalid", "message": err.Error()})
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		if StatusFor(err) == http.StatusNotFound {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "invalid", "message": "user no longer exists"})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "valid", "user": user})
}
