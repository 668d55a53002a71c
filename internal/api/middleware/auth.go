package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/auth"
)

// ContextKeyUserID holds the key for the caller's ObjectID in Gin context.
const ContextKeyUserID = "userID"

// errorBody matches the {code, message} shape of handler error responses.
func errorBody(code apperr.Code, message string) gin.H {
	return gin.H{"code": code, "message": message}
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// resolved caller identity in the context.
func AuthMiddleware(resolver auth.IResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := resolver.Resolve(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(apperr.CodeInvalidCredential, err.Error()))
			return
		}

		c.Set(ContextKeyUserID, userID)

		c.Next()
	}
}

// GetUserID returns the caller identity set by AuthMiddleware.
func GetUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok && !id.IsZero()
}
