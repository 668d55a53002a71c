package auth

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
)

// IResolver turns an Authorization header into the caller's user id.
type IResolver interface {
	Resolve(authorizationHeader string) (primitive.ObjectID, error)
}

// Resolver validates bearer tokens signed with a shared secret.
type Resolver struct {
	secret string
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: secret}
}

// claims parses and verifies "Bearer <token>". Every failure is an
// invalid_credential error.
func (r *Resolver) claims(authorizationHeader string) (*Claims, error) {
	if authorizationHeader == "" {
		return nil, apperr.New(apperr.CodeInvalidCredential, "Authorization header required")
	}

	parts := strings.Fields(authorizationHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, apperr.New(apperr.CodeInvalidCredential, "Authorization header format must be Bearer {token}")
	}

	claims, err := ValidateJWT(parts[1], r.secret)
	if err != nil {
		return nil, &apperr.Error{Code: apperr.CodeInvalidCredential, Message: fmt.Sprintf("Invalid or expired token: %v", err)}
	}
	return claims, nil
}

// Resolve returns the user id carried by a valid bearer token.
func (r *Resolver) Resolve(authorizationHeader string) (primitive.ObjectID, error) {
	claims, err := r.claims(authorizationHeader)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := models.ParseID(claims.UserID)
	if err != nil || id.IsZero() {
		return primitive.NilObjectID, apperr.New(apperr.CodeInvalidCredential, "token does not carry a valid user id")
	}
	return id, nil
}
