package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"swappy/backend/internal/api/middleware"
	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
)

// Error responses carry {"code", "message"}.
//
// Lookups by id report existence before ownership: a missing entity is always
// 404 not_found, and an existing entity the caller may not touch is 401
// ownership. The two are never folded into one status.
var statusByCode = map[apperr.Code]int{
	apperr.CodeInvalidCredential:      http.StatusUnauthorized,
	apperr.CodeNotFound:               http.StatusNotFound,
	apperr.CodeOwnership:              http.StatusUnauthorized,
	apperr.CodeSelfSwap:               http.StatusUnauthorized,
	apperr.CodeAlreadyResolved:        http.StatusUnauthorized,
	apperr.CodeUnauthorizedTransition: http.StatusUnauthorized,
	apperr.CodeAlreadyExists:          http.StatusConflict,
	apperr.CodeInvalidInput:           http.StatusBadRequest,
	apperr.CodeRateLimited:            http.StatusTooManyRequests,
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatusFor returns the HTTP status a domain error maps to, or 500.
func StatusFor(err error) int {
	if status, ok := statusByCode[apperr.CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes err as an ErrorResponse. Errors outside the domain
// taxonomy are attached to the context and reported as 500 internal.
func respondError(c *gin.Context, err error) {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		if status, ok := statusByCode[domainErr.Code]; ok {
			c.JSON(status, ErrorResponse{Code: string(domainErr.Code), Message: err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "Internal server error"})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: string(apperr.CodeInvalidInput), Message: message})
}

// parseIDParam reads a hex ObjectID path parameter. An id that cannot exist
// is reported as not found.
func parseIDParam(c *gin.Context, name, entity string) (primitive.ObjectID, bool) {
	raw := c.Param(name)
	id, err := models.ParseID(raw)
	if err != nil {
		respondError(c, apperr.NotFound(entity, raw))
		return primitive.NilObjectID, false
	}
	return id, true
}

// callerID returns the authenticated caller. Routes using it sit behind
// AuthMiddleware, so a missing identity is a credential error.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, ok := middleware.GetUserID(c)
	if !ok {
		respondError(c, apperr.ErrInvalidCredential)
		return primitive.NilObjectID, false
	}
	return id, true
}
