package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

const requestTimeout = 5 * time.Second

var textPolicy = bluemonday.StrictPolicy()

// cleanText strips markup from free text written by clients.
func cleanText(value string) string {
	return strings.TrimSpace(textPolicy.Sanitize(strings.TrimSpace(value)))
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		logging.FromContext(c.Request.Context()).Error("panic recovered", zap.String("route", route), zap.Any("panic", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db Pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Ping(checkCtx)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	logger := logging.FromContext(c.Request.Context())
	fields := []zap.Field{zap.String("route", route), zap.Int("status", status), zap.String("error", message)}
	if status >= http.StatusInternalServerError {
		logger.Error("returning error", fields...)
	} else {
		logger.Warn("returning error", fields...)
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}

// respondAppError answers with the status and message carried by err.
func respondAppError(c *gin.Context, route string, err error) {
	status := apperr.Status(apperr.KindOf(err))
	if status >= http.StatusInternalServerError {
		logging.FromContext(c.Request.Context()).Error("request failed", zap.String("route", route), zap.Error(err))
	}
	respondWithError(c, status, route, apperr.Message(err))
}

// respondStoreError maps a repository error to 404 or a logged 500.
func respondStoreError(c *gin.Context, route string, err error, notFound, failed string) {
	if errors.Is(err, store.ErrNotFound) {
		respondWithError(c, http.StatusNotFound, route, notFound)
		return
	}
	logging.FromContext(c.Request.Context()).Error("store call failed", zap.String("route", route), zap.Error(err))
	respondWithError(c, http.StatusInternalServerError, route, failed)
}

func respondSuccess(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true, "data": data}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			case "gt", "gte", "lte", "min", "max":
				details = append(details, fmt.Sprintf("%s is out of range", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// parseObjectID parses a hex id, treating blank input as missing.
func parseObjectID(value string) (primitive.ObjectID, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseOptionalObjectID returns nil for blank input and an error for a
// malformed id.
func parseOptionalObjectID(value string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, ok := parseObjectID(value)
	if !ok {
		return nil, fmt.Errorf("invalid id %q", value)
	}
	return &id, nil
}

func parseObjectIDs(values []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		id, ok := parseObjectID(v)
		if !ok {
			return nil, fmt.Errorf("invalid id %q", v)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// canManageCatalog answers 403 unless the caller may change catalogue,
// coupon or offer records.
func canManageCatalog(c *gin.Context, route string) bool {
	if settlement.Can(middleware.ActorFrom(c), settlement.ActionManageCatalog, settlement.Resource{}) {
		return true
	}
	respondWithError(c, http.StatusForbidden, route, "Admin access required")
	return false
}

// Health reports whether the store answers.
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		respondSuccess(c, http.StatusOK, "", gin.H{"status": "ok"})
	}
}
