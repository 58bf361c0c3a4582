package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

type RegisterRequest struct {
	FirstName string `json:"fname" binding:"required"`
	LastName  string `json:"lname" binding:"required"`
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Mobile    string `json:"mobile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CookieOptions controls the session cookies written at login.
type CookieOptions struct {
	Secure bool
}

func Register(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /user"
		defer handlePanic(c, route)

		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := authSvc.Register(ctx, auth.RegisterInput{
			Email:     req.Email,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Mobile:    req.Mobile,
		})
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		logging.FromContext(ctx).Info("user registered", zap.String("userId", user.ID.Hex()))
		respondSuccess(c, http.StatusCreated, "User registered successfully", user)
	}
}

func Login(authSvc *auth.Service, cookies CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /login"
		defer handlePanic(c, route)

		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		tokens, user, err := authSvc.Login(ctx, req.Email, req.Password)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		setSessionCookie(c, auth.AccessCookie, tokens.AccessToken, tokens.AccessTokenExpiry, cookies)
		setSessionCookie(c, auth.RefreshCookie, tokens.RefreshToken, tokens.RefreshTokenExpiry, cookies)

		logging.FromContext(ctx).Info("user login succeeded", zap.String("userId", user.ID.Hex()))
		respondSuccess(c, http.StatusOK, "Login successful", gin.H{
			"user":              user,
			"accessTokenExpiry": tokens.AccessTokenExpiry,
		})
	}
}

func Logout(authSvc *auth.Service, cookies CookieOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /logout"
		defer handlePanic(c, route)

		accessToken, _ := c.Cookie(auth.AccessCookie)
		refreshToken, _ := c.Cookie(auth.RefreshCookie)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		if err := authSvc.Logout(ctx, accessToken, refreshToken); err != nil {
			respondAppError(c, route, err)
			return
		}

		clearSessionCookie(c, auth.AccessCookie, cookies)
		clearSessionCookie(c, auth.RefreshCookie, cookies)
		respondSuccess(c, http.StatusOK, "Logged out", nil)
	}
}

// GetMe returns the account of the authenticated user.
func GetMe(users store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /user"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := users.FindUser(ctx, middleware.ActorFrom(c).UserID)
		if err != nil {
			respondStoreError(c, route, err, "User not found", "Failed to fetch user")
			return
		}

		respondSuccess(c, http.StatusOK, "", userView(user))
	}
}

type userStatusRequest struct {
	ID     string `json:"id" binding:"required"`
	Status *bool  `json:"status" binding:"required"`
}

// SetUserStatus is PATCH /admin/user.
func SetUserStatus(authSvc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/user"
		defer handlePanic(c, route)

		var req userStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, ok := parseObjectID(req.ID)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "Invalid user ID")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		user, err := authSvc.SetUserStatus(ctx, middleware.ActorFrom(c), userID, *req.Status)
		if err != nil {
			respondAppError(c, route, err)
			return
		}

		logging.FromContext(ctx).Info("user status changed", zap.String("targetUserId", user.ID.Hex()), zap.Bool("active", user.Status))
		respondSuccess(c, http.StatusOK, "User updated successfully", userView(user))
	}
}

func userView(user models.User) gin.H {
	return gin.H{
		"_id":    user.ID.Hex(),
		"email":  user.Email,
		"fname":  user.FirstName,
		"lname":  user.LastName,
		"mobile": user.Mobile,
		"role":   user.Role,
		"status": user.Status,
	}
}

func setSessionCookie(c *gin.Context, name, value string, expiry time.Time, opts CookieOptions) {
	maxAge := int(time.Until(expiry).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, maxAge, "/", "", opts.Secure, true)
}

func clearSessionCookie(c *gin.Context, name string, opts CookieOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", opts.Secure, true)
}
