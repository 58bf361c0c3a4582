// Package auth resolves the accessToken/refreshToken cookie pair to an actor
// and issues new session tokens at login.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"

	sessionDescription = "email-login"
)

// Actor is the authenticated principal of a request.
type Actor struct {
	UserID primitive.ObjectID
	Role   string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// SessionStore is the persistence needed by Service.
type SessionStore interface {
	store.Sessions
	store.Users
}

// Tokens is a freshly issued session.
type Tokens struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Service authenticates requests and manages login sessions.
type Service struct {
	store      SessionStore
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	hashCost   int
	now        func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithHashCost overrides the bcrypt cost used for new passwords.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		s.hashCost = cost
	}
}

// NewService constructs a Service. secret signs the JWTs stored in cookies.
func NewService(st SessionStore, secret string, accessTTL, refreshTTL time.Duration, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, errors.New("auth service: store is required")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth service: jwt secret is required")
	}
	s := &Service{
		store:      st,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		hashCost:   bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate resolves a cookie pair to the owning user.
func (s *Service) Authenticate(ctx context.Context, accessToken, refreshToken string) (Actor, error) {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	if accessToken == "" || refreshToken == "" {
		return Actor{}, apperr.New(apperr.AuthenticationMissing, "No access token provided")
	}

	claimedUser, err := s.verify(accessToken)
	if err != nil {
		return Actor{}, apperr.Wrap(apperr.AuthenticationInvalid, "Invalid access token", err)
	}

	session, err := s.store.FindSession(ctx, accessToken, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return Actor{}, apperr.New(apperr.AuthenticationInvalid, "Invalid access token")
	}
	if err != nil {
		return Actor{}, apperr.Wrap(apperr.Internal, "Failed to verify session", err)
	}
	if session.UserID != claimedUser || !session.AccessTokenExpiry.After(s.now()) {
		return Actor{}, apperr.New(apperr.AuthenticationInvalid, "Invalid access token")
	}

	user, err := s.store.FindUser(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return Actor{}, apperr.New(apperr.AuthenticationInvalid, "Invalid access token")
	}
	if err != nil {
		return Actor{}, apperr.Wrap(apperr.Internal, "Failed to verify session", err)
	}

	if !user.Status {
		return Actor{}, apperr.New(apperr.Forbidden, "User is inactive")
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	return Actor{UserID: user.ID, Role: role}, nil
}

// SetUserStatus activates or deactivates an account. A deactivated account
// can neither log in nor use sessions it already holds.
func (s *Service) SetUserStatus(ctx context.Context, actor Actor, userID primitive.ObjectID, active bool) (models.User, error) {
	if !actor.IsAdmin() {
		return models.User{}, apperr.New(apperr.Forbidden, "Admin access required")
	}
	if actor.UserID == userID && !active {
		return models.User{}, apperr.New(apperr.ValidationFailed, "Administrators cannot deactivate themselves")
	}
	err := s.store.SetUserStatus(ctx, userID, active, s.now())
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.New(apperr.NotFound, "User not found")
	}
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Failed to update user", err)
	}
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Failed to load user", err)
	}
	return user, nil
}

// Login checks the password and stores a new session for the user.
func (s *Service) Login(ctx context.Context, email, password string) (Tokens, models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Tokens{}, models.User{}, apperr.New(apperr.ValidationFailed, "Email and password are required")
	}

	user, err := s.store.FindUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return Tokens{}, models.User{}, apperr.New(apperr.AuthenticationInvalid, "Invalid credentials")
	}
	if err != nil {
		return Tokens{}, models.User{}, apperr.Wrap(apperr.Internal, "Login failed", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Tokens{}, models.User{}, apperr.New(apperr.AuthenticationInvalid, "Invalid credentials")
	}
	if !user.Status {
		return Tokens{}, models.User{}, apperr.New(apperr.Forbidden, "User is inactive")
	}

	tokens, err := s.issue(user)
	if err != nil {
		return Tokens{}, models.User{}, apperr.Wrap(apperr.Internal, "Token generation failed", err)
	}

	session := &models.AuthSession{
		AccessToken:        tokens.AccessToken,
		AccessTokenExpiry:  tokens.AccessTokenExpiry,
		RefreshToken:       tokens.RefreshToken,
		RefreshTokenExpiry: tokens.RefreshTokenExpiry,
		UserID:             user.ID,
		Description:        sessionDescription,
		CreatedAt:          s.now(),
	}
	if err := s.store.InsertSession(ctx, session); err != nil {
		return Tokens{}, models.User{}, apperr.Wrap(apperr.Internal, "Login failed", err)
	}
	return tokens, user, nil
}

// Logout removes the session identified by the cookie pair.
func (s *Service) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return apperr.New(apperr.AuthenticationMissing, "No access token provided")
	}
	session, err := s.store.FindSession(ctx, accessToken, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.New(apperr.AuthenticationInvalid, "Invalid access token")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "Logout failed", err)
	}
	if err := s.store.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Wrap(apperr.Internal, "Logout failed", err)
	}
	return nil
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Mobile    string
}

// Register creates a user with the user role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	return s.createUser(ctx, in, models.RoleUser)
}

// EnsureAdmin creates an admin account for email unless one already exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	_, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	_, err = s.createUser(ctx, RegisterInput{Email: email, Password: password, FirstName: "Admin", LastName: "User"}, models.RoleAdmin)
	return err
}

func (s *Service) createUser(ctx context.Context, in RegisterInput, role string) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return models.User{}, apperr.New(apperr.ValidationFailed, "fname, lname, email and password are required")
	}
	if !StrongPassword(in.Password) {
		return models.User{}, apperr.New(apperr.ValidationFailed,
			"Password must contain at least 8 characters, including one lowercase letter, one uppercase letter, one number, and one special character")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "Password hash failed", err)
	}

	now := s.now()
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Mobile:       strings.TrimSpace(in.Mobile),
		Role:         role,
		Status:       true,
		CreatedAt:    now,
		ModifiedAt:   now,
	}
	if err := s.store.InsertUser(ctx, &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return models.User{}, apperr.New(apperr.Conflict, "Email already registered")
		}
		return models.User{}, apperr.Wrap(apperr.Internal, "Failed to create user", err)
	}
	return user, nil
}

// StrongPassword requires at least 8 characters with a lowercase letter, an
// uppercase letter, a digit and a symbol.
func StrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func (s *Service) issue(user models.User) (Tokens, error) {
	now := s.now()
	accessExpiry := now.Add(s.accessTTL)
	refreshExpiry := now.Add(s.refreshTTL)

	access, err := s.sign(user, "access", accessExpiry)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.sign(user, "refresh", refreshExpiry)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{
		AccessToken:        access,
		AccessTokenExpiry:  accessExpiry,
		RefreshToken:       refresh,
		RefreshTokenExpiry: refreshExpiry,
	}, nil
}

func (s *Service) sign(user models.User, typ string, expiry time.Time) (string, error) {
	claims := jwt.MapClaims{
		"userId": user.ID.Hex(),
		"role":   user.Role,
		"typ":    typ,
		"jti":    uuid.NewString(),
		"exp":    expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) verify(raw string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return primitive.NilObjectID, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return primitive.NilObjectID, errors.New("invalid token claims")
	}
	if typ, _ := claims["typ"].(string); typ != "access" {
		return primitive.NilObjectID, fmt.Errorf("unexpected token type %q", typ)
	}
	userIDValue, _ := claims["userId"].(string)
	return primitive.ObjectIDFromHex(userIDValue)
}
