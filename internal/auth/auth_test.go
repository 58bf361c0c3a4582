package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/models"
	"github.com/ZODIAC3K/refactor-capstone/internal/store/memory"
)

const testPassword = "Sup3r$ecret"

func newTestService(t *testing.T, now *time.Time) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	svc, err := NewService(st, "test-secret", 20*time.Minute, 7*24*time.Hour,
		WithHashCost(bcrypt.MinCost),
		WithClock(func() time.Time { return *now }),
	)
	require.NoError(t, err)
	return svc, st
}

func TestLoginThenAuthenticate(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Email: "Buyer@Example.com", Password: testPassword, FirstName: "Asha", LastName: "Rao"})
	require.NoError(t, err)
	require.Equal(t, "buyer@example.com", user.Email)

	tokens, loggedIn, err := svc.Login(ctx, "buyer@example.com", testPassword)
	require.NoError(t, err)
	require.Equal(t, user.ID, loggedIn.ID)
	require.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)

	actor, err := svc.Authenticate(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, actor.UserID)
	require.Equal(t, models.RoleUser, actor.Role)
	require.False(t, actor.IsAdmin())
}

func TestAuthenticateErrors(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "", "x")
	require.Equal(t, apperr.AuthenticationMissing, apperr.KindOf(err))

	_, err = svc.Authenticate(ctx, "garbage", "x")
	require.Equal(t, apperr.AuthenticationInvalid, apperr.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: testPassword, FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	tokens, _, err := svc.Login(ctx, "a@b.co", testPassword)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, tokens.AccessToken, "not-the-pair")
	require.Equal(t, apperr.AuthenticationInvalid, apperr.KindOf(err))

	now = now.Add(21 * time.Minute)
	_, err = svc.Authenticate(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.Equal(t, apperr.AuthenticationInvalid, apperr.KindOf(err))
}

func TestDeactivatedUserLosesExistingSessions(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@shop.co", testPassword))
	_, admin, err := svc.Login(ctx, "admin@shop.co", testPassword)
	require.NoError(t, err)
	adminActor := Actor{UserID: admin.ID, Role: models.RoleAdmin}

	user, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: testPassword, FirstName: "A", LastName: "B"})
	require.NoError(t, err)
	tokens, _, err := svc.Login(ctx, "a@b.co", testPassword)
	require.NoError(t, err)

	_, err = svc.SetUserStatus(ctx, Actor{UserID: user.ID, Role: models.RoleUser}, user.ID, false)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = svc.SetUserStatus(ctx, adminActor, admin.ID, false)
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	updated, err := svc.SetUserStatus(ctx, adminActor, user.ID, false)
	require.NoError(t, err)
	require.False(t, updated.Status)

	_, err = svc.Authenticate(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	require.Equal(t, "User is inactive", apperr.Message(err))

	_, _, err = svc.Login(ctx, "a@b.co", testPassword)
	require.Equal(t, apperr.Forbidden, apperr.KindOf(err))

	_, err = svc.SetUserStatus(ctx, adminActor, user.ID, true)
	require.NoError(t, err)
	actor, err := svc.Authenticate(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, actor.UserID)
}

func TestLogoutRemovesSession(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "c@d.co", Password: testPassword, FirstName: "C", LastName: "D"})
	require.NoError(t, err)
	tokens, _, err := svc.Login(ctx, "c@d.co", testPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, tokens.AccessToken, tokens.RefreshToken))

	_, err = svc.Authenticate(ctx, tokens.AccessToken, tokens.RefreshToken)
	require.Equal(t, apperr.AuthenticationInvalid, apperr.KindOf(err))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "e@f.co", Password: testPassword, FirstName: "E", LastName: "F"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "e@f.co", "Wrong$pass1")
	require.Equal(t, apperr.AuthenticationInvalid, apperr.KindOf(err))
}

func TestRegisterRejectsDuplicateAndWeakPasswords(t *testing.T) {
	now := time.Now()
	svc, _ := newTestService(t, &now)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "g@h.co", Password: "weak", FirstName: "G", LastName: "H"})
	require.Equal(t, apperr.ValidationFailed, apperr.KindOf(err))

	_, err = svc.Register(ctx, RegisterInput{Email: "g@h.co", Password: testPassword, FirstName: "G", LastName: "H"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterInput{Email: "G@H.co", Password: testPassword, FirstName: "G", LastName: "H"})
	require.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	now := time.Now()
	svc, st := newTestService(t, &now)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@shop.co", testPassword))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin@shop.co", testPassword))

	admin, err := st.FindUserByEmail(ctx, "admin@shop.co")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, admin.Role)
}

func TestStrongPassword(t *testing.T) {
	require.True(t, StrongPassword("Abcdef1!"))
	require.False(t, StrongPassword("abcdef1!"))
	require.False(t, StrongPassword("ABCDEF1!"))
	require.False(t, StrongPassword("Abcdefg!"))
	require.False(t, StrongPassword("Abcdefg1"))
	require.False(t, StrongPassword("Ab1!"))
}
