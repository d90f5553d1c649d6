package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/internal/apperr"
	"tasktracker/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *testutil.MemStore) {
	t.Helper()
	store := testutil.NewMemStore()
	client, _ := testutil.NewRedis(t)
	svc := NewService(store.Users, NewRedisSessionStore(client), NewTokenIssuer("test-secret", time.Hour)).
		WithCost(bcrypt.MinCost)
	return svc, store
}

func register(t *testing.T, svc *Service, name, email string) string {
	t.Helper()
	_, token, err := svc.Register(context.Background(), RegisterInput{
		Name: name, Email: email, Password: "secret123", PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	return token
}

func TestRegister(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Name:                 "Alice",
		Email:                " Alice@X.com ",
		Password:             "secret123",
		PasswordConfirmation: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice@x.com", user.Email)

	stored, err := store.Users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")))

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "Alice", "alice@x.com")

	tests := []struct {
		name  string
		in    RegisterInput
		field string
	}{
		{"missing name", RegisterInput{Email: "b@x.com", Password: "pw", PasswordConfirmation: "pw"}, "name"},
		{"missing email", RegisterInput{Name: "B", Password: "pw", PasswordConfirmation: "pw"}, "email"},
		{"missing password", RegisterInput{Name: "B", Email: "b@x.com"}, "password"},
		{"mismatch", RegisterInput{Name: "B", Email: "b@x.com", Password: "pw", PasswordConfirmation: "px"}, "password_confirmation"},
		{"duplicate email", RegisterInput{Name: "B", Email: "ALICE@x.com", Password: "pw", PasswordConfirmation: "pw"}, "email"},
		{"password over 72 bytes", RegisterInput{Name: "B", Email: "b@x.com", Password: strings.Repeat("é", 40), PasswordConfirmation: strings.Repeat("é", 40)}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.in)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestRegisterAcceptsMultiBytePasswordWithinLimit(t *testing.T) {
	svc, _ := newTestService(t)
	pw := strings.Repeat("é", 36)

	_, _, err := svc.Register(context.Background(), RegisterInput{
		Name: "Chloé", Email: "chloe@x.com", Password: pw, PasswordConfirmation: pw,
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), LoginInput{Email: "chloe@x.com", Password: pw})
	assert.NoError(t, err)
}

func TestLoginDoesNotEnumerateUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	register(t, svc, "Alice", "alice@x.com")

	_, _, errUnknown := svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret123"})
	_, _, errWrong := svc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "wrong"})

	require.True(t, apperr.IsAuth(errUnknown))
	require.True(t, apperr.IsAuth(errWrong))
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Equal(t, "Invalid credentials", errWrong.Error())

	user, token, err := svc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)
	assert.NotEmpty(t, token)
}

func TestLogoutRevokesEverySession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := register(t, svc, "Alice", "alice@x.com")
	user, second, err := svc.Login(ctx, LoginInput{Email: "alice@x.com", Password: "secret123"})
	require.NoError(t, err)

	bobToken := register(t, svc, "Bob", "bob@x.com")

	require.NoError(t, svc.Logout(ctx, user.ID))
	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.Authenticate(ctx, first)
	assert.True(t, apperr.IsAuth(err))
	_, err = svc.Authenticate(ctx, second)
	assert.True(t, apperr.IsAuth(err))

	_, err = svc.Authenticate(ctx, bobToken)
	assert.NoError(t, err)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Authenticate(ctx, "not-a-token")
	assert.True(t, apperr.IsAuth(err))

	other := NewTokenIssuer("other-secret", time.Hour)
	forged, _, err := other.Issue(1)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, forged)
	assert.True(t, apperr.IsAuth(err))
}
