package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"askblog/app/models"
	"askblog/app/repositories/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAccountService() *AccountService {
	return NewAccountService(mock.NewUserRepository(), bcrypt.MinCost)
}

func TestAccountServiceSignup(t *testing.T) {
	ctx := context.Background()
	service := newTestAccountService()

	user, err := service.Signup(ctx, SignupForm{Username: " alice ", Password1: "correct horse", Password2: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.False(t, user.IsStaff)
	assert.NotEqual(t, []byte("correct horse"), user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword(user.PasswordHash, []byte("correct horse")))

	_, err = service.Signup(ctx, SignupForm{Username: "ALICE", Password1: "another secret", Password2: "another secret"})
	var fe models.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "A user with that username already exists.", fe["username"])
}

func TestAccountServiceSignupValidation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		form  SignupForm
		field string
		msg   string
	}{
		{
			name:  "missing username",
			form:  SignupForm{Password1: "correct horse", Password2: "correct horse"},
			field: "username",
		},
		{
			name:  "bad username characters",
			form:  SignupForm{Username: "bad name", Password1: "correct horse", Password2: "correct horse"},
			field: "username",
		},
		{
			name:  "missing password1",
			form:  SignupForm{Username: "bob", Password2: "correct horse"},
			field: "password1",
		},
		{
			name:  "missing password2",
			form:  SignupForm{Username: "bob", Password1: "correct horse"},
			field: "password2",
		},
		{
			name:  "mismatch",
			form:  SignupForm{Username: "bob", Password1: "correct horse", Password2: "battery staple"},
			field: "password2",
			msg:   "The two password fields didn't match.",
		},
		{
			name:  "too short",
			form:  SignupForm{Username: "bob", Password1: "short", Password2: "short"},
			field: "password2",
			msg:   "This password is too short. It must contain at least 8 characters.",
		},
		{
			name:  "too long",
			form:  SignupForm{Username: "bob", Password1: strings.Repeat("x", 73), Password2: strings.Repeat("x", 73)},
			field: "password2",
		},
		{
			name:  "numeric",
			form:  SignupForm{Username: "bob", Password1: "9081726354", Password2: "9081726354"},
			field: "password2",
			msg:   "This password is entirely numeric.",
		},
		{
			name:  "common",
			form:  SignupForm{Username: "bob", Password1: "Password1", Password2: "Password1"},
			field: "password2",
			msg:   "This password is too common.",
		},
		{
			name:  "similar to username",
			form:  SignupForm{Username: "robertson", Password1: "xxrobertsonxx", Password2: "xxrobertsonxx"},
			field: "password2",
			msg:   "The password is too similar to the username.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestAccountService().Signup(ctx, tt.form)
			var fe models.FieldErrors
			require.True(t, errors.As(err, &fe), "got %v", err)
			require.Contains(t, fe, tt.field)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, fe[tt.field])
			}
		})
	}
}

func TestAccountServiceAuthenticate(t *testing.T) {
	ctx := context.Background()
	service := newTestAccountService()
	_, err := service.Signup(ctx, SignupForm{Username: "carol", Password1: "open sesame", Password2: "open sesame"})
	require.NoError(t, err)

	user, err := service.Authenticate(ctx, "Carol", "open sesame")
	require.NoError(t, err)
	assert.Equal(t, "carol", user.Username)

	_, err = service.Authenticate(ctx, "carol", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "open sesame")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountServiceCreateSuperuser(t *testing.T) {
	ctx := context.Background()
	service := newTestAccountService()

	admin, err := service.CreateSuperuser(ctx, "root", "staff only please")
	require.NoError(t, err)
	assert.True(t, admin.IsStaff)

	loaded, err := service.Authenticate(ctx, "root", "staff only please")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, loaded.ID)
	assert.True(t, loaded.IsStaff)
}
