package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"askblog/app/models"
	"askblog/app/repositories"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "12345678": true, "123456789": true,
	"1234567890": true, "qwertyuiop": true, "qwerty123": true, "iloveyou": true,
	"11111111": true, "abc12345": true, "letmein1": true, "sunshine": true,
	"princess": true, "football": true, "baseball": true, "welcome1": true,
}

// SignupForm carries the fields of the registration form.
type SignupForm struct {
	Username  string
	Password1 string
	Password2 string
}

// AccountService registers and authenticates users.
type AccountService struct {
	userRepo  repositories.UserRepository
	cost      int
	dummyHash []byte
}

// NewAccountService creates an AccountService hashing passwords at the
// given bcrypt cost. Zero selects bcrypt.DefaultCost.
func NewAccountService(userRepo repositories.UserRepository, cost int) *AccountService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// Compared against when a username is unknown so that lookups take
	// about as long as real password checks.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("not a real password"), cost)
	return &AccountService{userRepo: userRepo, cost: cost, dummyHash: dummy}
}

// Signup validates the form and creates a regular account.
func (s *AccountService) Signup(ctx context.Context, form SignupForm) (*models.User, error) {
	return s.register(ctx, form, false)
}

// CreateSuperuser creates a staff account able to open the admin dashboard.
func (s *AccountService) CreateSuperuser(ctx context.Context, username, password string) (*models.User, error) {
	return s.register(ctx, SignupForm{Username: username, Password1: password, Password2: password}, true)
}

func (s *AccountService) register(ctx context.Context, form SignupForm, staff bool) (*models.User, error) {
	user := &models.User{Username: strings.TrimSpace(form.Username), IsStaff: staff}

	fe := models.FieldErrors{}
	if err := user.Validate(); err != nil {
		var verrs models.FieldErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for k, v := range verrs {
			fe.Add(k, v)
		}
	}
	checkPasswords(fe, user.Username, form.Password1, form.Password2)
	if err := fe.Err(); err != nil {
		return nil, fmt.Errorf("invalid signup: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.Password1), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = hash
	user.BeforeCreate()

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("invalid signup: %w", models.FieldErrors{
				"username": "A user with that username already exists.",
			})
		}
		return nil, err
	}
	return user, nil
}

// checkPasswords applies the confirmation and strength rules, reporting
// on password1 for a missing value and on password2 otherwise.
func checkPasswords(fe models.FieldErrors, username, password1, password2 string) {
	if password1 == "" {
		fe.Add("password1", "This field is required.")
	}
	if password2 == "" {
		fe.Add("password2", "This field is required.")
		return
	}
	if password1 == "" {
		return
	}
	if password1 != password2 {
		fe.Add("password2", "The two password fields didn't match.")
		return
	}

	switch {
	case len([]rune(password1)) < minPasswordLength:
		fe.Add("password2", fmt.Sprintf("This password is too short. It must contain at least %d characters.", minPasswordLength))
	case len(password1) > maxPasswordBytes:
		fe.Add("password2", fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes))
	case isNumeric(password1):
		fe.Add("password2", "This password is entirely numeric.")
	case commonPasswords[strings.ToLower(password1)]:
		fe.Add("password2", "This password is too common.")
	case username != "" && strings.Contains(strings.ToLower(password1), strings.ToLower(username)):
		fe.Add("password2", "The password is too similar to the username.")
	}
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Authenticate returns the user whose username and password match.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
