package services

import (
	"context"
	"errors"
	"strings"
	"time"

	db "wanderlust/database"
	"wanderlust/models"
	"wanderlust/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns a password into a salted hash and checks it back.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(b), err
}

func (h BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// WelcomeSender delivers the signup greeting.
type WelcomeSender interface {
	Enabled() bool
	SendWelcome(toEmail, username string) error
}

const InvalidCredentialsMessage = "Invalid username or password"

type UserService struct {
	users  UserStore
	hasher PasswordHasher
	mailer WelcomeSender
	log    *zap.Logger
}

func NewUserService(users UserStore, hasher PasswordHasher, mailer WelcomeSender, log *zap.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, mailer: mailer, log: log}
}

func (s *UserService) Register(ctx context.Context, in models.SignupInput) (*models.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, utils.Internal(err)
	}

	user := &models.User{
		Username:  strings.TrimSpace(in.Username),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Password:  hash,
		CreatedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err = s.users.Insert(ctx, user)
	if errors.Is(err, db.ErrDuplicate) {
		return nil, utils.Conflict("A user with the given username is already registered", "/signup")
	}
	if err != nil {
		return nil, utils.Internal(err)
	}

	if s.mailer != nil && s.mailer.Enabled() {
		go func(email, name string) {
			if err := s.mailer.SendWelcome(email, name); err != nil {
				s.log.Warn("failed to send welcome email", zap.String("username", name), zap.Error(err))
			}
		}(user.Email, user.Username)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()), zap.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user when the password matches. Unknown users and
// wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, in models.LoginInput) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if errors.Is(err, db.ErrNotFound) {
		return nil, utils.Unauthenticated(InvalidCredentialsMessage)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}

	if err := s.hasher.Compare(user.Password, in.Password); err != nil {
		return nil, utils.Unauthenticated(InvalidCredentialsMessage)
	}
	return user, nil
}
