package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz-studio-service/internal/auth"
	"quiz-studio-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SignupInput is the registration form.
type SignupInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult carries the issued session token.
type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      domain.Profile `json:"user"`
}

// UserService is the credential service: accounts, passwords and session tokens.
type UserService struct {
	users      UserRepository
	tokens     *auth.TokenManager
	revoked    RevocationStore
	bcryptCost int
	now        func() time.Time
	validate   *validator.Validate
}

func NewUserService(users UserRepository, tokens *auth.TokenManager, revoked RevocationStore, bcryptCost int) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		revoked:    revoked,
		bcryptCost: bcryptCost,
		now:        time.Now,
		validate:   validator.New(),
	}
}

// Signup registers a new account with a hashed password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (domain.Profile, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Struct(in); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, describeInputError(err))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.User{
		ID:             uuid.NewString(),
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   hash,
		ProfilePicture: domain.DefaultProfilePicture,
		CreatedAt:      s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			return domain.Profile{}, err
		}
		return domain.Profile{}, fmt.Errorf("create user: %w", err)
	}
	return user.Profile(), nil
}

// Login checks credentials and issues a session token.
func (s *UserService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	token, id, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: id.ExpiresAt, User: user.Profile()}, nil
}

// Authenticate resolves a token into a requester identity.
func (s *UserService) Authenticate(ctx context.Context, token string) (auth.Identity, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	revoked, err := s.revoked.IsRevoked(ctx, id.TokenID)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return auth.Identity{}, domain.ErrTokenRevoked
	}
	return id, nil
}

// Logout revokes the token behind id until it expires.
func (s *UserService) Logout(ctx context.Context, id auth.Identity) error {
	if id.TokenID == "" {
		return nil
	}
	until := id.ExpiresAt
	if until.IsZero() {
		until = s.now().Add(24 * time.Hour)
	}
	return s.revoked.Revoke(ctx, id.TokenID, until)
}

// Me returns the profile of the requester.
func (s *UserService) Me(ctx context.Context, requesterID string) (domain.Profile, error) {
	if err := domain.RequireIdentity(requesterID); err != nil {
		return domain.Profile{}, err
	}
	user, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return domain.Profile{}, err
	}
	return user.Profile(), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func describeInputError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, strings.ToLower(fe.Field())+" is "+fe.Tag())
	}
	return strings.Join(parts, ", ")
}
