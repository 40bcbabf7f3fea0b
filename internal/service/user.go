package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// UserStore is the persistence contract for user accounts.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id uint) error
}

// TokenStore is the persistence contract for access tokens.
type TokenStore interface {
	GetOrCreate(ctx context.Context, userID uint) (*domain.AccessToken, error)
	ResolveUser(ctx context.Context, key string) (*domain.User, error)
	DeleteByUser(ctx context.Context, userID uint) error
}

// RegisterInput carries a registration request.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Age       uint
	Password  string
}

// UserService handles registration, login, logout and profile management.
type UserService struct {
	users      UserStore
	tokens     TokenStore
	bcryptCost int
	logger     logger.Logger
}

// NewUserService wires the user service.
func NewUserService(users UserStore, tokens TokenStore, bcryptCost int, log logger.Logger) *UserService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost, logger: log}
}

// Register creates a new account and returns its access token.
// Duplicate username/email and missing fields come back as FieldErrors.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (string, error) {
	fe := domain.FieldErrors{}
	if strings.TrimSpace(in.Username) == "" {
		fe.Add("username", "This field is required.")
	}
	if strings.TrimSpace(in.Email) == "" {
		fe.Add("email", "This field is required.")
	} else if !strings.Contains(in.Email, "@") {
		fe.Add("email", "Enter a valid email address.")
	}
	if in.Password == "" {
		fe.Add("password", "This field is required.")
	}
	if len(fe) > 0 {
		return "", fe
	}

	if taken, err := s.users.UsernameTaken(ctx, in.Username); err != nil {
		return "", err
	} else if taken {
		fe.Add("username", "A user with that username already exists.")
	}
	if taken, err := s.users.EmailTaken(ctx, in.Email); err != nil {
		return "", err
	} else if taken {
		fe.Add("email", "A user with that email already exists.")
	}
	if len(fe) > 0 {
		return "", fe
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return "", err
	}

	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Age:          in.Age,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return "", err
	}

	s.logger.Info("user registered",
		logger.Uint("user_id", u.ID),
		logger.String("username", u.Username))

	tok, err := s.tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return "", err
	}
	return tok.Key, nil
}

// Login checks credentials and returns the user's access token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	tok, err := s.tokens.GetOrCreate(ctx, u.ID)
	if err != nil {
		return "", err
	}
	return tok.Key, nil
}

// Logout deletes the user's live token. The next request with the old
// token is unauthorized.
func (s *UserService) Logout(ctx context.Context, userID uint) error {
	return s.tokens.DeleteByUser(ctx, userID)
}

// Authenticate resolves a bearer token key to its user.
func (s *UserService) Authenticate(ctx context.Context, key string) (*domain.User, error) {
	return s.tokens.ResolveUser(ctx, key)
}

// Profile returns the user's own account.
func (s *UserService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile applies a partial update to the user's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, patch domain.UserPatch) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fe := domain.FieldErrors{}
	if patch.Username != nil && *patch.Username != u.Username {
		if taken, err := s.users.UsernameTaken(ctx, *patch.Username); err != nil {
			return nil, err
		} else if taken {
			fe.Add("username", "A user with that username already exists.")
		}
		u.Username = *patch.Username
	}
	if patch.Email != nil && *patch.Email != u.Email {
		if taken, err := s.users.EmailTaken(ctx, *patch.Email); err != nil {
			return nil, err
		} else if taken {
			fe.Add("email", "A user with that email already exists.")
		}
		u.Email = *patch.Email
	}
	if len(fe) > 0 {
		return nil, fe
	}

	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Age != nil {
		u.Age = *patch.Age
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the user. Bookmarks and token cascade in the DB.
func (s *UserService) DeleteAccount(ctx context.Context, userID uint) error {
	return s.users.Delete(ctx, userID)
}
