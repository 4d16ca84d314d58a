package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/avelin/pairwise/internal/app"
	"github.com/avelin/pairwise/internal/db"
	svcErr "github.com/avelin/pairwise/internal/errors"
	"github.com/avelin/pairwise/internal/repository"
	"github.com/avelin/pairwise/internal/service/directory"
)

// RegisterParams carries the registration form. Avatar is optional and
// stored verbatim; the password is hashed before it reaches the store.
type RegisterParams struct {
	Name      string
	Surname   string
	Email     string
	Gender    string
	Password  string
	Avatar    []byte
	Latitude  *float64
	Longitude *float64
}

// Claims is the JWT payload for a logged-in client.
type Claims struct {
	ClientID uint64 `json:"cid"`
	jwt.RegisteredClaims
}

// Service handles registration, authentication and avatar retrieval.
type Service struct {
	appCtx  *app.AppContext
	uow     *repository.UnitOfWork
	clients *repository.ClientRepository
}

// NewService creates an account service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		uow:     repository.NewUnitOfWork(appCtx.DB),
		clients: repository.NewClientRepository(appCtx.DB),
	}
}

// Register creates a new client. The email must be free among active
// clients; the uniqueness check and the insert share one transaction.
func (s *Service) Register(ctx context.Context, p RegisterParams) (*directory.ClientSummary, error) {
	if p.Name == "" || p.Email == "" || p.Password == "" {
		return nil, errors.New("name, email and password are required")
	}
	if !db.ValidGender(p.Gender) {
		return nil, fmt.Errorf("unknown gender %q", p.Gender)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	client := db.Client{
		Name:         p.Name,
		Surname:      p.Surname,
		Email:        p.Email,
		Gender:       p.Gender,
		PasswordHash: string(hash),
		Avatar:       p.Avatar,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Active:       true,
	}

	err = s.uow.Do(ctx, func(r *repository.Repos) error {
		existing, err := r.Clients.FindByEmail(ctx, p.Email)
		if err != nil {
			return fmt.Errorf("%w: find by email: %v", svcErr.ErrPersistence, err)
		}
		if existing != nil {
			return fmt.Errorf("%q: %w", p.Email, svcErr.ErrEmailTaken)
		}
		if err := r.Clients.Insert(ctx, &client); err != nil {
			// the unique index catches duplicates that race past the
			// pre-check
			if svcErr.Is(err, svcErr.ErrEmailTaken) {
				return err
			}
			return fmt.Errorf("%w: insert client: %v", svcErr.ErrPersistence, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.appCtx.Logger.Info("client registered", "id", client.ID, "email", client.Email)

	return &directory.ClientSummary{
		ID:        client.ID,
		Name:      client.Name,
		Surname:   client.Surname,
		Email:     client.Email,
		Gender:    client.Gender,
		Latitude:  client.Latitude,
		Longitude: client.Longitude,
	}, nil
}

// Login verifies the credentials and returns a signed HS256 token plus
// the client summary. Unknown email and wrong password both map to
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *directory.ClientSummary, error) {
	client, err := s.clients.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("%w: find by email: %v", svcErr.ErrPersistence, err)
	}
	if client == nil {
		return "", nil, svcErr.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(client.PasswordHash), []byte(password)) != nil {
		return "", nil, svcErr.ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		ClientID: client.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.appCtx.Cfg.Auth.TokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.appCtx.Cfg.Auth.JWTSecret))
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return token, &directory.ClientSummary{
		ID:        client.ID,
		Name:      client.Name,
		Surname:   client.Surname,
		Email:     client.Email,
		Gender:    client.Gender,
		Latitude:  client.Latitude,
		Longitude: client.Longitude,
	}, nil
}

// ParseToken validates a token produced by Login and returns its claims.
func (s *Service) ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.appCtx.Cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if c, ok := token.Claims.(*Claims); ok && token.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Avatar returns the stored avatar blob for a client, or ErrNotFound
// when the client does not exist or has no avatar.
func (s *Service) Avatar(ctx context.Context, clientID uint64) ([]byte, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: find client: %v", svcErr.ErrPersistence, err)
	}
	if client == nil || len(client.Avatar) == 0 {
		return nil, fmt.Errorf("avatar for client %d: %w", clientID, svcErr.ErrNotFound)
	}
	return client.Avatar, nil
}
