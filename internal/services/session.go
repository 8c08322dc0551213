package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dryad-restoration/dryad-backend/internal/data/repos"
	types "github.com/dryad-restoration/dryad-backend/internal/domain"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/ctxutil"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/dbctx"
	perr "github.com/dryad-restoration/dryad-backend/internal/pkg/errors"
	"github.com/dryad-restoration/dryad-backend/internal/pkg/logger"
)

type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *types.User `json:"user"`
}

// SessionService is the mock user switch: any active user can be assumed
// without credentials. Tokens only carry who the caller chose to be.
type SessionService interface {
	SwitchUser(dbc dbctx.Context, userID uuid.UUID) (*Session, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type sessionService struct {
	db        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	secretKey []byte
	ttl       time.Duration
}

func NewSessionService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, secretKey string, ttl time.Duration) SessionService {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &sessionService{
		db:        db,
		log:       log.With("service", "SessionService"),
		userRepo:  userRepo,
		secretKey: []byte(secretKey),
		ttl:       ttl,
	}
}

func (s *sessionService) SwitchUser(dbc dbctx.Context, userID uuid.UUID) (*Session, error) {
	if err := requireID("user id", userID); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("%w: user %s is inactive", perr.ErrForbidden, u.ID)
	}
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := SessionClaims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return nil, fmt.Errorf("sign session token: %w", err)
	}
	s.log.Info("Session started", "user_id", u.ID, "role", u.Role)
	return &Session{Token: token, ExpiresAt: exp.UTC(), User: u}, nil
}

// SetContextFromToken verifies the token and attaches the user's current
// role, read from the database, as request data.
func (s *sessionService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("%w: missing token", perr.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctx, fmt.Errorf("%w: parse token: %v", perr.ErrUnauthorized, err)
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("%w: invalid or expired token", perr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("%w: invalid user id in token", perr.ErrUnauthorized)
	}
	u, err := s.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return ctx, fmt.Errorf("%w: %v", perr.ErrUnauthorized, err)
	}
	if !u.IsActive {
		return ctx, fmt.Errorf("%w: user %s is inactive", perr.ErrForbidden, u.ID)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      u.ID,
		Role:        string(u.Role),
	}), nil
}
