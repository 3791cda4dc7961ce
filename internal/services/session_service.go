package services

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "budgettracker/internal/errors"
	"budgettracker/internal/logger"
	"budgettracker/internal/models"
)

const sessionIssuer = "budget-tracker"

// SessionClaims are the claims carried by the session cookie. The JWT ID is
// the primary key of the backing sessions row.
type SessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// sessionService signs session tokens and tracks them in the sessions table.
type sessionService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a new SessionServicer signing with secret.
func NewSessionService(db *gorm.DB, secret string, ttl time.Duration) SessionServicer {
	return &sessionService{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Create stores a new session row for userID and returns its signed token.
func (s *sessionService) Create(userID uint) (string, *models.Session, error) {
	now := s.now().UTC()
	// Time-ordered ids keep the primary key index append-mostly.
	id := uuid.NewString()
	if v7, err := uuid.NewV7(); err == nil {
		id = v7.String()
	}
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	// Expired rows are only useful until they lapse.
	if err := s.db.Where("user_id = ? AND expires_at < ?", userID, now).Delete(&models.Session{}).Error; err != nil {
		logger.Get().Warnw("failed to purge expired sessions", "error", err, "user_id", userID)
	}

	if err := s.db.Create(session).Error; err != nil {
		logger.Get().Errorw("failed to create session", "error", err, "user_id", userID)
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, session, nil
}

// Validate checks the token signature and expiry, then that its session row
// exists, belongs to the same user and has not been revoked.
func (s *sessionService) Validate(token string) (*models.Session, error) {
	claims, err := s.parse(token, jwt.WithTimeFunc(s.now), jwt.WithIssuer(sessionIssuer))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrSessionExpired, err)
	}

	var session models.Session
	result := s.db.Where("id = ?", claims.ID).Limit(1).Find(&session)
	if result.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 || session.UserID != claims.UserID {
		return nil, apperrors.ErrUnauthorized
	}
	if !session.Active(s.now()) {
		return nil, apperrors.ErrSessionExpired
	}
	return &session, nil
}

// Revoke marks the token's session as revoked. Expired tokens are accepted
// so that logging out never fails on an old cookie.
func (s *sessionService) Revoke(token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrUnauthorized, err)
	}

	if err := s.db.Model(&models.Session{}).Where("id = ?", claims.ID).Update("revoked", true).Error; err != nil {
		logger.Get().Errorw("failed to revoke session", "error", err, "session_id", claims.ID)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *sessionService) parse(token string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	claims := &SessionClaims{}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ID == "" {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}
