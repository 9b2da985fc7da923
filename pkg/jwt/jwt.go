package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Manager handles capture token operations
type Manager struct {
	inviteSecret  string
	sessionSecret string
	inviteExpiry  time.Duration
	sessionExpiry time.Duration
	issuer        string
}

// NewManager creates a new token manager
func NewManager(inviteSecret, sessionSecret string, inviteExpiry, sessionExpiry time.Duration) *Manager {
	return &Manager{
		inviteSecret:  inviteSecret,
		sessionSecret: sessionSecret,
		inviteExpiry:  inviteExpiry,
		sessionExpiry: sessionExpiry,
		issuer:        "interview-assistant",
	}
}

// GenerateInviteToken signs an invite token for an applicant/interview pair.
// The returned jti identifies the invite for one-time consumption.
func (m *Manager) GenerateInviteToken(applicantID, interviewID uuid.UUID) (token string, jti string, err error) {
	now := time.Now()
	jti = uuid.New().String()
	claims := &InviteClaims{
		ApplicantID: applicantID,
		InterviewID: interviewID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.inviteExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   applicantID.String(),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.inviteSecret))
	return token, jti, err
}

// GenerateSessionToken signs a session token for one capture session
func (m *Manager) GenerateSessionToken(sessionID, applicantID, interviewID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		SessionID:   sessionID,
		ApplicantID: applicantID,
		InterviewID: interviewID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			Subject:   sessionID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.sessionSecret))
}

// ValidateInviteToken validates and parses an invite token
func (m *Manager) ValidateInviteToken(tokenString string) (*InviteClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &InviteClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.inviteSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*InviteClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ValidateSessionToken validates and parses a session token
func (m *Manager) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.sessionSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// GetInviteExpiry returns invite token expiry duration
func (m *Manager) GetInviteExpiry() time.Duration {
	return m.inviteExpiry
}

// GetSessionExpiry returns session token expiry duration
func (m *Manager) GetSessionExpiry() time.Duration {
	return m.sessionExpiry
}

// HashToken returns the SHA-256 hex digest of the provided token string.
// This is used to store a non-reversible representation of invite tokens in the DB.
func (m *Manager) HashToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:]), nil
}
