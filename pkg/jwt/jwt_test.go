package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteTokenRoundTrip(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", 72*time.Hour, time.Hour)
	applicantID := uuid.New()
	interviewID := uuid.New()

	token, jti, err := m.GenerateInviteToken(applicantID, interviewID)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := m.ValidateInviteToken(token)
	require.NoError(t, err)
	assert.Equal(t, applicantID, claims.ApplicantID)
	assert.Equal(t, interviewID, claims.InterviewID)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, applicantID.String(), claims.Subject)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", 72*time.Hour, time.Hour)
	sessionID := uuid.New()
	applicantID := uuid.New()
	interviewID := uuid.New()

	token, err := m.GenerateSessionToken(sessionID, applicantID, interviewID)
	require.NoError(t, err)

	claims, err := m.ValidateSessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
	assert.Equal(t, applicantID, claims.ApplicantID)
	assert.Equal(t, interviewID, claims.InterviewID)
}

// Invite and session tokens are signed with different secrets, so one kind
// must never validate as the other.
func TestTokenKindsDoNotCross(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", 72*time.Hour, time.Hour)

	inviteToken, _, err := m.GenerateInviteToken(uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = m.ValidateSessionToken(inviteToken)
	assert.Error(t, err)

	sessionToken, err := m.GenerateSessionToken(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	_, err = m.ValidateInviteToken(sessionToken)
	assert.Error(t, err)
}

func TestValidateInviteToken_RejectsTampering(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", 72*time.Hour, time.Hour)

	token, _, err := m.GenerateInviteToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.ValidateInviteToken(tampered)
	assert.Error(t, err)
}

func TestValidateInviteToken_RejectsExpired(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", -time.Minute, time.Hour)

	token, _, err := m.GenerateInviteToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = m.ValidateInviteToken(token)
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	m := NewManager("invite-secret", "session-secret", time.Hour, time.Hour)

	first, err := m.HashToken("some.invite.token")
	require.NoError(t, err)
	second, err := m.HashToken("some.invite.token")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, "some.invite.token", first)

	_, err = m.HashToken("")
	assert.Error(t, err)
}
