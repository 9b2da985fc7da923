package livekit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"
	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"

	"github.com/hireflowdev/interview-assistant/pkg/config"
)

// Room lifetime knobs. Interview rooms are throwaway: they exist for one
// capture session and disappear shortly after the applicant leaves.
const (
	roomEmptyTimeout     = 600 // seconds before an unjoined room is deleted
	roomDepartureTimeout = 60  // seconds after the last participant leaves
	roomMaxParticipants  = 6   // applicant + a few observers
	candidateTokenTTL    = 4 * time.Hour
	observerTokenTTL     = 8 * time.Hour
)

// Client provisions LiveKit rooms for capture sessions. Everything here is
// best-effort from the orchestrator's point of view: a room failure never
// blocks answer capture.
type Client interface {
	// CreateInterviewRoom creates the room backing one capture session.
	CreateInterviewRoom(ctx context.Context, roomName string, sessionID uuid.UUID) (*RoomInfo, error)

	// DeleteRoom tears the room down.
	DeleteRoom(ctx context.Context, roomName string) error

	// CandidateToken grants the applicant publish + subscribe access.
	CandidateToken(roomName string, applicantID uuid.UUID, displayName string) (string, error)

	// ObserverToken grants an interviewer subscribe-only access.
	ObserverToken(roomName, identity, displayName string) (string, error)

	// StartSessionRecording starts a room-composite egress writing MP4 to
	// object storage. Returns the egress id.
	StartSessionRecording(ctx context.Context, roomName string) (string, error)

	// StopSessionRecording stops a running egress.
	StopSessionRecording(ctx context.Context, egressID string) error

	// URL returns the websocket URL clients connect to.
	URL() string
}

// RoomInfo holds the subset of room state the capture flow cares about.
type RoomInfo struct {
	Name            string
	SID             string
	CreationTime    time.Time
	MaxParticipants int32
	Metadata        string
}

// realClient talks to a live LiveKit deployment.
type realClient struct {
	roomClient *lksdk.RoomServiceClient
	egress     *EgressClient
	url        string
	apiKey     string
	apiSecret  string
}

// NewClient creates a LiveKit client. With UseMock set, rooms and tokens are
// fabricated locally so the capture flow works without a LiveKit deployment.
func NewClient(cfg *config.LiveKitConfig, storageCfg *config.StorageConfig) Client {
	if cfg.UseMock {
		return &mockClient{
			url:       cfg.Host,
			apiKey:    cfg.APIKey,
			apiSecret: cfg.APISecret,
		}
	}

	return &realClient{
		roomClient: lksdk.NewRoomServiceClient(cfg.Host, cfg.APIKey, cfg.APISecret),
		egress:     NewEgressClient(cfg, storageCfg),
		url:        cfg.Host,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
	}
}

// CreateInterviewRoom creates the room backing one capture session.
func (c *realClient) CreateInterviewRoom(ctx context.Context, roomName string, sessionID uuid.UUID) (*RoomInfo, error) {
	room, err := c.roomClient.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:             roomName,
		MaxParticipants:  roomMaxParticipants,
		EmptyTimeout:     roomEmptyTimeout,
		DepartureTimeout: roomDepartureTimeout,
		Metadata:         fmt.Sprintf(`{"session_id":%q}`, sessionID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create interview room: %w", err)
	}

	return &RoomInfo{
		Name:            room.Name,
		SID:             room.Sid,
		CreationTime:    time.Unix(room.CreationTime, 0),
		MaxParticipants: int32(room.MaxParticipants),
		Metadata:        room.Metadata,
	}, nil
}

// DeleteRoom tears the room down.
func (c *realClient) DeleteRoom(ctx context.Context, roomName string) error {
	_, err := c.roomClient.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: roomName})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

// CandidateToken grants the applicant publish + subscribe access.
func (c *realClient) CandidateToken(roomName string, applicantID uuid.UUID, displayName string) (string, error) {
	return c.buildToken(roomName, "applicant-"+applicantID.String(), displayName, true, candidateTokenTTL)
}

// ObserverToken grants an interviewer subscribe-only access.
func (c *realClient) ObserverToken(roomName, identity, displayName string) (string, error) {
	return c.buildToken(roomName, identity, displayName, false, observerTokenTTL)
}

func (c *realClient) buildToken(roomName, identity, displayName string, canPublish bool, ttl time.Duration) (string, error) {
	subscribe := true
	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           roomName,
		CanPublish:     &canPublish,
		CanSubscribe:   &subscribe,
		CanPublishData: &canPublish,
	}

	at := auth.NewAccessToken(c.apiKey, c.apiSecret)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(displayName).
		SetValidFor(ttl)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to generate room token: %w", err)
	}
	return token, nil
}

// StartSessionRecording starts a room-composite egress writing MP4 to object
// storage.
func (c *realClient) StartSessionRecording(ctx context.Context, roomName string) (string, error) {
	return c.egress.StartRoomComposite(ctx, roomName)
}

// StopSessionRecording stops a running egress.
func (c *realClient) StopSessionRecording(ctx context.Context, egressID string) error {
	return c.egress.Stop(ctx, egressID)
}

// URL returns the websocket URL clients connect to.
func (c *realClient) URL() string {
	return c.url
}

// mockClient fabricates rooms and tokens for development and tests.
type mockClient struct {
	url       string
	apiKey    string
	apiSecret string
}

func (m *mockClient) CreateInterviewRoom(_ context.Context, roomName string, _ uuid.UUID) (*RoomInfo, error) {
	return &RoomInfo{
		Name:            roomName,
		SID:             "mock-sid-" + uuid.New().String(),
		CreationTime:    time.Now(),
		MaxParticipants: roomMaxParticipants,
	}, nil
}

func (m *mockClient) DeleteRoom(_ context.Context, _ string) error {
	return nil
}

func (m *mockClient) CandidateToken(roomName string, applicantID uuid.UUID, displayName string) (string, error) {
	return m.buildToken(roomName, "applicant-"+applicantID.String(), displayName, true)
}

func (m *mockClient) ObserverToken(roomName, identity, displayName string) (string, error) {
	return m.buildToken(roomName, identity, displayName, false)
}

// buildToken signs a real grant even in mock mode so client SDKs can decode
// it during local development.
func (m *mockClient) buildToken(roomName, identity, displayName string, canPublish bool) (string, error) {
	subscribe := true
	grant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           roomName,
		CanPublish:     &canPublish,
		CanSubscribe:   &subscribe,
		CanPublishData: &canPublish,
	}

	at := auth.NewAccessToken(m.apiKey, m.apiSecret)
	at.AddGrant(grant).
		SetIdentity(identity).
		SetName(displayName).
		SetValidFor(candidateTokenTTL)

	return at.ToJWT()
}

func (m *mockClient) StartSessionRecording(_ context.Context, _ string) (string, error) {
	return "EG_mock_" + uuid.New().String(), nil
}

func (m *mockClient) StopSessionRecording(_ context.Context, _ string) error {
	return nil
}

func (m *mockClient) URL() string {
	return m.url
}
