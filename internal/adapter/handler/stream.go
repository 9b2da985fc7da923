package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	capturedto "github.com/hireflowdev/interview-assistant/internal/adapter/dto/capture"
	captureUsecase "github.com/hireflowdev/interview-assistant/internal/usecase/capture"
	usecaseErrors "github.com/hireflowdev/interview-assistant/internal/usecase/errors"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = (streamPongWait * 9) / 10

	// Large enough for JSON commands and PCM frames of a few hundred ms.
	streamReadLimit = 1 << 20
)

// Origin checks are not enforced here: the session token middleware has
// already authorized the request before the upgrade.
var streamUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// streamErrorFrame is an error event pushed to one socket. Kind keeps the
// frame distinguishable from CaptureEvent payloads on the same channel.
type streamErrorFrame struct {
	Kind    string `json:"kind"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Stream handles the capture WebSocket channel
type Stream struct {
	captureService captureUsecase.Service
	logger         *zap.Logger
}

// NewStreamHandler creates a new capture stream handler
func NewStreamHandler(captureService captureUsecase.Service, logger *zap.Logger) *Stream {
	return &Stream{
		captureService: captureService,
		logger:         logger,
	}
}

// Serve handles GET /capture/sessions/:id/stream
// @Summary      Open the capture stream
// @Description  WebSocket channel: binary frames carry PCM audio into the live attempt, text frames carry start/stop/advance commands, outbound frames are capture events
// @Tags         Capture
// @Security     SessionToken
// @Param        id  path  string  true  "Session ID (UUID)"
// @Success      101  "Switching protocols"
// @Failure      400  {object}  map[string]interface{}  "Invalid session ID"
// @Router       /capture/sessions/{id}/stream [get]
func (h *Stream) Serve(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":   "invalid_session_id",
			"message": "session ID must be a valid UUID",
		})
	}

	conn, err := streamUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the handshake failure to the client.
		return nil
	}
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)
	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})

	listenerID, events := h.captureService.AttachListener(sessionID)
	defer h.captureService.DetachListener(sessionID, listenerID)

	if h.logger != nil {
		h.logger.Info("🔌 Capture stream opened",
			zap.String("session_id", sessionID.String()),
			zap.String("listener_id", listenerID.String()),
		)
	}

	// One goroutine owns every write: capture events, command errors, pings,
	// and the close frame when the session's event channel is closed.
	errFrames := make(chan streamErrorFrame, 8)
	done := make(chan struct{})
	var writerWg sync.WaitGroup
	writerWg.Add(1)
	go func() {
		defer writerWg.Done()
		h.writeLoop(conn, events, errFrames, done)
	}()

	h.readLoop(c.Request().Context(), conn, sessionID, errFrames)

	close(done)
	writerWg.Wait()

	if h.logger != nil {
		h.logger.Info("🔌 Capture stream closed",
			zap.String("session_id", sessionID.String()),
			zap.String("listener_id", listenerID.String()),
		)
	}
	return nil
}

// writeLoop drains capture events and error frames onto the socket until the
// read side finishes or the session's event channel closes.
func (h *Stream) writeLoop(conn *websocket.Conn, events <-chan captureUsecase.CaptureEvent, errFrames <-chan streamErrorFrame, done <-chan struct{}) {
	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// Session completed; tell the client before hanging up.
				conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session completed"),
					time.Now().Add(streamWriteWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(event); err != nil {
				return
			}

		case frame := <-errFrames:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-done:
			return
		}
	}
}

// readLoop consumes client frames until the socket errors or closes. Binary
// frames feed the live attempt; text frames are JSON commands.
func (h *Stream) readLoop(ctx context.Context, conn *websocket.Conn, sessionID uuid.UUID, errFrames chan<- streamErrorFrame) {
	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && h.logger != nil {
				h.logger.Warn("⚠️ Capture stream read failed",
					zap.String("session_id", sessionID.String()),
					zap.Error(err),
				)
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			if err := h.captureService.ForwardAudio(ctx, sessionID, payload); err != nil {
				// Frames may trail in after a stop or race the start; they
				// are dropped rather than failing the channel.
				if !errors.Is(err, usecaseErrors.ErrControllerNotRecording) && h.logger != nil {
					h.logger.Warn("⚠️ Audio frame rejected",
						zap.String("session_id", sessionID.String()),
						zap.Error(err),
					)
				}
			}

		case websocket.TextMessage:
			h.handleCommand(ctx, sessionID, payload, errFrames)
		}
	}
}

// handleCommand executes one JSON command frame. Results surface as capture
// events through the session broadcaster; only failures are written back
// directly to this socket.
func (h *Stream) handleCommand(ctx context.Context, sessionID uuid.UUID, payload []byte, errFrames chan<- streamErrorFrame) {
	var cmd capturedto.StreamCommand
	if err := json.Unmarshal(payload, &cmd); err != nil {
		pushErrFrame(errFrames, "invalid_command", "command frames must be JSON with an action field")
		return
	}

	var err error
	switch cmd.Action {
	case "start":
		_, err = h.captureService.StartAnswer(ctx, sessionID)
	case "stop":
		_, err = h.captureService.StopAnswer(ctx, sessionID)
	case "advance":
		_, err = h.captureService.Advance(ctx, sessionID)
	default:
		pushErrFrame(errFrames, "unknown_action", "action must be start, stop, or advance")
		return
	}

	if err != nil {
		pushErrFrame(errFrames, "command_failed", err.Error())
	}
}

// pushErrFrame queues an error frame without ever blocking the read loop
func pushErrFrame(errFrames chan<- streamErrorFrame, code, message string) {
	frame := streamErrorFrame{Kind: "error", Error: code, Message: message}
	select {
	case errFrames <- frame:
	default:
	}
}
