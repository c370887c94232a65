package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wolfman30/hvac-dispatch/internal/board"
	"github.com/wolfman30/hvac-dispatch/internal/command"
	"github.com/wolfman30/hvac-dispatch/pkg/logging"
)

const voiceIdleTimeout = 5 * time.Minute

// TranscriptMessage is what the browser speech recognizer sends.
type TranscriptMessage struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

// VoiceReply answers one final transcript.
type VoiceReply struct {
	Action  command.Action `json:"action"`
	Message string         `json:"message"`
}

// VoiceHandler streams spoken instructions over a websocket. Every final
// transcript is interpreted on its own against the board; interim ones are dropped.
type VoiceHandler struct {
	board    *board.Board
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

func NewVoiceHandler(b *board.Board, logger *logging.Logger) *VoiceHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &VoiceHandler{
		board: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.Component("voice"),
	}
}

func (h *VoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("voice upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	h.logger.Info("voice session opened", "remote_ip", r.RemoteAddr)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(voiceIdleTimeout))
		var msg TranscriptMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("voice session ended", "error", err)
			}
			return
		}
		if !msg.Final || strings.TrimSpace(msg.Transcript) == "" {
			continue
		}

		intent, res, err := h.board.Interpret(msg.Transcript)
		if err != nil {
			h.logger.Warn("voice command rejected", "error", err)
			continue
		}
		if err := conn.WriteJSON(VoiceReply{Action: intent.Action, Message: res.Message}); err != nil {
			h.logger.Debug("voice reply failed", "error", err)
			return
		}
	}
}
