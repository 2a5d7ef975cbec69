// Package ws streams the append-only action log of a game to websocket
// observers. Observers are read-only: they never mutate game state.
package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"merchants.ai/internal/game"
	"merchants.ai/internal/protocol"
)

// GameReader is the slice of the engine observers need.
type GameReader interface {
	GetGameState(gameID string) (game.GameState, error)
	ActionsSince(gameID string, from int) ([]game.GameAction, int, error)
	CheckGameEnd(gameID string) (bool, error)
}

type Server struct {
	engine GameReader
	log    *log.Logger

	// Poll interval for new actions. The log is append-only, so polling
	// with a resume offset loses nothing.
	interval time.Duration

	upgrader websocket.Upgrader
}

func NewServer(engine GameReader, logger *log.Logger) *Server {
	return &Server{
		engine:   engine,
		log:      logger,
		interval: 500 * time.Millisecond,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		gameID, from, ok := s.handshake(conn)
		if !ok {
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Reader loop only watches for close.
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		s.stream(ctx, conn, gameID, from)
	}
}

func (s *Server) handshake(conn *websocket.Conn) (gameID string, from int, ok bool) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", 0, false
	}
	_ = conn.SetReadDeadline(time.Time{})

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = writeJSON(conn, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrProtoBadRequest, Message: "expected HELLO"})
		return "", 0, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return "", 0, false
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.ErrProtoBadRequest, Message: "bad protocol_version"})
		return "", 0, false
	}

	state, err := s.engine.GetGameState(hello.GameID)
	if err != nil {
		_ = writeJSON(conn, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.CodeFor(err), Message: err.Error()})
		return "", 0, false
	}
	if err := writeJSON(conn, protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		GameID:          hello.GameID,
		State:           state,
	}); err != nil {
		return "", 0, false
	}
	return hello.GameID, hello.FromIndex, true
}

func (s *Server) stream(ctx context.Context, conn *websocket.Conn, gameID string, from int) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		actions, next, err := s.engine.ActionsSince(gameID, from)
		if err != nil {
			_ = writeJSON(conn, protocol.ErrorMsg{Type: protocol.TypeError, Code: protocol.CodeFor(err), Message: err.Error()})
			return
		}
		if len(actions) > 0 {
			if err := writeJSON(conn, protocol.ActionsMsg{
				Type:    protocol.TypeActions,
				GameID:  gameID,
				From:    from,
				Next:    next,
				Actions: actions,
			}); err != nil {
				return
			}
			from = next
		}

		ended, err := s.engine.CheckGameEnd(gameID)
		if err != nil || !ended {
			continue
		}
		state, err := s.engine.GetGameState(gameID)
		if err == nil && state.Ended {
			_ = writeJSON(conn, protocol.StateMsg{Type: protocol.TypeState, GameID: gameID, State: state})
			return
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
