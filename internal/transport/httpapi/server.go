// Package httpapi exposes the engine API over HTTP JSON for transport/UI
// collaborators: create game, process round, read state, check end.
package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"merchants.ai/internal/game"
	"merchants.ai/internal/protocol"
)

type Engine interface {
	CreateGame(specs []game.PlayerSpec) (game.GameState, error)
	ProcessRound(ctx context.Context, gameID string) ([]game.GameAction, error)
	CheckGameEnd(gameID string) (bool, error)
	GetGameState(gameID string) (game.GameState, error)
}

type Server struct {
	engine Engine
	log    *log.Logger
}

func NewServer(engine Engine, logger *log.Logger) *Server {
	return &Server{engine: engine, log: logger}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/games", s.handleCreate)
	mux.HandleFunc("POST /v1/games/{id}/round", s.handleRound)
	mux.HandleFunc("GET /v1/games/{id}", s.handleState)
	mux.HandleFunc("GET /v1/games/{id}/end", s.handleEnd)
}

type createRequest struct {
	Players []struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Prompt string `json:"prompt"`
		Agent  *bool  `json:"agent"`
	} `json:"players"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, protocol.ErrProtoBadRequest, "invalid JSON body")
		return
	}
	specs := make([]game.PlayerSpec, 0, len(req.Players))
	for _, p := range req.Players {
		agent := true
		if p.Agent != nil {
			agent = *p.Agent
		}
		specs = append(specs, game.PlayerSpec{ID: p.ID, Name: p.Name, Prompt: p.Prompt, Agent: agent})
	}
	state, err := s.engine.CreateGame(specs)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	actions, err := s.engine.ProcessRound(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	state, err := s.engine.GetGameState(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	ended, err := s.engine.CheckGameEnd(r.PathValue("id"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ended": ended})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	code := protocol.CodeFor(err)
	status := http.StatusBadRequest
	switch code {
	case protocol.ErrGameNotFound:
		status = http.StatusNotFound
	case protocol.ErrInternal:
		status = http.StatusInternalServerError
	}
	if s.log != nil && status == http.StatusInternalServerError {
		s.log.Printf("ERROR %v", err)
	}
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, protocol.ErrorMsg{Type: protocol.TypeError, Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
