// Package gameserver exposes the game over HTTP with JSON bodies.
package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/auth"
	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/game/party"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
	"github.com/cory-johannsen/agentrpg/internal/observability"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Deps are the services the HTTP surface routes to.
type Deps struct {
	Challenges  *auth.Challenges
	Issuer      *auth.Issuer
	Characters  character.Repository
	Combat      *combat.Engine
	Exploration *exploration.Service
	Parties     *party.Service
	// Health reports backend reachability; nil means always healthy.
	Health func(ctx context.Context) error
}

// Server routes HTTP requests to the game services.
type Server struct {
	deps   Deps
	logger *zap.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server and registers every route.
//
// Precondition: every Deps field except Health must be non-nil; logger must be non-nil.
func NewServer(deps Deps, logger *zap.Logger) *Server {
	s := &Server{deps: deps, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the root handler wrapped with access logging.
func (s *Server) Handler() http.Handler {
	return observability.AccessLog(s.logger, s.mux)
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.mux.HandleFunc("POST /api/agents/challenge", s.handleChallenge)
	s.mux.HandleFunc("POST /api/agents/verify", s.handleVerify)

	s.mux.HandleFunc("GET /api/characters", s.handleListCharacters)
	s.mux.HandleFunc("POST /api/characters", s.authed(s.handleCreateCharacter))
	s.mux.HandleFunc("GET /api/characters/me", s.authed(s.handleMyCharacter))
	s.mux.HandleFunc("GET /api/characters/{id}", s.handleGetCharacter)
	s.mux.HandleFunc("POST /api/characters/{id}/rest", s.authed(s.handleRest))

	s.mux.HandleFunc("GET /api/combat/monsters", s.handleListMonsters)
	s.mux.HandleFunc("POST /api/combat", s.authed(s.handleStartCombat))
	s.mux.HandleFunc("GET /api/combat/{id}", s.handleGetCombat)
	s.mux.HandleFunc("POST /api/combat/{id}/attack", s.authed(s.handleAttack))

	s.mux.HandleFunc("GET /api/explore", s.handleExploreState)
	s.mux.HandleFunc("POST /api/explore", s.authed(s.handleExplore))
	s.mux.HandleFunc("POST /api/explore/fight", s.authed(s.handleFight))

	s.mux.HandleFunc("GET /api/parties", s.handleListParties)
	s.mux.HandleFunc("POST /api/parties", s.authed(s.handleCreateParty))
	s.mux.HandleFunc("POST /api/parties/leave", s.authed(s.handleLeaveParty))
	s.mux.HandleFunc("GET /api/parties/{id}", s.handleGetParty)
	s.mux.HandleFunc("POST /api/parties/{id}/join", s.authed(s.handleJoinParty))
	s.mux.HandleFunc("POST /api/parties/{id}/disband", s.authed(s.handleDisbandParty))
	s.mux.HandleFunc("POST /api/parties/{id}/leader", s.authed(s.handleTransferLeadership))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health != nil {
		if err := s.deps.Health(r.Context()); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"})
}

type identityKey struct{}

// authed requires a valid bearer token and stores its identity on the request context.
func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.writeError(w, gameerr.Unauthenticatedf("missing authorization"))
			return
		}
		id, err := s.deps.Issuer.Validate(strings.TrimSpace(token))
		if err != nil {
			s.writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	}
}

func identityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey{}).(auth.Identity)
	return id
}

func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return gameerr.Validationf("request body is required")
		}
		return gameerr.Wrap(err, gameerr.KindValidation, "malformed JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

// writeError maps err to its kind's status. Internal errors are logged and reported generically.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := gameerr.KindOf(err)
	if kind == gameerr.KindInternal {
		s.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, kind.HTTPStatus(), errorBody{
		Success: false,
		Error:   gameerr.MessageOf(err),
		Code:    kind.String(),
	})
}
