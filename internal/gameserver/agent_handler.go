package gameserver

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

const challengeInstructions = "Append a nonce to the seed and compute SHA-256. " +
	"Find a nonce that makes the hex digest start with target_prefix."

func (s *Server) handleChallenge(w http.ResponseWriter, _ *http.Request) {
	ch, err := s.deps.Challenges.Generate()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"challenge":    ch,
		"instructions": challengeInstructions,
	})
}

type verifyRequest struct {
	ChallengeID string `json:"challenge_id"`
	Nonce       string `json:"nonce"`
	AgentName   string `json:"agent_name"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	req.AgentName = strings.TrimSpace(req.AgentName)
	if req.ChallengeID == "" || req.Nonce == "" || req.AgentName == "" {
		s.writeError(w, gameerr.Validationf("challenge_id, nonce and agent_name are required"))
		return
	}
	if err := s.deps.Challenges.Verify(req.ChallengeID, req.Nonce); err != nil {
		s.writeError(w, err)
		return
	}
	token, id, err := s.deps.Issuer.Issue(req.AgentName)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("agent verified",
		zap.String("agent_name", id.AgentName),
		zap.String("session_id", id.SessionID),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"session": map[string]any{
			"token":      token,
			"agent_name": id.AgentName,
			"expires_in": int64(s.deps.Issuer.TTL().Seconds()),
		},
	})
}
