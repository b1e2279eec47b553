package gameserver

import (
	"net/http"

	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

type startCombatRequest struct {
	CharacterIDs []string `json:"character_ids"`
	CharacterID  string   `json:"character_id"`
	PartyID      string   `json:"party_id"`
	MonsterIDs   []string `json:"monster_ids"`
}

type attackRequest struct {
	ActorID string `json:"actor_id"`
	// CharacterID is accepted as an alias of ActorID.
	CharacterID string `json:"character_id"`
	TargetID    string `json:"target_id"`
}

func (s *Server) handleListMonsters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "monsters": s.deps.Combat.Templates()})
}

// participants resolves the combatants a start request names: explicit ids win, then a single
// character id, then a party roster.
func (s *Server) participants(r *http.Request, req startCombatRequest) ([]string, error) {
	switch {
	case len(req.CharacterIDs) > 0:
		return req.CharacterIDs, nil
	case req.CharacterID != "":
		return []string{req.CharacterID}, nil
	case req.PartyID != "":
		p, err := s.deps.Parties.Get(r.Context(), req.PartyID)
		if err != nil {
			return nil, err
		}
		return p.MemberIDs, nil
	default:
		return nil, gameerr.Validationf("character_ids, character_id or party_id is required")
	}
}

func (s *Server) handleStartCombat(w http.ResponseWriter, r *http.Request) {
	var req startCombatRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	ids, err := s.participants(r, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := s.deps.Combat.Start(r.Context(), ids, req.MonsterIDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, combatStarted(sess))
}

func combatStarted(sess *combat.Session) map[string]any {
	return map[string]any{
		"success":      true,
		"combat_id":    sess.ID,
		"status":       sess.Status,
		"turn_order":   sess.TurnOrder,
		"current_turn": sess.CurrentTurn,
		"log":          sess.Log,
		"combat":       sess,
		"message":      "Combat started!",
	}
}

func (s *Server) handleGetCombat(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Combat.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "combat": sess})
}

func (s *Server) handleAttack(w http.ResponseWriter, r *http.Request) {
	var req attackRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	actor := req.ActorID
	if actor == "" {
		actor = req.CharacterID
	}
	if actor == "" || req.TargetID == "" {
		s.writeError(w, gameerr.Validationf("actor_id and target_id are required"))
		return
	}
	res, err := s.deps.Combat.Attack(r.Context(), r.PathValue("id"), actor, req.TargetID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"damage":       res.Damage,
		"log":          res.Entry,
		"combat_ended": res.Ended,
		"result":       res.Result,
		"awards":       res.Awards,
		"drops":        res.Drops,
		"current_turn": res.Session.CurrentTurn,
	})
}
