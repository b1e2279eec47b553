package gameserver

import (
	"net/http"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

type createPartyRequest struct {
	Name     string `json:"name"`
	LeaderID string `json:"leader_id"`
}

type partyMemberRequest struct {
	CharacterID string `json:"character_id"`
	NewLeaderID string `json:"new_leader_id"`
}

type partySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	LeaderID    string `json:"leader_id"`
	MemberCount int    `json:"member_count"`
	MaxSize     int    `json:"max_size"`
}

func (s *Server) handleListParties(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Parties.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]partySummary, 0, len(all))
	for _, p := range all {
		out = append(out, partySummary{
			ID: p.ID, Name: p.Name, LeaderID: p.LeaderID, MemberCount: len(p.MemberIDs), MaxSize: p.MaxSize,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "parties": out})
}

func (s *Server) handleCreateParty(w http.ResponseWriter, r *http.Request) {
	var req createPartyRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	p, err := s.deps.Parties.Create(r.Context(), req.Name, req.LeaderID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "party_id": p.ID, "party": p})
}

func (s *Server) handleGetParty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.deps.Parties.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	members, err := s.deps.Parties.Members(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p, "members": members})
}

func (s *Server) memberRequest(w http.ResponseWriter, r *http.Request) (partyMemberRequest, bool) {
	var req partyMemberRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return req, false
	}
	if req.CharacterID == "" {
		s.writeError(w, gameerr.Validationf("character_id is required"))
		return req, false
	}
	return req, true
}

func (s *Server) handleJoinParty(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Parties.Join(r.Context(), r.PathValue("id"), req.CharacterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p})
}

// handleLeaveParty reports a null party when the last member left and the party disbanded.
func (s *Server) handleLeaveParty(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	p, err := s.deps.Parties.Leave(r.Context(), req.CharacterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p, "disbanded": p == nil})
}

func (s *Server) handleDisbandParty(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	if err := s.deps.Parties.Disband(r.Context(), r.PathValue("id"), req.CharacterID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleTransferLeadership(w http.ResponseWriter, r *http.Request) {
	req, ok := s.memberRequest(w, r)
	if !ok {
		return
	}
	if req.NewLeaderID == "" {
		s.writeError(w, gameerr.Validationf("new_leader_id is required"))
		return
	}
	p, err := s.deps.Parties.TransferLeadership(r.Context(), r.PathValue("id"), req.CharacterID, req.NewLeaderID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "party": p})
}
