package gameserver

import (
	"net/http"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

type exploreRequest struct {
	CharacterID string `json:"character_id"`
	ZoneID      string `json:"zone_id"`
}

type hiddenZone struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleExploreState(w http.ResponseWriter, r *http.Request) {
	characterID := r.URL.Query().Get("character_id")
	if characterID == "" {
		s.writeError(w, gameerr.Validationf("character_id is required"))
		return
	}
	view, err := s.deps.Exploration.Zones(r.Context(), characterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := s.deps.Exploration.State(r.Context(), characterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	adjacent := make([]hiddenZone, len(view.Adjacent))
	for i, id := range view.Adjacent {
		adjacent[i] = hiddenZone{ID: id, Name: "???"}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":              true,
		"current_zone":         view.Current,
		"explored_zones":       view.Explored,
		"adjacent_zones":       adjacent,
		"has_active_encounter": st.ActiveEncounter != nil,
	})
}

// handleExplore returns only the encounter summary; monster details stay hidden until combat.
func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.CharacterID == "" || req.ZoneID == "" {
		s.writeError(w, gameerr.Validationf("character_id and zone_id are required"))
		return
	}
	enc, err := s.deps.Exploration.Explore(r.Context(), req.CharacterID, req.ZoneID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "encounter": enc.Summary()})
}

func (s *Server) handleFight(w http.ResponseWriter, r *http.Request) {
	var req exploreRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.CharacterID == "" {
		s.writeError(w, gameerr.Validationf("character_id is required"))
		return
	}
	sess, err := s.deps.Exploration.Fight(r.Context(), req.CharacterID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, combatStarted(sess))
}
