package gameserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

type createCharacterRequest struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	// CharacterClass is accepted as an alias of Class.
	CharacterClass string `json:"character_class"`
}

type characterSummary struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Class  character.Class  `json:"class"`
	Level  int              `json:"level"`
	Status character.Status `json:"status"`
	Zone   string           `json:"zone"`
}

func (s *Server) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var req createCharacterRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	raw := req.Class
	if raw == "" {
		raw = req.CharacterClass
	}
	class, err := character.ParseClass(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id := identityFrom(r.Context())
	c, err := character.Build(id.SessionID, req.Name, class, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.deps.Characters.Create(r.Context(), c); err != nil {
		s.writeError(w, err)
		return
	}
	token, err := s.deps.Issuer.LinkCharacter(id, c.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"character": c,
		"token":     token,
		"message":   c.Name + " has been created! Begin your adventure.",
	})
}

func (s *Server) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	all, err := s.deps.Characters.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]characterSummary, 0, len(all))
	for _, c := range all {
		out = append(out, characterSummary{
			ID: c.ID, Name: c.Name, Class: c.Class, Level: c.Level, Status: c.Status, Zone: c.Zone,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "characters": out, "total": len(out)})
}

func (s *Server) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Characters.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "character": c})
}

// handleMyCharacter prefers the character bound to the token, falling back to the
// agent's oldest character.
func (s *Server) handleMyCharacter(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r.Context())
	var (
		c   *character.Character
		err error
	)
	if id.CharacterID != "" {
		c, err = s.deps.Characters.Get(r.Context(), id.CharacterID)
	}
	if id.CharacterID == "" || errors.Is(err, gameerr.ErrNotFound) {
		c, err = s.deps.Characters.GetByAgent(r.Context(), id.SessionID)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "character": c})
}

// handleRest restores hp and mp to full, reviving a dead character.
func (s *Server) handleRest(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Characters.Update(r.Context(), r.PathValue("id"), (*character.Character).Rest)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "character": c})
}
