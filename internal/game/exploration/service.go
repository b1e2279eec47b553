package exploration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/encounter"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/game/world"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
	"github.com/cory-johannsen/agentrpg/internal/keylock"
)

// ZoneRef names an explored zone.
type ZoneRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ZoneView is what a character knows about the map. Adjacent zones are listed by id only.
type ZoneView struct {
	Current  string    `json:"current"`
	Explored []ZoneRef `json:"explored"`
	Adjacent []string  `json:"adjacent"`
}

// Service coordinates exploration. All methods are safe for concurrent use; work on one
// character is serialized.
type Service struct {
	chars  character.Repository
	states StateRepository
	world  *world.Manager
	gen    *encounter.Generator
	engine *combat.Engine
	logger *zap.Logger
	locks  *keylock.Locker
	now    func() time.Time
}

// NewService creates a Service.
//
// Precondition: every argument must be non-nil.
func NewService(chars character.Repository, states StateRepository, w *world.Manager,
	gen *encounter.Generator, engine *combat.Engine, logger *zap.Logger) *Service {
	return &Service{
		chars:  chars,
		states: states,
		world:  w,
		gen:    gen,
		engine: engine,
		logger: logger,
		locks:  keylock.New(),
		now:    time.Now,
	}
}

// Explore moves the character into zoneID and rolls an encounter there.
//
// Postcondition: On success the encounter becomes the character's active encounter and the
// zone is marked explored. On error nothing changes.
func (s *Service) Explore(ctx context.Context, characterID, zoneID string) (*encounter.Encounter, error) {
	zone, ok := s.world.Zone(zoneID)
	if !ok {
		return nil, gameerr.Validationf("unknown zone %q", zoneID)
	}

	unlock := s.locks.Lock(characterID)
	defer unlock()

	c, err := s.chars.Get(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if c.InCombat() {
		return nil, gameerr.Conflictf("%s is in combat", c.Name)
	}
	switch c.Status {
	case character.StatusCombat:
		return nil, gameerr.Conflictf("%s is in combat", c.Name)
	case character.StatusDead:
		return nil, gameerr.Conflictf("%s is dead", c.Name)
	}
	if c.Level < zone.MinLevel {
		return nil, gameerr.Validationf("level too low: %s requires level %d", zone.ID, zone.MinLevel)
	}

	st, err := s.load(ctx, characterID)
	if err != nil {
		return nil, err
	}
	enc, err := s.gen.Generate(zone, c.Level)
	if err != nil {
		return nil, err
	}

	st.CurrentZone = zone.ID
	st.markExplored(zone.ID)
	st.ActiveEncounter = enc
	st.UpdatedAt = s.now()
	if err := s.states.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("saving exploration state: %w", err)
	}
	if _, err := s.chars.Update(ctx, characterID, func(c *character.Character) error {
		c.Zone = zone.ID
		return nil
	}); err != nil {
		return nil, fmt.Errorf("moving character: %w", err)
	}

	s.logger.Debug("explored",
		zap.String("character_id", characterID),
		zap.String("zone_id", zone.ID),
		zap.String("encounter", string(enc.Kind)),
		zap.Int("monsters", len(enc.Monsters)),
	)
	return enc, nil
}

// Zones returns the character's view of the map.
func (s *Service) Zones(ctx context.Context, characterID string) (*ZoneView, error) {
	if _, err := s.chars.Get(ctx, characterID); err != nil {
		return nil, err
	}
	st, err := s.load(ctx, characterID)
	if err != nil {
		return nil, err
	}
	view := &ZoneView{Current: st.CurrentZone, Adjacent: s.world.Adjacent(st.CurrentZone)}
	for _, id := range st.ExploredZones {
		view.Explored = append(view.Explored, ZoneRef{ID: id, Name: s.world.Name(id)})
	}
	if view.Adjacent == nil {
		view.Adjacent = []string{}
	}
	return view, nil
}

// State returns the character's exploration state.
func (s *Service) State(ctx context.Context, characterID string) (*State, error) {
	if _, err := s.chars.Get(ctx, characterID); err != nil {
		return nil, err
	}
	return s.load(ctx, characterID)
}

// Fight starts combat against the character's active monster encounter.
//
// Postcondition: On success the encounter is cleared and its monsters are recorded as
// discovered. Without an active monster encounter it returns a conflict.
func (s *Service) Fight(ctx context.Context, characterID string) (*combat.Session, error) {
	unlock := s.locks.Lock(characterID)
	defer unlock()

	if _, err := s.chars.Get(ctx, characterID); err != nil {
		return nil, err
	}
	st, err := s.load(ctx, characterID)
	if err != nil {
		return nil, err
	}
	enc := st.ActiveEncounter
	if enc == nil || enc.Kind != encounter.KindMonster || len(enc.Monsters) == 0 {
		return nil, gameerr.Conflictf("no monster encounter to fight")
	}

	monsters := make([]*npc.Instance, len(enc.Monsters))
	names := make([]string, len(enc.Monsters))
	for i, m := range enc.Monsters {
		monsters[i] = m.Clone()
		names[i] = m.Name
	}
	sess, err := s.engine.StartWithMonsters(ctx, []string{characterID}, monsters)
	if err != nil {
		return nil, err
	}

	st.ActiveEncounter = nil
	st.discover(names...)
	st.UpdatedAt = s.now()
	if err := s.states.Save(ctx, st); err != nil {
		s.logger.Error("clearing encounter after combat start",
			zap.String("character_id", characterID),
			zap.String("combat_id", sess.ID),
			zap.Error(err),
		)
	}
	return sess, nil
}

// load returns the stored state, or a fresh one at the start zone.
func (s *Service) load(ctx context.Context, characterID string) (*State, error) {
	st, err := s.states.Get(ctx, characterID)
	if errors.Is(err, gameerr.ErrNotFound) {
		return NewState(characterID, s.world.StartZone()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading exploration state: %w", err)
	}
	return st, nil
}
