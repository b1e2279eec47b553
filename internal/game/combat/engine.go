package combat

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/dice"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/game/progression"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
	"github.com/cory-johannsen/agentrpg/internal/keylock"
)

// Outcome is the state of a session after an attack.
type Outcome string

// Attack outcomes.
const (
	OutcomeOngoing Outcome = "ongoing"
	OutcomeVictory Outcome = "victory"
	OutcomeDefeat  Outcome = "defeat"
)

// AttackResult is the outcome of one accepted attack.
type AttackResult struct {
	Damage  int                       `json:"damage"`
	Entry   LogEntry                  `json:"log"`
	Ended   bool                      `json:"combat_ended"`
	Result  Outcome                   `json:"result"`
	Awards  []progression.AwardResult `json:"awards,omitempty"`
	Drops   []string                  `json:"drops,omitempty"`
	Session *Session                  `json:"-"`
}

// Engine runs combat sessions. All methods are safe for concurrent use.
//
// At most one attack per session id is processed at a time; combat start serializes on the
// requested character ids.
type Engine struct {
	chars     character.Repository
	sessions  SessionRepository
	templates *npc.Registry
	src       dice.Source
	logger    *zap.Logger

	sessionLocks *keylock.Locker
	charLocks    *keylock.Locker

	newID func() string
	now   func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithIDs overrides id generation for sessions and monsters.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine.
//
// Precondition: every argument must be non-nil.
// Postcondition: Returns a ready Engine.
func NewEngine(chars character.Repository, sessions SessionRepository, templates *npc.Registry,
	src dice.Source, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		chars:        chars,
		sessions:     sessions,
		templates:    templates,
		src:          src,
		logger:       logger,
		sessionLocks: keylock.New(),
		charLocks:    keylock.New(),
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Templates returns the monster templates combat can be started against.
func (e *Engine) Templates() []*npc.Template {
	return e.templates.All()
}

// Start begins combat between characterIDs and one fresh monster per template id.
//
// Precondition: characterIDs and templateIDs must be non-empty.
// Postcondition: On success every character is in combat and the session is stored with
// status active. On error no session exists and no character status changed.
func (e *Engine) Start(ctx context.Context, characterIDs, templateIDs []string) (*Session, error) {
	if len(templateIDs) == 0 {
		return nil, gameerr.Validationf("at least one monster is required")
	}
	monsters := make([]*npc.Instance, 0, len(templateIDs))
	for _, tid := range templateIDs {
		tmpl, ok := e.templates.Get(tid)
		if !ok {
			return nil, gameerr.NotFoundf("monster template %q not found", tid)
		}
		monsters = append(monsters, npc.NewInstance(e.newID(), tmpl))
	}
	return e.StartWithMonsters(ctx, characterIDs, monsters)
}

// StartWithMonsters begins combat between characterIDs and already-rolled monsters.
//
// Precondition: characterIDs and monsters must be non-empty; monster ids must be unique.
// Postcondition: as for Start.
func (e *Engine) StartWithMonsters(ctx context.Context, characterIDs []string, monsters []*npc.Instance) (*Session, error) {
	if len(characterIDs) == 0 {
		return nil, gameerr.Validationf("at least one character is required")
	}
	if len(monsters) == 0 {
		return nil, gameerr.Validationf("at least one monster is required")
	}
	if hasDuplicates(characterIDs) {
		return nil, gameerr.Validationf("character ids must be unique")
	}

	unlock := e.charLocks.LockAll(characterIDs)
	defer unlock()

	chars := make([]*character.Character, 0, len(characterIDs))
	for _, id := range characterIDs {
		c, err := e.chars.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := checkCanFight(c); err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}

	combatants := make([]Combatant, 0, len(chars)+len(monsters))
	names := make([]string, 0, len(chars))
	for _, c := range chars {
		combatants = append(combatants, FromCharacter(c))
		names = append(names, c.Name)
	}
	enemyIDs := make([]string, 0, len(monsters))
	monsterNames := make([]string, 0, len(monsters))
	for _, m := range monsters {
		combatants = append(combatants, FromMonster(m))
		enemyIDs = append(enemyIDs, m.ID)
		monsterNames = append(monsterNames, m.Name)
	}

	now := e.now()
	s := &Session{
		ID:             e.newID(),
		Type:           TypePvE,
		ParticipantIDs: slices.Clone(characterIDs),
		EnemyIDs:       enemyIDs,
		Monsters:       monsters,
		TurnOrder:      Order(combatants, e.src),
		CurrentTurn:    0,
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
		Log: []LogEntry{{
			Timestamp: now,
			ActorID:   SystemActor,
			Action:    ActionCombatStart,
			Message: fmt.Sprintf("Combat started! %s vs %s",
				strings.Join(names, ", "), strings.Join(monsterNames, ", ")),
		}},
	}

	prev, err := e.enterCombat(ctx, s.ID, characterIDs)
	if err != nil {
		return nil, err
	}
	if err := e.sessions.Create(ctx, s); err != nil {
		e.restoreStatuses(ctx, s.ID, prev)
		return nil, fmt.Errorf("creating combat session: %w", err)
	}

	e.logger.Info("combat started",
		zap.String("combat_id", s.ID),
		zap.Strings("participants", s.ParticipantIDs),
		zap.Strings("enemies", s.EnemyIDs),
		zap.Strings("turn_order", s.TurnOrder),
	)
	return s.Clone(), nil
}

// Get returns the session with id.
//
// Postcondition: Returns a copy of the session, or an error matching gameerr.ErrNotFound.
func (e *Engine) Get(ctx context.Context, id string) (*Session, error) {
	return e.sessions.Get(ctx, id)
}

// Attack resolves one attack by actorID against targetID in session combatID.
//
// The version-checked session save is the commit point: the turn is claimed, and the end
// condition recorded, before any character is written. Character damage, experience and
// status changes follow the save, so a rejected attack never touches a character.
//
// Precondition: combatID, actorID and targetID must be non-empty.
// Postcondition: On error before the save the session and every character are unchanged.
// On success the damage is applied, one attack entry is logged, CurrentTurn advances by
// exactly one and end conditions are evaluated.
func (e *Engine) Attack(ctx context.Context, combatID, actorID, targetID string) (*AttackResult, error) {
	unlock := e.sessionLocks.Lock(combatID)
	defer unlock()

	s, err := e.sessions.Get(ctx, combatID)
	if err != nil {
		return nil, err
	}
	if s.Status.Terminal() {
		return nil, gameerr.Conflictf("combat %s has ended (%s)", s.ID, s.Status)
	}
	if s.CurrentActor() != actorID {
		return nil, gameerr.Conflictf("it is not %s's turn", actorID)
	}

	attacker, err := e.resolveCombatant(ctx, s, actorID)
	if err != nil {
		return nil, err
	}
	target, err := e.resolveCombatant(ctx, s, targetID)
	if err != nil {
		return nil, err
	}
	hp, err := e.participantHP(ctx, s)
	if err != nil {
		return nil, err
	}

	damage := ResolveDamage(attacker, target, e.src)
	switch t := target.(type) {
	case *CharacterCombatant:
		hp[t.ID] = max(0, hp[t.ID]-damage)
	case *MonsterCombatant:
		s.Monster(t.ID).TakeDamage(damage)
	}

	now := e.now()
	entry := LogEntry{
		Timestamp: now,
		ActorID:   actorID,
		Action:    ActionAttack,
		TargetID:  targetID,
		Damage:    damage,
		Message:   fmt.Sprintf("%s hits %s for %d damage!", attacker.DisplayName(), target.DisplayName(), damage),
	}
	s.Log = append(s.Log, entry)
	s.CurrentTurn++
	s.UpdatedAt = now

	res := &AttackResult{Damage: damage, Entry: entry, Result: OutcomeOngoing}
	e.evaluateEnd(s, res, hp)
	if err := e.sessions.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("saving combat session %s: %w", s.ID, err)
	}

	if t, ok := target.(*CharacterCombatant); ok {
		if _, err := e.chars.ApplyDamage(ctx, t.ID, damage); err != nil {
			return nil, fmt.Errorf("applying damage to %s: %w", t.ID, err)
		}
	}
	if res.Ended {
		if err := e.settle(ctx, s, res); err != nil {
			return nil, err
		}
	}

	e.logger.Debug("attack resolved",
		zap.String("combat_id", s.ID),
		zap.String("actor_id", actorID),
		zap.String("target_id", targetID),
		zap.Int("damage", damage),
		zap.Int("current_turn", s.CurrentTurn),
	)
	if res.Ended {
		e.logger.Info("combat ended",
			zap.String("combat_id", s.ID),
			zap.String("result", string(res.Result)),
			zap.Int("turns", s.CurrentTurn),
		)
	}
	res.Session = s.Clone()
	return res, nil
}

// participantHP reads the current hp of every participant.
func (e *Engine) participantHP(ctx context.Context, s *Session) (map[string]int, error) {
	hp := make(map[string]int, len(s.ParticipantIDs))
	for _, id := range s.ParticipantIDs {
		c, err := e.chars.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading participant %s: %w", id, err)
		}
		hp[id] = c.HP
	}
	return hp, nil
}

// evaluateEnd marks s victorious or defeated when an end condition holds, given the
// participants' hp after the current attack. Victory is checked first.
func (e *Engine) evaluateEnd(s *Session, res *AttackResult, hp map[string]int) {
	if s.AllMonstersDown() {
		total := 0
		for _, m := range s.Monsters {
			total += m.ExpReward
		}
		s.Status = StatusVictory
		s.Log = append(s.Log, LogEntry{
			Timestamp: e.now(),
			ActorID:   SystemActor,
			Action:    ActionVictory,
			Message:   fmt.Sprintf("Victory! %d experience earned!", total),
		})
		res.Ended = true
		res.Result = OutcomeVictory
		return
	}
	for _, id := range s.ParticipantIDs {
		if hp[id] > 0 {
			return
		}
	}
	s.Status = StatusDefeat
	s.Log = append(s.Log, LogEntry{
		Timestamp: e.now(),
		ActorID:   SystemActor,
		Action:    ActionDefeat,
		Message:   "Defeat... every party member has fallen.",
	})
	res.Ended = true
	res.Result = OutcomeDefeat
}

// settle releases every participant from the ended session s. On victory the monsters'
// experience is split evenly over all original participants and awarded to the survivors,
// who return to idle, and the monsters' drops are rolled.
func (e *Engine) settle(ctx context.Context, s *Session, res *AttackResult) error {
	victory := res.Result == OutcomeVictory
	var share float64
	if victory {
		total := 0
		for _, m := range s.Monsters {
			total += m.ExpReward
			res.Drops = append(res.Drops, npc.RollDrops(m.Drops, e.src)...)
		}
		share = float64(total) / float64(len(s.ParticipantIDs))
	}
	inParty := len(s.ParticipantIDs) > 1

	for _, id := range s.ParticipantIDs {
		var award *progression.AwardResult
		_, err := e.chars.Update(ctx, id, func(c *character.Character) error {
			if c.CombatID != s.ID {
				return nil
			}
			c.CombatID = ""
			if !victory || c.HP <= 0 {
				return nil
			}
			a := progression.Award(c, share, inParty)
			award = &a
			if c.Status == character.StatusCombat {
				c.Status = character.StatusIdle
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("settling %s after combat %s: %w", id, s.ID, err)
		}
		if award != nil {
			res.Awards = append(res.Awards, *award)
		}
	}
	return nil
}

// resolveCombatant maps id to a participant character or an in-session monster.
func (e *Engine) resolveCombatant(ctx context.Context, s *Session, id string) (Combatant, error) {
	if s.HasParticipant(id) {
		c, err := e.chars.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("loading participant %s: %w", id, err)
		}
		return FromCharacter(c), nil
	}
	if m := s.Monster(id); m != nil {
		return FromMonster(m), nil
	}
	return nil, gameerr.Conflictf("%q is not part of combat %s", id, s.ID)
}

// enterCombat binds every character to combatID, returning the statuses to restore on failure.
func (e *Engine) enterCombat(ctx context.Context, combatID string, ids []string) (map[string]character.Status, error) {
	prev := make(map[string]character.Status, len(ids))
	for _, id := range ids {
		_, err := e.chars.Update(ctx, id, func(c *character.Character) error {
			if err := checkCanFight(c); err != nil {
				return err
			}
			prev[c.ID] = c.Status
			c.Status = character.StatusCombat
			c.CombatID = combatID
			return nil
		})
		if err != nil {
			e.restoreStatuses(ctx, combatID, prev)
			return nil, err
		}
	}
	return prev, nil
}

// restoreStatuses releases characters still bound to combatID and puts back their prior status.
func (e *Engine) restoreStatuses(ctx context.Context, combatID string, prev map[string]character.Status) {
	for id, st := range prev {
		_, err := e.chars.Update(ctx, id, func(c *character.Character) error {
			if c.CombatID == combatID {
				c.CombatID = ""
				c.Status = st
			}
			return nil
		})
		if err != nil {
			e.logger.Error("restoring character status", zap.String("character_id", id), zap.Error(err))
		}
	}
}

func checkCanFight(c *character.Character) error {
	if c.InCombat() {
		return gameerr.Conflictf("%s is already in combat", c.Name)
	}
	switch c.Status {
	case character.StatusCombat:
		return gameerr.Conflictf("%s is already in combat", c.Name)
	case character.StatusDead:
		return gameerr.Conflictf("%s is dead", c.Name)
	}
	return nil
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
