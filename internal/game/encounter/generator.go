package encounter

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/agentrpg/internal/game/dice"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/game/world"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// MaxGroupSize caps the number of monsters in one encounter.
const MaxGroupSize = 3

// Encounter chances, in percent.
const (
	monsterChancePerDanger = 10
	treasureChance         = 5
	eventChance            = 10
)

const safeZoneMessage = "A peaceful town plaza. Set out on an adventure."

var eventMessages = []string{
	"You find an old gravestone. Something is written on it...",
	"You hear a strange sound in the distance.",
	"You find a torn piece of a map on the ground.",
	"You sense a mysterious energy.",
}

var quietMessages = []string{
	"A quiet path. Keep exploring.",
	"Nothing happens.",
	"Only the sound of your footsteps echoes.",
	"This might be a good place to rest for a while.",
}

// Generator rolls encounters. It holds no mutable state and is safe for concurrent use
// when its Source is.
type Generator struct {
	pool      []PoolEntry
	templates *npc.Registry
	src       dice.Source
	newID     func() string
	now       func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option {
	return func(g *Generator) { g.newID = newID }
}

// WithClock overrides the clock.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// NewGenerator creates a Generator drawing monsters from pool.
//
// Precondition: pool must have passed ValidatePool against templates; src must be non-nil.
func NewGenerator(pool []PoolEntry, templates *npc.Registry, src dice.Source, opts ...Option) *Generator {
	g := &Generator{
		pool:      pool,
		templates: templates,
		src:       src,
		newID:     uuid.NewString,
		now:       time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Generate rolls an encounter for a character of characterLevel in zone.
//
// Precondition: zone must be non-nil.
// Postcondition: Safe zones always yield KindNothing. A monster roll with no eligible pool
// entry returns a validation error instead of an empty monster encounter.
func (g *Generator) Generate(zone *world.Zone, characterLevel int) (*Encounter, error) {
	enc := &Encounter{ID: g.newID(), CreatedAt: g.now()}
	if zone.Safe {
		enc.Kind = KindNothing
		enc.Message = safeZoneMessage
		return enc, nil
	}

	roll := dice.Uniform(g.src, 0, 100)
	monsterChance := float64(zone.DangerLevel * monsterChancePerDanger)
	switch {
	case roll < monsterChance:
		monsters := g.monsters(zone.DangerLevel, characterLevel)
		if len(monsters) == 0 {
			return nil, gameerr.Validationf("no monsters can appear for a level %d character in zone %q", characterLevel, zone.ID)
		}
		enc.Kind = KindMonster
		enc.Monsters = monsters
		enc.Message = "An enemy appears!"
		if len(monsters) > 1 {
			enc.Message = "Enemies appear!"
		}
	case roll < monsterChance+treasureChance:
		enc.Kind = KindTreasure
		enc.TreasureID = RandomTreasureID
		enc.Message = "You found a hidden treasure!"
	case roll < monsterChance+treasureChance+eventChance:
		enc.Kind = KindEvent
		enc.EventID = RandomEventID
		enc.Message = eventMessages[dice.Pick(g.src, len(eventMessages))]
	default:
		enc.Kind = KindNothing
		enc.Message = quietMessages[dice.Pick(g.src, len(quietMessages))]
	}
	return enc, nil
}

// monsters rolls the group size, then for each slot a weighted pool pick at a level near
// characterLevel.
func (g *Generator) monsters(danger, characterLevel int) []*npc.Instance {
	count := min(1+int(math.Floor(g.src.Float64()*float64(danger)/3)), MaxGroupSize)

	var candidates []PoolEntry
	total := 0
	for _, e := range g.pool {
		if e.MinLevel <= characterLevel {
			candidates = append(candidates, e)
			total += e.Weight
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	out := make([]*npc.Instance, 0, count)
	for range count {
		entry := pickWeighted(candidates, total, g.src)
		tmpl, ok := g.templates.Get(entry.TemplateID)
		if !ok {
			continue
		}
		level := max(1, characterLevel+dice.IntBetween(g.src, -1, 1))
		out = append(out, npc.NewScaledInstance(g.newID(), tmpl, level))
	}
	return out
}

// pickWeighted walks the candidates subtracting weights from a uniform roll in [0, total).
// Each candidate owns the half-open range [start, start+weight).
func pickWeighted(candidates []PoolEntry, total int, src dice.Source) PoolEntry {
	roll := src.Float64() * float64(total)
	for _, c := range candidates {
		roll -= float64(c.Weight)
		if roll < 0 {
			return c
		}
	}
	return candidates[len(candidates)-1]
}
