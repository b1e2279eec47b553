package postgres_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/combat"
	"github.com/cory-johannsen/agentrpg/internal/game/dice"
	"github.com/cory-johannsen/agentrpg/internal/game/encounter"
	"github.com/cory-johannsen/agentrpg/internal/game/exploration"
	"github.com/cory-johannsen/agentrpg/internal/game/npc"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
	"github.com/cory-johannsen/agentrpg/internal/storage/postgres"
	"github.com/cory-johannsen/agentrpg/internal/testutil"
)

func newCharacter(t *testing.T, name string, class character.Class) *character.Character {
	t.Helper()
	c, err := character.Build("agent-"+name, name, class, time.Now())
	require.NoError(t, err)
	return c
}

func TestPostgresRepositories(t *testing.T) {
	pool := testutil.NewPool(t)
	ctx := context.Background()
	chars := postgres.NewCharacterRepository(pool)
	sessions := postgres.NewSessionRepository(pool)
	states := postgres.NewExplorationRepository(pool)

	t.Run("character round trip", func(t *testing.T) {
		c := newCharacter(t, "Zara", character.Mage)
		require.NoError(t, chars.Create(ctx, c))

		got, err := chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.Name, got.Name)
		assert.Equal(t, character.Mage, got.Class)
		assert.Equal(t, c.Stats, got.Stats)
		assert.ElementsMatch(t, c.Skills, got.Skills)
		assert.Equal(t, character.StatusIdle, got.Status)
		assert.Equal(t, character.StartingZone, got.Zone)
		assert.WithinDuration(t, c.CreatedAt, got.CreatedAt, time.Millisecond)

		byAgent, err := chars.GetByAgent(ctx, c.AgentID)
		require.NoError(t, err)
		assert.Equal(t, c.ID, byAgent.ID)
	})

	t.Run("duplicate id conflicts", func(t *testing.T) {
		c := newCharacter(t, "Dup", character.Rogue)
		require.NoError(t, chars.Create(ctx, c))
		err := chars.Create(ctx, c)
		assert.ErrorIs(t, err, gameerr.ErrConflict)
	})

	t.Run("missing character", func(t *testing.T) {
		_, err := chars.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, gameerr.ErrNotFound)
		_, err = chars.GetByAgent(ctx, "nobody")
		assert.ErrorIs(t, err, gameerr.ErrNotFound)
		assert.ErrorIs(t, chars.SetStatus(ctx, uuid.NewString(), character.StatusCombat), gameerr.ErrNotFound)
	})

	t.Run("damage and heal", func(t *testing.T) {
		c := newCharacter(t, "Brom", character.Warrior)
		require.NoError(t, chars.Create(ctx, c))

		res, err := chars.ApplyDamage(ctx, c.ID, 30)
		require.NoError(t, err)
		assert.Equal(t, c.MaxHP-30, res.HP)
		assert.False(t, res.IsDead)

		res, err = chars.ApplyDamage(ctx, c.ID, 10_000)
		require.NoError(t, err)
		assert.Equal(t, 0, res.HP)
		assert.True(t, res.IsDead)

		got, err := chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, character.StatusDead, got.Status)

		healed, err := chars.Heal(ctx, c.ID, 10_000)
		require.NoError(t, err)
		assert.Equal(t, c.MaxHP, healed.HP)
		assert.Equal(t, character.StatusIdle, healed.Status)
	})

	t.Run("update aborts on mutate error", func(t *testing.T) {
		c := newCharacter(t, "Ivy", character.Cleric)
		require.NoError(t, chars.Create(ctx, c))
		boom := errors.New("boom")

		_, err := chars.Update(ctx, c.ID, func(c *character.Character) error {
			c.Level = 50
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Level)
	})

	t.Run("concurrent damage serializes", func(t *testing.T) {
		c := newCharacter(t, "Tank", character.Warrior)
		require.NoError(t, chars.Create(ctx, c))

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := chars.ApplyDamage(ctx, c.ID, 5)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, c.MaxHP-50, got.HP)
	})

	t.Run("combat binding persists", func(t *testing.T) {
		c := newCharacter(t, "Bound", character.Rogue)
		require.NoError(t, chars.Create(ctx, c))

		_, err := chars.Update(ctx, c.ID, func(c *character.Character) error {
			c.Status = character.StatusCombat
			c.CombatID = "session-7"
			return nil
		})
		require.NoError(t, err)

		got, err := chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "session-7", got.CombatID)
		assert.True(t, got.InCombat())
		assert.ErrorIs(t, got.Rest(), gameerr.ErrConflict)

		_, err = chars.Update(ctx, c.ID, func(c *character.Character) error {
			c.CombatID = ""
			c.Status = character.StatusIdle
			return nil
		})
		require.NoError(t, err)
		got, err = chars.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.False(t, got.InCombat())
	})

	t.Run("list", func(t *testing.T) {
		all, err := chars.List(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, all)
	})

	t.Run("combat session versioning", func(t *testing.T) {
		a := newCharacter(t, "Hero", character.Warrior)
		require.NoError(t, chars.Create(ctx, a))

		engine := combat.NewEngine(chars, sessions, npc.NewDefaultRegistry(), dice.NewSeededSource(7), zap.NewNop())
		s, err := engine.Start(ctx, []string{a.ID}, []string{"slime"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.Version)

		stored, err := sessions.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.TurnOrder, stored.TurnOrder)
		require.Len(t, stored.Monsters, 1)
		assert.Equal(t, "slime", stored.Monsters[0].TemplateID)

		stale := stored.Clone()
		stored.CurrentTurn++
		require.NoError(t, sessions.Save(ctx, stored))
		assert.Equal(t, int64(2), stored.Version)

		err = sessions.Save(ctx, stale)
		assert.ErrorIs(t, err, gameerr.ErrConflict)

		missing := stale.Clone()
		missing.ID = uuid.NewString()
		assert.ErrorIs(t, sessions.Save(ctx, missing), gameerr.ErrNotFound)

		_, err = sessions.Get(ctx, uuid.NewString())
		assert.ErrorIs(t, err, gameerr.ErrNotFound)
	})

	t.Run("exploration state upsert", func(t *testing.T) {
		c := newCharacter(t, "Walker", character.Ranger)
		require.NoError(t, chars.Create(ctx, c))

		_, err := states.Get(ctx, c.ID)
		assert.ErrorIs(t, err, gameerr.ErrNotFound)

		st := exploration.NewState(c.ID, character.StartingZone)
		require.NoError(t, states.Save(ctx, st))

		st.CurrentZone = "goblin_forest"
		st.ExploredZones = append(st.ExploredZones, "goblin_forest")
		st.ActiveEncounter = &encounter.Encounter{ID: "enc-1", Kind: encounter.KindNothing, Message: "quiet"}
		require.NoError(t, states.Save(ctx, st))

		got, err := states.Get(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "goblin_forest", got.CurrentZone)
		assert.Equal(t, []string{character.StartingZone, "goblin_forest"}, got.ExploredZones)
		require.NotNil(t, got.ActiveEncounter)
		assert.Equal(t, "enc-1", got.ActiveEncounter.ID)
	})
}
