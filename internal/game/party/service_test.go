package party_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/game/party"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
	"github.com/cory-johannsen/agentrpg/internal/storage/memory"
)

func setup(t require.TestingT, n int) (*party.Service, []string) {
	chars := memory.NewCharacterRepository()
	ids := make([]string, n)
	for i := range n {
		c, err := character.Build("agent", fmt.Sprintf("hero%d", i), character.Warrior, time.Now())
		require.NoError(t, err)
		require.NoError(t, chars.Create(context.Background(), c))
		ids[i] = c.ID
	}
	return party.NewService(memory.NewPartyRepository(), chars), ids
}

func TestCreateJoinLeave(t *testing.T) {
	ctx := context.Background()
	svc, ids := setup(t, 5)

	p, err := svc.Create(ctx, "Fellowship", ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], p.LeaderID)
	assert.Equal(t, []string{ids[0]}, p.MemberIDs)
	assert.Equal(t, party.MaxSize, p.MaxSize)

	for _, id := range ids[1:4] {
		_, err := svc.Join(ctx, p.ID, id)
		require.NoError(t, err)
	}
	_, err = svc.Join(ctx, p.ID, ids[4])
	assert.ErrorIs(t, err, gameerr.ErrCapacity)

	_, err = svc.Join(ctx, p.ID, ids[1])
	assert.ErrorIs(t, err, gameerr.ErrConflict)
	_, err = svc.Create(ctx, "Splinter", ids[2])
	assert.ErrorIs(t, err, gameerr.ErrConflict)

	members, err := svc.Members(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, members, 4)

	after, err := svc.Leave(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[1], after.LeaderID, "next member is promoted")
	assert.Len(t, after.MemberIDs, 3)

	got, err := svc.ForCharacter(ctx, ids[3])
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	_, err = svc.ForCharacter(ctx, ids[0])
	assert.ErrorIs(t, err, gameerr.ErrNotFound)
}

func TestLeave_LastMemberDisbands(t *testing.T) {
	ctx := context.Background()
	svc, ids := setup(t, 1)
	p, err := svc.Create(ctx, "Solo", ids[0])
	require.NoError(t, err)

	remaining, err := svc.Leave(ctx, ids[0])
	require.NoError(t, err)
	assert.Nil(t, remaining)
	_, err = svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, gameerr.ErrNotFound)

	_, err = svc.Leave(ctx, ids[0])
	assert.ErrorIs(t, err, gameerr.ErrConflict)
}

func TestCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, ids := setup(t, 1)
	_, err := svc.Create(ctx, " ", ids[0])
	assert.ErrorIs(t, err, gameerr.ErrValidation)
	_, err = svc.Create(ctx, "Ghosts", "nobody")
	assert.ErrorIs(t, err, gameerr.ErrNotFound)
	_, err = svc.Join(ctx, "nope", ids[0])
	assert.ErrorIs(t, err, gameerr.ErrNotFound)
}

func TestDisbandAndTransfer(t *testing.T) {
	ctx := context.Background()
	svc, ids := setup(t, 3)
	p, err := svc.Create(ctx, "Crew", ids[0])
	require.NoError(t, err)
	_, err = svc.Join(ctx, p.ID, ids[1])
	require.NoError(t, err)

	_, err = svc.TransferLeadership(ctx, p.ID, ids[1], ids[1])
	assert.ErrorIs(t, err, gameerr.ErrConflict)
	_, err = svc.TransferLeadership(ctx, p.ID, ids[0], ids[2])
	assert.ErrorIs(t, err, gameerr.ErrValidation)
	moved, err := svc.TransferLeadership(ctx, p.ID, ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, ids[1], moved.LeaderID)

	assert.ErrorIs(t, svc.Disband(ctx, p.ID, ids[0]), gameerr.ErrConflict)
	require.NoError(t, svc.Disband(ctx, p.ID, ids[1]))
	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// Property: under any sequence of joins and leaves, every party stays within size, keeps a
// member leader and no character is in two parties.
func TestProperty_RosterInvariants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		ctx := context.Background()
		svc, ids := setup(rt, 8)
		var partyIDs []string

		for range rapid.IntRange(1, 40).Draw(rt, "steps") {
			who := rapid.SampledFrom(ids).Draw(rt, "who")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				if p, err := svc.Create(ctx, "p", who); err == nil {
					partyIDs = append(partyIDs, p.ID)
				}
			case 1:
				if len(partyIDs) > 0 {
					_, _ = svc.Join(ctx, rapid.SampledFrom(partyIDs).Draw(rt, "party"), who)
				}
			case 2:
				_, _ = svc.Leave(ctx, who)
			}

			parties, err := svc.List(ctx)
			if err != nil {
				rt.Fatal(err)
			}
			seen := map[string]bool{}
			for _, p := range parties {
				if len(p.MemberIDs) < 1 || len(p.MemberIDs) > party.MaxSize {
					rt.Fatalf("party %s has %d members", p.ID, len(p.MemberIDs))
				}
				if !p.HasMember(p.LeaderID) {
					rt.Fatalf("leader %s not a member", p.LeaderID)
				}
				for _, m := range p.MemberIDs {
					if seen[m] {
						rt.Fatalf("character %s in two parties", m)
					}
					seen[m] = true
				}
			}
		}
	})
}
