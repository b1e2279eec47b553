package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newChallenges(c *clock) *Challenges {
	return NewChallenges(WithPrefix("00"), WithTTL(time.Minute), WithChallengeClock(c.now))
}

func TestGenerate_Fields(t *testing.T) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewChallenges(WithChallengeClock(c.now))

	ch, err := store.Generate()
	require.NoError(t, err)
	assert.NotEmpty(t, ch.ID)
	assert.Len(t, ch.Seed, 32)
	assert.Equal(t, DefaultPrefix, ch.TargetPrefix)
	assert.Equal(t, Algorithm, ch.Algorithm)
	assert.Equal(t, int64(3000), ch.LimitMS)
	assert.Equal(t, c.t.Add(DefaultChallengeTTL), ch.ExpiresAt)
	assert.Equal(t, 1, store.Pending())
}

func TestVerify_AcceptsSolvedChallengeOnce(t *testing.T) {
	c := &clock{t: time.Now()}
	store := newChallenges(c)
	ch, err := store.Generate()
	require.NoError(t, err)

	nonce := Solve(ch.Seed, ch.TargetPrefix)
	require.NoError(t, store.Verify(ch.ID, nonce))
	assert.Equal(t, 0, store.Pending())

	err = store.Verify(ch.ID, nonce)
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)
}

func TestVerify_RejectsBadNonce(t *testing.T) {
	c := &clock{t: time.Now()}
	store := NewChallenges(WithPrefix("zz"), WithChallengeClock(c.now))
	ch, err := store.Generate()
	require.NoError(t, err)

	// A hex digest never starts with "zz".
	err = store.Verify(ch.ID, "1")
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)
	assert.Equal(t, 1, store.Pending())
}

func TestVerify_RejectsExpired(t *testing.T) {
	c := &clock{t: time.Now()}
	store := newChallenges(c)
	ch, err := store.Generate()
	require.NoError(t, err)
	nonce := Solve(ch.Seed, ch.TargetPrefix)

	c.t = c.t.Add(2 * time.Minute)
	err = store.Verify(ch.ID, nonce)
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)
	assert.Equal(t, 0, store.Pending())
}

func TestVerify_MissingFields(t *testing.T) {
	store := NewChallenges()
	assert.ErrorIs(t, store.Verify("", "1"), gameerr.ErrValidation)
	assert.ErrorIs(t, store.Verify("x", ""), gameerr.ErrValidation)
	assert.ErrorIs(t, store.Verify("unknown", "1"), gameerr.ErrUnauthenticated)
}

func TestSweep_RemovesOnlyExpired(t *testing.T) {
	c := &clock{t: time.Now()}
	store := newChallenges(c)
	_, err := store.Generate()
	require.NoError(t, err)

	c.t = c.t.Add(30 * time.Second)
	_, err = store.Generate()
	require.NoError(t, err)

	c.t = c.t.Add(45 * time.Second)
	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Pending())
}

func TestGenerate_SweepsExpired(t *testing.T) {
	c := &clock{t: time.Now()}
	store := newChallenges(c)
	_, err := store.Generate()
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Minute)
	_, err = store.Generate()
	require.NoError(t, err)
	assert.Equal(t, 1, store.Pending())
}

func TestProperty_SolveSatisfiesValid(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.StringMatching(`[0-9a-f]{32}`).Draw(rt, "seed")
		nonce := Solve(seed, "0")
		assert.True(rt, Valid(seed, nonce, "0"))
	})
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)

	token, id, err := iss.Issue("scout-7")
	require.NoError(t, err)
	assert.NotEmpty(t, id.SessionID)

	got, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Empty(t, got.CharacterID)
}

func TestIssuer_LinkCharacter(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	_, id, err := iss.Issue("scout-7")
	require.NoError(t, err)

	token, err := iss.LinkCharacter(id, "char-1")
	require.NoError(t, err)
	got, err := iss.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, id.SessionID, got.SessionID)
	assert.Equal(t, "char-1", got.CharacterID)
}

func TestIssuer_Rejects(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	other, err := NewIssuer("other", time.Hour)
	require.NoError(t, err)

	token, _, err := other.Issue("scout-7")
	require.NoError(t, err)
	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)

	_, err = iss.Validate("")
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)

	_, err = iss.Validate("not.a.token")
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)
}

func TestIssuer_Expired(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	c := &clock{t: time.Now()}
	iss.now = c.now

	token, _, err := iss.Issue("scout-7")
	require.NoError(t, err)

	c.t = c.t.Add(2 * time.Hour)
	_, err = iss.Validate(token)
	assert.ErrorIs(t, err, gameerr.ErrUnauthenticated)
}

func TestNewIssuer_Defaults(t *testing.T) {
	_, err := NewIssuer("", time.Hour)
	assert.ErrorIs(t, err, gameerr.ErrValidation)

	iss, err := NewIssuer("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, iss.TTL())
}

func TestIssue_RequiresAgentName(t *testing.T) {
	iss, err := NewIssuer("secret", time.Hour)
	require.NoError(t, err)
	_, _, err = iss.Issue("")
	assert.ErrorIs(t, err, gameerr.ErrValidation)
}
