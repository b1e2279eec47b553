// Package auth implements the identity gate: a proof-of-work challenge that an agent must solve
// before it receives a signed bearer token.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// Algorithm names the hash the proof is computed with.
const Algorithm = "sha256"

// Default challenge parameters.
const (
	DefaultPrefix       = "0000"
	DefaultChallengeTTL = 60 * time.Second
	DefaultLimit        = 3 * time.Second
)

// Challenge is a pending proof-of-work puzzle.
type Challenge struct {
	ID           string    `json:"challenge_id"`
	Seed         string    `json:"seed"`
	TargetPrefix string    `json:"target_prefix"`
	Algorithm    string    `json:"algorithm"`
	LimitMS      int64     `json:"limit_ms"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ChallengeOption customizes a Challenges store.
type ChallengeOption func(*Challenges)

// WithPrefix sets the hex prefix a valid proof must start with.
func WithPrefix(prefix string) ChallengeOption {
	return func(c *Challenges) { c.prefix = prefix }
}

// WithTTL sets how long a challenge stays solvable.
func WithTTL(ttl time.Duration) ChallengeOption {
	return func(c *Challenges) { c.ttl = ttl }
}

// WithLimit sets the advertised solve limit.
func WithLimit(limit time.Duration) ChallengeOption {
	return func(c *Challenges) { c.limit = limit }
}

// WithChallengeClock overrides the time source.
func WithChallengeClock(now func() time.Time) ChallengeOption {
	return func(c *Challenges) { c.now = now }
}

// Challenges issues and verifies proof-of-work puzzles. Safe for concurrent use.
type Challenges struct {
	mu      sync.Mutex
	pending map[string]Challenge
	prefix  string
	ttl     time.Duration
	limit   time.Duration
	now     func() time.Time
}

// NewChallenges creates an empty challenge store.
func NewChallenges(opts ...ChallengeOption) *Challenges {
	c := &Challenges{
		pending: make(map[string]Challenge),
		prefix:  DefaultPrefix,
		ttl:     DefaultChallengeTTL,
		limit:   DefaultLimit,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate issues a new challenge and drops any that have expired.
//
// Postcondition: the returned challenge is pending until it is verified or expires.
func (c *Challenges) Generate() (Challenge, error) {
	seed := make([]byte, 16)
	if _, err := rand.Read(seed); err != nil {
		return Challenge{}, gameerr.Wrap(err, gameerr.KindInternal, "generating challenge seed")
	}
	now := c.now()
	ch := Challenge{
		ID:           uuid.NewString(),
		Seed:         hex.EncodeToString(seed),
		TargetPrefix: c.prefix,
		Algorithm:    Algorithm,
		LimitMS:      c.limit.Milliseconds(),
		ExpiresAt:    now.Add(c.ttl),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweepLocked(now)
	c.pending[ch.ID] = ch
	return ch, nil
}

// Verify checks nonce against the challenge and consumes it on success.
// A challenge may be redeemed at most once.
//
// Precondition: id and nonce are non-empty.
// Postcondition: on success the challenge is no longer pending; an expired challenge is removed.
func (c *Challenges) Verify(id, nonce string) error {
	if id == "" || nonce == "" {
		return gameerr.Validationf("challenge_id and nonce are required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, ok := c.pending[id]
	if !ok {
		return gameerr.Unauthenticatedf("challenge %q not found or already used", id)
	}
	if !c.now().Before(ch.ExpiresAt) {
		delete(c.pending, id)
		return gameerr.Unauthenticatedf("challenge %q expired", id)
	}
	if !Valid(ch.Seed, nonce, ch.TargetPrefix) {
		return gameerr.Unauthenticatedf("invalid proof of work")
	}
	delete(c.pending, id)
	return nil
}

// Sweep drops expired challenges and returns how many were removed.
func (c *Challenges) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sweepLocked(c.now())
}

// Pending returns the number of outstanding challenges.
func (c *Challenges) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Challenges) sweepLocked(now time.Time) int {
	removed := 0
	for id, ch := range c.pending {
		if !now.Before(ch.ExpiresAt) {
			delete(c.pending, id)
			removed++
		}
	}
	return removed
}

// Valid reports whether the hex sha256 of seed+nonce starts with prefix.
func Valid(seed, nonce, prefix string) bool {
	sum := sha256.Sum256([]byte(seed + nonce))
	return strings.HasPrefix(hex.EncodeToString(sum[:]), prefix)
}

// Solve searches decimal nonces until one satisfies prefix. It is what a client does; the
// server uses it only in tests and tooling.
func Solve(seed, prefix string) string {
	for n := 0; ; n++ {
		nonce := strconv.Itoa(n)
		if Valid(seed, nonce, prefix) {
			return nonce
		}
	}
}
