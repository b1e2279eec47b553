package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// DefaultTokenTTL is how long an issued bearer token stays valid.
const DefaultTokenTTL = 4 * time.Hour

const issuer = "agentrpg"

// Identity is the authenticated caller carried by a bearer token.
type Identity struct {
	SessionID   string
	AgentName   string
	CharacterID string
}

type claims struct {
	jwt.RegisteredClaims
	SessionID   string `json:"session_id"`
	AgentName   string `json:"agent_name"`
	CharacterID string `json:"character_id,omitempty"`
}

// Issuer signs and validates HS256 bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates a token issuer.
//
// Precondition: secret must be non-empty.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, gameerr.Validationf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue creates a token for a freshly verified agent.
func (i *Issuer) Issue(agentName string) (string, Identity, error) {
	if agentName == "" {
		return "", Identity{}, gameerr.Validationf("agent_name is required")
	}
	id := Identity{SessionID: uuid.NewString(), AgentName: agentName}
	token, err := i.sign(id)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// LinkCharacter re-issues a token for id bound to characterID.
func (i *Issuer) LinkCharacter(id Identity, characterID string) (string, error) {
	id.CharacterID = characterID
	return i.sign(id)
}

// Validate parses token and returns the identity it carries.
func (i *Issuer) Validate(token string) (Identity, error) {
	if token == "" {
		return Identity{}, gameerr.Unauthenticatedf("missing bearer token")
	}
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, gameerr.Wrap(err, gameerr.KindUnauthenticated, "token expired")
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Identity{}, gameerr.Wrap(err, gameerr.KindUnauthenticated, "token signature invalid")
		default:
			return Identity{}, gameerr.Wrap(err, gameerr.KindUnauthenticated, "invalid token")
		}
	}
	if !parsed.Valid || c.SessionID == "" || c.AgentName == "" {
		return Identity{}, gameerr.Unauthenticatedf("invalid token claims")
	}
	return Identity{SessionID: c.SessionID, AgentName: c.AgentName, CharacterID: c.CharacterID}, nil
}

func (i *Issuer) sign(id Identity) (string, error) {
	now := i.now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.AgentName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		SessionID:   id.SessionID,
		AgentName:   id.AgentName,
		CharacterID: id.CharacterID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", gameerr.Wrap(err, gameerr.KindInternal, "signing token")
	}
	return signed, nil
}
