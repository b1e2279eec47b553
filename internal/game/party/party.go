// Package party manages adventuring groups of characters.
package party

import (
	"context"
	"slices"
	"time"
)

// MaxSize is the largest party allowed.
const MaxSize = 4

// Party is a group of characters that fight together.
//
// Invariant: LeaderID is one of MemberIDs; 1 <= len(MemberIDs) <= MaxSize.
type Party struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LeaderID  string    `json:"leader_id"`
	MemberIDs []string  `json:"member_ids"`
	MaxSize   int       `json:"max_size"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone returns a deep copy of p.
func (p *Party) Clone() *Party {
	cp := *p
	cp.MemberIDs = slices.Clone(p.MemberIDs)
	return &cp
}

// HasMember reports whether characterID belongs to p.
func (p *Party) HasMember(characterID string) bool {
	return slices.Contains(p.MemberIDs, characterID)
}

// Full reports whether p has no free slot.
func (p *Party) Full() bool {
	return len(p.MemberIDs) >= p.MaxSize
}

// Repository stores parties.
//
// Get of an unknown id returns an error matching gameerr.ErrNotFound; FindByMember returns
// (nil, nil) when the character is in no party.
type Repository interface {
	Save(ctx context.Context, p *Party) error
	Get(ctx context.Context, id string) (*Party, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Party, error)
	FindByMember(ctx context.Context, characterID string) (*Party, error)
}
