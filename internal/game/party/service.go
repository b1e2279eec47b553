package party

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/agentrpg/internal/game/character"
	"github.com/cory-johannsen/agentrpg/internal/gameerr"
)

// Service enforces the roster rules. Membership changes are serialized service-wide,
// since a character may belong to at most one party.
type Service struct {
	mu      sync.Mutex
	parties Repository
	chars   character.Repository
	now     func() time.Time
}

// NewService creates a Service.
//
// Precondition: parties and chars must be non-nil.
func NewService(parties Repository, chars character.Repository) *Service {
	return &Service{parties: parties, chars: chars, now: time.Now}
}

// Create forms a new party led by leaderID.
//
// Postcondition: the leader is the sole member. A leader already in a party is a conflict.
func (s *Service) Create(ctx context.Context, name, leaderID string) (*Party, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, gameerr.Validationf("party name must not be empty")
	}
	if _, err := s.chars.Get(ctx, leaderID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUnaffiliated(ctx, leaderID); err != nil {
		return nil, err
	}
	p := &Party{
		ID:        uuid.NewString(),
		Name:      name,
		LeaderID:  leaderID,
		MemberIDs: []string{leaderID},
		MaxSize:   MaxSize,
		CreatedAt: s.now(),
	}
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Join adds characterID to partyID.
//
// Postcondition: a full party yields a capacity error; a character already in a party
// yields a conflict.
func (s *Service) Join(ctx context.Context, partyID, characterID string) (*Party, error) {
	if _, err := s.chars.Get(ctx, characterID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureUnaffiliated(ctx, characterID); err != nil {
		return nil, err
	}
	p, err := s.parties.Get(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if p.Full() {
		return nil, gameerr.Capacityf("party %s is full", p.Name)
	}
	p.MemberIDs = append(p.MemberIDs, characterID)
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Leave removes characterID from its party. A departing leader hands over to the next
// member; the last member leaving disbands the party.
//
// Postcondition: Returns the remaining party, or nil when it was disbanded.
func (s *Service) Leave(ctx context.Context, characterID string) (*Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.parties.FindByMember(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, gameerr.Conflictf("character %s is not in a party", characterID)
	}

	members := p.MemberIDs[:0]
	for _, id := range p.MemberIDs {
		if id != characterID {
			members = append(members, id)
		}
	}
	p.MemberIDs = members
	if len(p.MemberIDs) == 0 {
		return nil, s.parties.Delete(ctx, p.ID)
	}
	if p.LeaderID == characterID {
		p.LeaderID = p.MemberIDs[0]
	}
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Disband deletes partyID. Only the leader may disband.
func (s *Service) Disband(ctx context.Context, partyID, requesterID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.parties.Get(ctx, partyID)
	if err != nil {
		return err
	}
	if p.LeaderID != requesterID {
		return gameerr.Conflictf("only the party leader can disband")
	}
	return s.parties.Delete(ctx, partyID)
}

// TransferLeadership makes newLeaderID the leader of partyID.
func (s *Service) TransferLeadership(ctx context.Context, partyID, currentLeaderID, newLeaderID string) (*Party, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.parties.Get(ctx, partyID)
	if err != nil {
		return nil, err
	}
	if p.LeaderID != currentLeaderID {
		return nil, gameerr.Conflictf("only the current leader can transfer leadership")
	}
	if !p.HasMember(newLeaderID) {
		return nil, gameerr.Validationf("new leader must be a party member")
	}
	p.LeaderID = newLeaderID
	if err := s.parties.Save(ctx, p); err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// Get returns partyID.
func (s *Service) Get(ctx context.Context, partyID string) (*Party, error) {
	return s.parties.Get(ctx, partyID)
}

// List returns every party.
func (s *Service) List(ctx context.Context) ([]*Party, error) {
	return s.parties.List(ctx)
}

// ForCharacter returns the party of characterID, or a not-found error.
func (s *Service) ForCharacter(ctx context.Context, characterID string) (*Party, error) {
	p, err := s.parties.FindByMember(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, gameerr.NotFoundf("character %s is not in a party", characterID)
	}
	return p, nil
}

// Members returns the characters of partyID in join order, skipping any since deleted.
func (s *Service) Members(ctx context.Context, partyID string) ([]*character.Character, error) {
	p, err := s.parties.Get(ctx, partyID)
	if err != nil {
		return nil, err
	}
	out := make([]*character.Character, 0, len(p.MemberIDs))
	for _, id := range p.MemberIDs {
		c, err := s.chars.Get(ctx, id)
		if err != nil {
			if gameerr.KindOf(err) == gameerr.KindNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) ensureUnaffiliated(ctx context.Context, characterID string) error {
	existing, err := s.parties.FindByMember(ctx, characterID)
	if err != nil {
		return err
	}
	if existing != nil {
		return gameerr.Conflictf("character %s is already in party %s", characterID, existing.Name)
	}
	return nil
}
