// Package inmem provides a non-persistent profiles.Store backed by plain
// Go maps, for tests and for one-shot CLI use where a SQLite file would be
// throwaway anyway.
package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/dekarrin/constrain/internal/errs"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/google/uuid"
)

// NewStore creates an empty in-memory profiles.Store.
func NewStore() profiles.Store {
	return &store{
		profiles: NewProfilesRepository(),
		sessions: NewSessionsRepository(),
	}
}

type store struct {
	profiles *ProfilesRepository
	sessions *SessionsRepository
}

func (s *store) Profiles() profiles.ProfileRepository { return s.profiles }
func (s *store) Sessions() profiles.SessionRepository { return s.sessions }
func (s *store) Close() error                         { return nil }

func NewProfilesRepository() *ProfilesRepository {
	return &ProfilesRepository{byID: make(map[uuid.UUID]profiles.Profile)}
}

// ProfilesRepository is an in-memory profiles.ProfileRepository.
type ProfilesRepository struct {
	byID map[uuid.UUID]profiles.Profile
}

func (r *ProfilesRepository) Create(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return profiles.Profile{}, errs.New("could not generate profile ID", err)
	}
	p.ID = newID
	p.Created = time.Now()
	r.byID[p.ID] = p
	return p, nil
}

func (r *ProfilesRepository) GetByID(ctx context.Context, id uuid.UUID) (profiles.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return profiles.Profile{}, errs.New("no profile with that ID", errs.ErrNotFound)
	}
	return p, nil
}

func (r *ProfilesRepository) GetAllByOwner(ctx context.Context, owner string) ([]profiles.Profile, error) {
	var matches []profiles.Profile
	for _, p := range r.byID {
		if p.Owner == owner {
			matches = append(matches, p)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return matches, nil
}

func (r *ProfilesRepository) GetAll(ctx context.Context) ([]profiles.Profile, error) {
	all := make([]profiles.Profile, 0, len(r.byID))
	for _, p := range r.byID {
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID.String() < all[j].ID.String()
	})
	return all, nil
}

func (r *ProfilesRepository) Delete(ctx context.Context, id uuid.UUID) (profiles.Profile, error) {
	p, ok := r.byID[id]
	if !ok {
		return profiles.Profile{}, errs.New("no profile with that ID", errs.ErrNotFound)
	}
	delete(r.byID, id)
	return p, nil
}

func (r *ProfilesRepository) Close() error { return nil }

func NewSessionsRepository() *SessionsRepository {
	return &SessionsRepository{byID: make(map[uuid.UUID]profiles.Session)}
}

// SessionsRepository is an in-memory profiles.SessionRepository.
type SessionsRepository struct {
	byID map[uuid.UUID]profiles.Session
}

func (r *SessionsRepository) Create(ctx context.Context, s profiles.Session) (profiles.Session, error) {
	newID, err := uuid.NewRandom()
	if err != nil {
		return profiles.Session{}, errs.New("could not generate session ID", err)
	}
	s.ID = newID
	now := time.Now()
	s.Created = now
	s.LastActive = now
	r.byID[s.ID] = s
	return s, nil
}

func (r *SessionsRepository) GetByID(ctx context.Context, id uuid.UUID) (profiles.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return profiles.Session{}, errs.New("no session with that ID", errs.ErrNotFound)
	}
	return s, nil
}

func (r *SessionsRepository) GetAllByProfile(ctx context.Context, profileID uuid.UUID) ([]profiles.Session, error) {
	var matches []profiles.Session
	for _, s := range r.byID {
		if s.ProfileID == profileID {
			matches = append(matches, s)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return matches, nil
}

func (r *SessionsRepository) Touch(ctx context.Context, id uuid.UUID, lastActive time.Time) (profiles.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return profiles.Session{}, errs.New("no session with that ID", errs.ErrNotFound)
	}
	s.LastActive = lastActive
	r.byID[id] = s
	return s, nil
}

func (r *SessionsRepository) Delete(ctx context.Context, id uuid.UUID) (profiles.Session, error) {
	s, ok := r.byID[id]
	if !ok {
		return profiles.Session{}, errs.New("no session with that ID", errs.ErrNotFound)
	}
	delete(r.byID, id)
	return s, nil
}

func (r *SessionsRepository) Close() error { return nil }
