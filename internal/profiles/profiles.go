// Package profiles persists the raw inputs needed to rebuild a compiled
// Grammar/Vocabulary pair: the BNF source text, the raw vocabulary file
// bytes, the start nonterminal name, and the EngineOptions to construct
// engines with. The compiled trie/arena structures themselves are never
// persisted, since a Grammar's terminal items alias grammar-owned byte
// storage that has no stable on-disk representation.
//
// Store implementations live in the inmem and sqlite subpackages.
package profiles

import (
	"context"
	"time"

	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/google/uuid"
)

// Profile is a named, persisted grammar+vocabulary pair along with the
// engine construction parameters sessions against it should use.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Owner     string
	Created   time.Time
	BNFSource string
	VocabRaw  []byte
	Start     string
	Options   grammar.EngineOptions
}

// Session records a single live-generation handle bound to a Profile. The
// actual *grammar.ParserEngine for a Session is held by the httpapi layer,
// which owns Session lifetime in memory; Store only tracks the metadata
// needed to recreate an engine and to evict sessions that go stale.
type Session struct {
	ID         uuid.UUID
	ProfileID  uuid.UUID
	Created    time.Time
	LastActive time.Time
}

// Store holds the profile and session repositories.
type Store interface {
	Profiles() ProfileRepository
	Sessions() SessionRepository
	Close() error
}

// ProfileRepository persists Profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p Profile) (Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (Profile, error)
	GetAllByOwner(ctx context.Context, owner string) ([]Profile, error)
	GetAll(ctx context.Context) ([]Profile, error)
	Delete(ctx context.Context, id uuid.UUID) (Profile, error)
	Close() error
}

// SessionRepository persists Session metadata.
type SessionRepository interface {
	Create(ctx context.Context, s Session) (Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (Session, error)
	GetAllByProfile(ctx context.Context, profileID uuid.UUID) ([]Session, error)
	Touch(ctx context.Context, id uuid.UUID, lastActive time.Time) (Session, error)
	Delete(ctx context.Context, id uuid.UUID) (Session, error)
	Close() error
}
