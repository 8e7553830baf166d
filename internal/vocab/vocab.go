// Package vocab holds the model's token vocabulary: an immutable mapping
// from token id to token bytes, plus a byte-prefix trie over those bytes
// that lets the parser engine enumerate candidate tokens sharing a prefix
// with some grammar terminal instead of scanning the whole vocabulary.
package vocab

import (
	"fmt"
	"sort"
)

// ID is a vocabulary token id.
type ID uint32

// Vocabulary is immutable after construction; it is safe to share a single
// Vocabulary across many ParserEngine instances running on different
// goroutines.
type Vocabulary struct {
	byID    map[ID][]byte
	display map[ID]string
	prefix  *prefixTrie
}

// Entry is one token as read from a vocabulary source.
type Entry struct {
	ID      ID
	Bytes   []byte
	Display string
}

// ErrDuplicateID is returned by New when two entries share the same ID.
type ErrDuplicateID ID

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("duplicate vocabulary token id %d", ID(e))
}

// ErrEmptyBytes is returned by New when an entry's byte string is empty.
// The spec leaves the empty vocabulary token undefined; this package
// rejects it at construction rather than let it produce undefined matcher
// behavior later.
var ErrEmptyBytes = fmt.Errorf("vocabulary token has empty byte string")

// New builds a Vocabulary from the given entries. It fails if any two
// entries share an ID or if any entry has an empty byte string.
func New(entries []Entry) (*Vocabulary, error) {
	v := &Vocabulary{
		byID:    make(map[ID][]byte, len(entries)),
		display: make(map[ID]string, len(entries)),
		prefix:  newPrefixTrie(),
	}

	for _, e := range entries {
		if len(e.Bytes) == 0 {
			return nil, fmt.Errorf("token %d: %w", e.ID, ErrEmptyBytes)
		}
		if _, exists := v.byID[e.ID]; exists {
			return nil, ErrDuplicateID(e.ID)
		}
		v.byID[e.ID] = e.Bytes
		v.display[e.ID] = e.Display
		v.prefix.insert(e.Bytes, e.ID)
	}

	return v, nil
}

// Len returns the number of tokens in the Vocabulary.
func (v *Vocabulary) Len() int {
	return len(v.byID)
}

// Bytes returns the byte string for a token id, and whether that id exists.
func (v *Vocabulary) Bytes(id ID) ([]byte, bool) {
	b, ok := v.byID[id]
	return b, ok
}

// Display returns the human-readable escaped form of a token's bytes, for
// diagnostics, and whether that id exists.
func (v *Vocabulary) Display(id ID) (string, bool) {
	d, ok := v.display[id]
	return d, ok
}

// AllIDs returns every token id in the Vocabulary, sorted ascending. This is
// used by the any! and except! expansions, which need to enumerate the
// whole vocabulary once at preprocessing time.
func (v *Vocabulary) AllIDs() []ID {
	ids := make([]ID, 0, len(v.byID))
	for id := range v.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IterWithPrefix returns every (bytes, id) pair whose token bytes begin
// with prefix. The iteration order is unspecified.
func (v *Vocabulary) IterWithPrefix(prefix []byte) *PrefixIterator {
	return v.prefix.iterWithPrefix(prefix)
}

// IterAll returns every (bytes, id) pair in the vocabulary. Used when a
// TerminalsNode has enough children that scanning the whole vocabulary is
// cheaper than issuing many prefix queries (see engine §4.5.4).
func (v *Vocabulary) IterAll() *PrefixIterator {
	return v.prefix.iterWithPrefix(nil)
}
