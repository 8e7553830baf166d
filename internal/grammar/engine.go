package grammar

import (
	"fmt"

	"github.com/dekarrin/constrain/internal/arenastack"
	"github.com/dekarrin/constrain/internal/vocab"
)

// ResultCode classifies the outcome of AcceptToken.
type ResultCode int

const (
	// Continue means the token was accepted and at least one legal
	// continuation byte sequence remains.
	Continue ResultCode = iota
	// End means the token was accepted and generation may legally stop
	// here, per the engine's configured end semantics.
	End
	// Rejected means the token was not legal from the prior state; the
	// engine's state is left unchanged.
	Rejected
	// Failed means the engine could not evaluate the token, for example
	// because the arena was exhausted; the engine's state is left
	// unchanged.
	Failed
)

func (c ResultCode) String() string {
	switch c {
	case Continue:
		return "Continue"
	case End:
		return "End"
	case Rejected:
		return "Rejected"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Result is the outcome of a single AcceptToken call.
type Result struct {
	Code ResultCode
	Err  error
}

const defaultArenaCapacity = 4096

// EngineOptions configures a ParserEngine's resource limits and the choice
// between the two defensible readings of "generation may stop here."
type EngineOptions struct {
	// ArenaCapacity bounds the total number of stack items in the expanded
	// frontier that a single AcceptToken or NextLegalTokens call may hold.
	// Intermediate stacks built during expansion are not counted. Zero
	// selects a default.
	ArenaCapacity int

	// EnableByteCache turns on the per-call memoization of stack/remaining
	// match sub-problems. Disabling it trades CPU for a smaller memory
	// footprint on very large vocabularies.
	EnableByteCache bool

	// StrictEnd selects "every stack must be empty" instead of the default
	// "at least one stack is empty" as the condition for Result.End.
	StrictEnd bool
}

// ParserEngine tracks the non-deterministic set of parser stacks derivable
// from a grammar's start nonterminal after some prefix of accepted tokens,
// and answers which vocabulary tokens are legal next continuations.
//
// A ParserEngine is not safe for concurrent use; its scratch arena is
// rewound and reused on every call.
type ParserEngine struct {
	grammar    *Grammar
	vocabulary *vocab.Vocabulary
	start      NonterminalID
	opts       EngineOptions

	stacks []pStack
	cache  *tokenCache
	arena  *arenastack.Store[stackItem]
}

// NewEngine constructs a ParserEngine starting derivation from the named
// nonterminal. It fails if startName is not defined in g.
func NewEngine(g *Grammar, vocabulary *vocab.Vocabulary, startName string, opts EngineOptions) (*ParserEngine, error) {
	start, ok := g.IDOf(startName)
	if !ok {
		return nil, &ErrUnknownStartNonterminal{Name: startName}
	}
	if opts.ArenaCapacity <= 0 {
		opts.ArenaCapacity = defaultArenaCapacity
	}

	e := &ParserEngine{
		grammar:    g,
		vocabulary: vocabulary,
		start:      start,
		opts:       opts,
		cache:      newTokenCache(),
		arena:      arenastack.New[stackItem](opts.ArenaCapacity),
	}
	e.Reset()
	return e, nil
}

// Reset returns the engine to its initial state: a single stack holding
// only the start nonterminal. The persistent token cache is cleared, since
// it is keyed on stack sets that are about to become unreachable again from
// scratch.
func (e *ParserEngine) Reset() {
	e.stacks = []pStack{{ntItem(e.start)}}
	e.cache.clear()
	e.arena.Clear()
}

// Clone returns a structurally independent copy of e, sitting at the same
// parser state (same accepted-token history) but with its own stack
// frontier, token cache, and scratch arena. The grammar and vocabulary are
// shared, since both are immutable once built. This lets a caller branch
// generation down several candidate continuations from the same point
// without one branch's AcceptToken/NextLegalTokens calls disturbing
// another's.
func (e *ParserEngine) Clone() *ParserEngine {
	stacks := make([]pStack, len(e.stacks))
	copy(stacks, e.stacks)

	return &ParserEngine{
		grammar:    e.grammar,
		vocabulary: e.vocabulary,
		start:      e.start,
		opts:       e.opts,
		stacks:     stacks,
		cache:      e.cache.clone(),
		arena:      arenastack.New[stackItem](e.opts.ArenaCapacity),
	}
}

// expandFrontier expands stacks into its terminal/empty frontier,
// accounting the total stack items of the resulting frontier against the
// scratch arena.
// It returns ErrStackArenaExhausted, wrapped, if the frontier would not fit.
func (e *ParserEngine) expandFrontier(stacks []pStack) ([]pStack, error) {
	e.arena.Clear()
	frontier := expandState(e.grammar, stacks)

	total := 0
	for _, s := range frontier {
		total += len(s)
	}

	if _, err := e.arena.Allocate(total); err != nil {
		return nil, fmt.Errorf("expand parser state: %w", err)
	}
	return frontier, nil
}

// NextLegalTokens returns the set of vocabulary token ids that may legally
// extend the text generated so far.
func (e *ParserEngine) NextLegalTokens() (map[vocab.ID]struct{}, error) {
	if set, ok := e.cache.get(e.stacks); ok {
		return set, nil
	}
	if _, err := e.expandFrontier(e.stacks); err != nil {
		return nil, err
	}

	set := legalTokenIDs(e.grammar, e.vocabulary, e.stacks, e.opts.EnableByteCache)
	e.cache.put(e.stacks, set)
	return set, nil
}

// AcceptToken advances the engine's state by the bytes of the given
// vocabulary token id. On Rejected or Failed the engine's state is left
// exactly as it was before the call.
func (e *ParserEngine) AcceptToken(id vocab.ID) Result {
	tokenBytes, ok := e.vocabulary.Bytes(id)
	if !ok {
		return Result{Code: Rejected, Err: fmt.Errorf("token id %d is not in the vocabulary", id)}
	}

	if _, err := e.expandFrontier(e.stacks); err != nil {
		return Result{Code: Failed, Err: err}
	}

	var memo *matchMemo
	if e.opts.EnableByteCache {
		memo = newMatchMemo()
	}
	if !canConsume(e.grammar, e.stacks, tokenBytes, memo) {
		return Result{Code: Rejected}
	}

	var next []pStack
	advance(e.grammar, e.stacks, tokenBytes, &next)
	next = dedupeStacks(next)
	if len(next) == 0 {
		return Result{Code: Failed, Err: fmt.Errorf("token %d matched but produced no continuation stacks", id)}
	}

	frontier, err := e.expandFrontier(next)
	if err != nil {
		return Result{Code: Failed, Err: err}
	}

	e.stacks = next

	var done bool
	if e.opts.StrictEnd {
		done = allStacksEmpty(frontier)
	} else {
		done = anyStackEmpty(frontier)
	}
	if done {
		return Result{Code: End}
	}
	return Result{Code: Continue}
}
