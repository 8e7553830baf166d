package httpapi

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/dekarrin/constrain/internal/vocab"
	"github.com/dekarrin/constrain/server/result"
	"github.com/google/uuid"
)

// liveSession pairs a profiles.Session's metadata with the live engine
// serving it. Access is serialized by mu so concurrent requests against the
// same session do not race its engine, while requests against different
// sessions proceed independently.
type liveSession struct {
	mu     sync.Mutex
	engine *grammar.ParserEngine
}

// SessionRegistry holds the live engines for active sessions, keyed by
// session id. Session metadata itself lives in the profiles.Store; this
// registry exists because a *grammar.ParserEngine is not serializable and
// must be kept in memory for the lifetime of the process.
type SessionRegistry struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*liveSession
}

// NewSessionRegistry creates an empty SessionRegistry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{byID: make(map[uuid.UUID]*liveSession)}
}

func (r *SessionRegistry) put(id uuid.UUID, engine *grammar.ParserEngine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id] = &liveSession{engine: engine}
}

func (r *SessionRegistry) get(id uuid.UUID) (*liveSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *SessionRegistry) delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// CreateSessionRequest is the body of POST /sessions.
type CreateSessionRequest struct {
	ProfileID string `json:"profile_id"`
}

// LegalTokensModel reports the legal token ids for the current engine state.
type LegalTokensModel struct {
	SessionID string  `json:"session_id"`
	Status    string  `json:"status"`
	Legal     []int64 `json:"legal_tokens,omitempty"`
}

func (api API) HTTPCreateSession() http.HandlerFunc {
	return Endpoint(api.epCreateSession, api.UnauthDelay)
}

func (api API) epCreateSession(req *http.Request) result.Result {
	var body CreateSessionRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	profileID, err := uuid.Parse(body.ProfileID)
	if err != nil {
		return result.BadRequest("profile_id is not a valid UUID", err.Error())
	}

	p, err := api.Store.Profiles().GetByID(req.Context(), profileID)
	if err != nil {
		return storeErrToResult(err)
	}

	v, err := vocab.LoadVocabulary(bytes.NewReader(p.VocabRaw))
	if err != nil {
		return result.InternalServerError("rebuild vocabulary: %s", err.Error())
	}
	g, err := grammar.NewGrammar(p.BNFSource, v)
	if err != nil {
		return result.InternalServerError("rebuild grammar: %s", err.Error())
	}
	engine, err := grammar.NewEngine(g, v, p.Start, p.Options)
	if err != nil {
		return result.InternalServerError("construct engine: %s", err.Error())
	}

	sesh, err := api.Store.Sessions().Create(req.Context(), profiles.Session{ProfileID: profileID})
	if err != nil {
		return storeErrToResult(err)
	}
	api.Sessions.put(sesh.ID, engine)

	legal, err := engine.NextLegalTokens()
	if err != nil {
		return result.InternalServerError("initial legal tokens: %s", err.Error())
	}

	return result.Created(legalTokensModel(sesh.ID, "continue", legal), "created session %s", sesh.ID)
}

// AcceptTokenRequest is the body of POST /sessions/{id}/accept.
type AcceptTokenRequest struct {
	TokenID int64 `json:"token_id"`
}

func (api API) HTTPAcceptToken() http.HandlerFunc {
	return Endpoint(api.epAcceptToken, api.UnauthDelay)
}

func (api API) epAcceptToken(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	sesh, ok := api.Sessions.get(id)
	if !ok {
		return result.NotFound("session %s not live", id)
	}

	var body AcceptTokenRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	sesh.mu.Lock()
	defer sesh.mu.Unlock()

	res := sesh.engine.AcceptToken(vocab.ID(body.TokenID))
	switch res.Code {
	case grammar.Rejected:
		api.touchSession(req, id)
		return result.OK(LegalTokensModel{SessionID: id.String(), Status: "rejected"}, "session %s rejected token %d", id, body.TokenID)
	case grammar.Failed:
		return result.InternalServerError("accept token: %s", res.Err)
	case grammar.End:
		api.touchSession(req, id)
		return result.OK(LegalTokensModel{SessionID: id.String(), Status: "end"}, "session %s reached end", id)
	}

	legal, err := sesh.engine.NextLegalTokens()
	if err != nil {
		return result.InternalServerError("legal tokens: %s", err.Error())
	}
	api.touchSession(req, id)
	return result.OK(legalTokensModel(id, "continue", legal), "session %s accepted token %d", id, body.TokenID)
}

func (api API) HTTPResetSession() http.HandlerFunc {
	return Endpoint(api.epResetSession, api.UnauthDelay)
}

func (api API) epResetSession(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	sesh, ok := api.Sessions.get(id)
	if !ok {
		return result.NotFound("session %s not live", id)
	}

	sesh.mu.Lock()
	defer sesh.mu.Unlock()
	sesh.engine.Reset()

	legal, err := sesh.engine.NextLegalTokens()
	if err != nil {
		return result.InternalServerError("legal tokens: %s", err.Error())
	}
	api.touchSession(req, id)
	return result.OK(legalTokensModel(id, "continue", legal), "reset session %s", id)
}

func (api API) HTTPDeleteSession() http.HandlerFunc {
	return Endpoint(api.epDeleteSession, api.UnauthDelay)
}

func (api API) epDeleteSession(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	if _, err := api.Store.Sessions().Delete(req.Context(), id); err != nil {
		return storeErrToResult(err)
	}
	api.Sessions.delete(id)

	return result.NoContent("deleted session %s", id)
}

func (api API) touchSession(req *http.Request, id uuid.UUID) {
	api.Store.Sessions().Touch(req.Context(), id, time.Now())
}

func legalTokensModel(id uuid.UUID, status string, legal map[vocab.ID]struct{}) LegalTokensModel {
	ids := make([]int64, 0, len(legal))
	for tid := range legal {
		ids = append(ids, int64(tid))
	}
	return LegalTokensModel{SessionID: id.String(), Status: status, Legal: ids}
}
