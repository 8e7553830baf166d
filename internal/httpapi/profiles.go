package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dekarrin/constrain/internal/errs"
	"github.com/dekarrin/constrain/internal/grammar"
	"github.com/dekarrin/constrain/internal/profiles"
	"github.com/dekarrin/constrain/internal/util"
	"github.com/dekarrin/constrain/internal/vocab"
	"github.com/dekarrin/constrain/server/result"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CreateProfileRequest is the body of POST /profiles.
type CreateProfileRequest struct {
	Name         string                `json:"name"`
	Owner        string                `json:"owner"`
	BNFSource    string                `json:"bnf_source"`
	VocabularyB64 string               `json:"vocabulary_base64"`
	Start        string                `json:"start_nonterminal"`
	Options      grammar.EngineOptions `json:"options"`
}

// ProfileModel is the JSON shape returned for a profile.
type ProfileModel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Created int64  `json:"created"`
	Start   string `json:"start_nonterminal"`
}

func profileToModel(p profiles.Profile) ProfileModel {
	return ProfileModel{
		ID:      p.ID.String(),
		Name:    p.Name,
		Owner:   p.Owner,
		Created: p.Created.Unix(),
		Start:   p.Start,
	}
}

func (api API) HTTPCreateProfile() http.HandlerFunc {
	return Endpoint(api.epCreateProfile, api.UnauthDelay)
}

func (api API) epCreateProfile(req *http.Request) result.Result {
	var body CreateProfileRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}
	var missing []string
	if body.Name == "" {
		missing = append(missing, "name")
	}
	if body.BNFSource == "" {
		missing = append(missing, "bnf_source")
	}
	if body.Start == "" {
		missing = append(missing, "start_nonterminal")
	}
	if len(missing) > 0 {
		msg := "missing required propert"
		if len(missing) == 1 {
			msg += "y: "
		} else {
			msg += "ies: "
		}
		msg += util.MakeTextList(missing)
		return result.BadRequest(msg, msg)
	}

	vocabRaw, err := decodeVocabBase64(body.VocabularyB64)
	if err != nil {
		return result.BadRequest("vocabulary_base64: "+err.Error(), err.Error())
	}

	v, err := vocab.LoadVocabulary(strings.NewReader(string(vocabRaw)))
	if err != nil {
		return result.BadRequest("vocabulary is invalid: "+err.Error(), err.Error())
	}

	g, err := grammar.NewGrammar(body.BNFSource, v)
	if err != nil {
		return result.BadRequest("grammar is invalid: "+err.Error(), err.Error())
	}
	if _, ok := g.IDOf(body.Start); !ok {
		return result.BadRequest(fmt.Sprintf("start_nonterminal %q is not defined in the grammar", body.Start), "unknown start nonterminal")
	}

	p, err := api.Store.Profiles().Create(req.Context(), profiles.Profile{
		Name:      body.Name,
		Owner:     body.Owner,
		BNFSource: body.BNFSource,
		VocabRaw:  vocabRaw,
		Start:     body.Start,
		Options:   body.Options,
	})
	if err != nil {
		return storeErrToResult(err)
	}

	return result.Created(profileToModel(p), "created profile %s", p.ID)
}

func (api API) HTTPGetProfile() http.HandlerFunc {
	return Endpoint(api.epGetProfile, api.UnauthDelay)
}

func (api API) epGetProfile(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	p, err := api.Store.Profiles().GetByID(req.Context(), id)
	if err != nil {
		return storeErrToResult(err)
	}

	return result.OK(profileToModel(p), "got profile %s", p.ID)
}

func (api API) HTTPDeleteProfile() http.HandlerFunc {
	return Endpoint(api.epDeleteProfile, api.UnauthDelay)
}

func (api API) epDeleteProfile(req *http.Request) result.Result {
	id, err := requireIDParam(req)
	if err != nil {
		return result.NotFound()
	}

	p, err := api.Store.Profiles().Delete(req.Context(), id)
	if err != nil {
		return storeErrToResult(err)
	}

	return result.OK(profileToModel(p), "deleted profile %s", p.ID)
}

func requireIDParam(r *http.Request) (uuid.UUID, error) {
	idStr := chi.URLParam(r, "id")
	if idStr == "" {
		return uuid.UUID{}, fmt.Errorf("no id in path")
	}
	return uuid.Parse(idStr)
}

func decodeVocabBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("empty vocabulary")
	}
	return base64.StdEncoding.DecodeString(s)
}

func storeErrToResult(err error) result.Result {
	if errors.Is(err, errs.ErrNotFound) {
		return result.NotFound()
	}
	if errors.Is(err, errs.ErrAlreadyExists) {
		return result.Conflict(err.Error(), err.Error())
	}
	if errors.Is(err, errs.ErrBadArgument) {
		return result.BadRequest(err.Error(), err.Error())
	}
	return result.InternalServerError(err.Error())
}

// v must be a pointer to a type.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if strings.ToLower(contentType) != "application/json" {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("malformed JSON in request")
	}
	return nil
}
