package httpapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/constrain/internal/profiles/inmem"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const dnaVocabSource = "0 'A' 1\n1 'C' 1\n2 'G' 1\n3 'T' 1\n"
const dnaGrammarSource = `<dna> ::= <base><dna> | <base> ; <base> ::= 'A' | 'C' | 'G' | 'T' ;`

func newTestAPI(t *testing.T) (API, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	api := API{
		Store:             inmem.NewStore(),
		Sessions:          NewSessionRegistry(),
		AdminSecret:       []byte("test-secret-test-secret-test-secret-32"),
		AdminPasswordHash: hash,
		UnauthDelay:       0,
	}

	tok, err := GenerateAdminToken(api.AdminSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	return api, tok
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_ProfileSessionAcceptLifecycle(t *testing.T) {
	assert := assert.New(t)
	api, adminTok := newTestAPI(t)
	router := api.Router()

	createReq := CreateProfileRequest{
		Name:          "dna",
		Owner:         "alice",
		BNFSource:     dnaGrammarSource,
		VocabularyB64: base64.StdEncoding.EncodeToString([]byte(dnaVocabSource)),
		Start:         "dna",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles", createReq, adminTok)
	if !assert.Equal(http.StatusCreated, rec.Code, rec.Body.String()) {
		return
	}

	var profile ProfileModel
	if !assert.NoError(json.Unmarshal(rec.Body.Bytes(), &profile)) {
		return
	}
	assert.Equal("dna", profile.Name)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions", CreateSessionRequest{ProfileID: profile.ID}, "")
	if !assert.Equal(http.StatusCreated, rec.Code, rec.Body.String()) {
		return
	}
	var legal LegalTokensModel
	if !assert.NoError(json.Unmarshal(rec.Body.Bytes(), &legal)) {
		return
	}
	assert.Equal("continue", legal.Status)
	assert.Contains(legal.Legal, int64(0)) // "A" is a legal opening base

	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+legal.SessionID+"/accept", AcceptTokenRequest{TokenID: 0}, "")
	if !assert.Equal(http.StatusOK, rec.Code, rec.Body.String()) {
		return
	}
	var afterAccept LegalTokensModel
	if !assert.NoError(json.Unmarshal(rec.Body.Bytes(), &afterAccept)) {
		return
	}
	assert.Contains([]string{"continue", "end"}, afterAccept.Status)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/sessions/"+legal.SessionID+"/reset", nil, "")
	assert.Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/sessions/"+legal.SessionID, nil, "")
	assert.Equal(http.StatusNoContent, rec.Code, rec.Body.String())
}

func Test_CreateProfile_requiresAdminAuth(t *testing.T) {
	api, _ := newTestAPI(t)
	router := api.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/profiles", CreateProfileRequest{
		Name: "dna", BNFSource: dnaGrammarSource, Start: "dna",
		VocabularyB64: base64.StdEncoding.EncodeToString([]byte(dnaVocabSource)),
	}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_AdminLogin_wrongPassword(t *testing.T) {
	api, _ := newTestAPI(t)
	router := api.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/login", AdminLoginRequest{Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_AdminLogin_correctPassword(t *testing.T) {
	api, _ := newTestAPI(t)
	router := api.Router()

	rec := doJSON(t, router, http.MethodPost, "/api/v1/admin/login", AdminLoginRequest{Password: "hunter2"}, "")
	if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
		return
	}
	var resp AdminLoginResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}
