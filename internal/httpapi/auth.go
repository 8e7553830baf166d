package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/constrain/server/result"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AdminLoginRequest is the body of POST /admin/login.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// AdminLoginResponse is returned on successful admin login.
type AdminLoginResponse struct {
	Token string `json:"token"`
}

func (api API) HTTPAdminLogin() http.HandlerFunc {
	return Endpoint(api.epAdminLogin, api.UnauthDelay)
}

func (api API) epAdminLogin(req *http.Request) result.Result {
	var body AdminLoginRequest
	if err := parseJSON(req, &body); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if err := bcrypt.CompareHashAndPassword(api.AdminPasswordHash, []byte(body.Password)); err != nil {
		return result.Unauthorized("", "admin login: %s", err.Error())
	}

	tok, err := GenerateAdminToken(api.AdminSecret, time.Hour)
	if err != nil {
		return result.InternalServerError("generate token: %s", err.Error())
	}

	return result.OK(AdminLoginResponse{Token: tok}, "admin logged in")
}

// requireAdmin is middleware gating the profile-management endpoints behind
// a bearer token signed with api.AdminSecret.
func (api API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tok, err := getBearerToken(req)
		if err != nil {
			time.Sleep(api.UnauthDelay)
			result.Unauthorized("", err.Error()).WriteResponse(w)
			return
		}

		if err := verifyAdminToken(tok, api.AdminSecret); err != nil {
			time.Sleep(api.UnauthDelay)
			result.Unauthorized("", err.Error()).WriteResponse(w)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func getBearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(strings.TrimSpace(parts[0])) != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return strings.TrimSpace(parts[1]), nil
}

func verifyAdminToken(tok string, secret []byte) error {
	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("constrain-server"), jwt.WithLeeway(time.Minute))
	return err
}

// GenerateAdminToken mints a bearer token authorized to manage profiles,
// signed with secret and valid for the given duration. Used by the
// POST /admin/login endpoint to issue a token after a successful login.
func GenerateAdminToken(secret []byte, validFor time.Duration) (string, error) {
	claims := &jwt.MapClaims{
		"iss": "constrain-server",
		"exp": time.Now().Add(validFor).Unix(),
		"sub": "admin",
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}
