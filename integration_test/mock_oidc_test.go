package integration_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const mockKeyID = "integration-test-key"

// MockIdentity is what the mock provider attests to for a given code.
type MockIdentity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// MockOIDCServer implements enough of an OIDC issuer for the real
// go-oidc-based client to run against: discovery document, JWKS, and a
// token endpoint returning RS256-signed id_tokens. Codes are single-use,
// matching the provider contract.
type MockOIDCServer struct {
	server     *httptest.Server
	signingKey *rsa.PrivateKey
	clientID   string

	mu    sync.Mutex
	codes map[string]MockIdentity
}

func NewMockOIDCServer(clientID string) (*MockOIDCServer, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	m := &MockOIDCServer{
		signingKey: key,
		clientID:   clientID,
		codes:      make(map[string]MockIdentity),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", m.handleDiscovery)
	mux.HandleFunc("/token", m.handleToken)
	mux.HandleFunc("/keys", m.handleKeys)

	m.server = httptest.NewServer(mux)
	return m, nil
}

func (m *MockOIDCServer) URL() string {
	return m.server.URL
}

func (m *MockOIDCServer) Close() {
	m.server.Close()
}

// AddCode registers a single-use authorization code for an identity.
func (m *MockOIDCServer) AddCode(code string, identity MockIdentity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code] = identity
}

func (m *MockOIDCServer) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	base := m.server.URL
	writeJSON(w, map[string]interface{}{
		"issuer":                                base,
		"authorization_endpoint":                base + "/authorize",
		"token_endpoint":                        base + "/token",
		"jwks_uri":                              base + "/keys",
		"id_token_signing_alg_values_supported": []string{"RS256"},
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
	})
}

func (m *MockOIDCServer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if r.PostFormValue("grant_type") != "authorization_code" {
		writeOAuthError(w, "unsupported_grant_type")
		return
	}

	code := r.PostFormValue("code")

	m.mu.Lock()
	identity, ok := m.codes[code]
	if ok {
		delete(m.codes, code) // single-use
	}
	m.mu.Unlock()

	if !ok {
		writeOAuthError(w, "invalid_grant")
		return
	}

	idToken, err := m.signIDToken(identity)
	if err != nil {
		http.Error(w, "signing failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"access_token": "mock_access_token",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (m *MockOIDCServer) signIDToken(identity MockIdentity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":     m.server.URL,
		"aud":     m.clientID,
		"sub":     identity.Subject,
		"email":   identity.Email,
		"name":    identity.Name,
		"picture": identity.Picture,
		"iat":     now.Unix(),
		"exp":     now.Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = mockKeyID
	return token.SignedString(m.signingKey)
}

func (m *MockOIDCServer) handleKeys(w http.ResponseWriter, r *http.Request) {
	pub := &m.signingKey.PublicKey
	writeJSON(w, map[string]interface{}{
		"keys": []map[string]string{
			{
				"kty": "RSA",
				"alg": "RS256",
				"use": "sig",
				"kid": mockKeyID,
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			},
		},
	})
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeOAuthError(w http.ResponseWriter, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": code})
}
