package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"authgate/core"
	"authgate/core/providers"
	"authgate/storage"

	"github.com/stretchr/testify/suite"
)

type IntegrationTestSuite struct {
	suite.Suite
	mockOIDC *MockOIDCServer
	repo     *storage.SQLiteRepository
	httpSrv  *httptest.Server
	config   *core.Config
}

func (s *IntegrationTestSuite) SetupSuite() {
	var err error

	s.mockOIDC, err = NewMockOIDCServer("integration_client_id")
	s.Require().NoError(err)

	s.config = &core.Config{
		GoogleClientID:     "integration_client_id",
		GoogleClientSecret: "integration_client_secret",
		GoogleRedirectURI:  "http://localhost/callback",
		GoogleIssuerURL:    s.mockOIDC.URL(),
		SessionSecret:      "test-secret-key-for-integration-tests",
		SessionTTL:         30 * time.Minute,
		ProviderTimeout:    5 * time.Second,
	}

	s.repo, err = storage.NewSQLiteRepository(filepath.Join(s.T().TempDir(), "integration.db"))
	s.Require().NoError(err)

	provider, err := providers.NewGoogleProvider(context.Background(), &providers.GoogleConfig{
		ClientID:     s.config.GoogleClientID,
		ClientSecret: s.config.GoogleClientSecret,
		RedirectURI:  s.config.GoogleRedirectURI,
		IssuerURL:    s.config.GoogleIssuerURL,
		Timeout:      s.config.ProviderTimeout,
	})
	s.Require().NoError(err)

	authService := core.NewAuthService(s.repo, provider, s.config)
	server := core.NewServer(authService, s.config)
	s.httpSrv = httptest.NewServer(server.Routes())
}

func (s *IntegrationTestSuite) TearDownSuite() {
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	if s.repo != nil {
		s.repo.Close()
	}
	if s.mockOIDC != nil {
		s.mockOIDC.Close()
	}
}

func (s *IntegrationTestSuite) login(code string) (*http.Response, error) {
	body, _ := json.Marshal(map[string]string{"code": code})
	client := &http.Client{Timeout: 5 * time.Second}
	return client.Post(s.httpSrv.URL+"/auth/google", "application/json", bytes.NewReader(body))
}

func (s *IntegrationTestSuite) probe(token string) (*http.Response, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	req, _ := http.NewRequest(http.MethodGet, s.httpSrv.URL+"/auth/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return client.Do(req)
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	} `json:"user"`
}

func (s *IntegrationTestSuite) TestFullLoginFlow() {
	s.mockOIDC.AddCode("flow_code_1", MockIdentity{
		Subject: "g-42",
		Email:   "a@x.com",
		Name:    "Flow User",
		Picture: "https://example.com/avatar.jpg",
	})

	resp, err := s.login("flow_code_1")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result loginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&result))
	s.NotEmpty(result.Token)
	s.Equal("a@x.com", result.User.Email)

	probeResp, err := s.probe(result.Token)
	s.Require().NoError(err)
	defer probeResp.Body.Close()
	s.Require().Equal(http.StatusOK, probeResp.StatusCode)

	var probeBody map[string]string
	s.Require().NoError(json.NewDecoder(probeResp.Body).Decode(&probeBody))
	s.Equal(result.User.ID, probeBody["user_id"])
}

func (s *IntegrationTestSuite) TestRepeatLoginReusesUser() {
	identity := MockIdentity{
		Subject: "g-repeat",
		Email:   "repeat@x.com",
		Name:    "Repeat User",
	}
	s.mockOIDC.AddCode("repeat_code_1", identity)
	s.mockOIDC.AddCode("repeat_code_2", identity)

	first := s.mustLogin("repeat_code_1")
	second := s.mustLogin("repeat_code_2")

	s.Equal(first.User.ID, second.User.ID)
}

func (s *IntegrationTestSuite) TestCodeIsSingleUse() {
	s.mockOIDC.AddCode("once_code", MockIdentity{
		Subject: "g-once",
		Email:   "once@x.com",
	})

	s.mustLogin("once_code")

	resp, err := s.login("once_code")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestInvalidCodeRejected() {
	resp, err := s.login("never_issued")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("Authorization failed", body["error"])
}

func (s *IntegrationTestSuite) TestMissingHeaderRejected() {
	resp, err := s.probe("")
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)

	var body map[string]string
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	s.Equal("Missing or invalid Authorization header", body["error"])
}

func (s *IntegrationTestSuite) TestTamperedTokenRejected() {
	s.mockOIDC.AddCode("tamper_code", MockIdentity{
		Subject: "g-tamper",
		Email:   "tamper@x.com",
	})
	result := s.mustLogin("tamper_code")

	// Flip the final signature character.
	last := result.Token[len(result.Token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := result.Token[:len(result.Token)-1] + string(flipped)
	resp, err := s.probe(tampered)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *IntegrationTestSuite) mustLogin(code string) loginResponse {
	resp, err := s.login(code)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var result loginResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}
