package http_api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solpay-io/solpay/internal/auth"
	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/internal/payment"
	"github.com/solpay-io/solpay/internal/verification"
	"github.com/solpay-io/solpay/pkg/logger"
)

const (
	testRecipient = "JEKNVnkbo3jma5nREBBJCDoXFVeKkD56V3xKrvRmWxFG"
	testSender    = "4wBqpZM9xaSheZzJSMawUKKwhdpChKbZ5eu5ky4Vigw"
	testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"
)

type fakeVerifier struct {
	result  *models.VerificationResult
	err     error
	lastReq *models.VerificationRequest
}

func (f *fakeVerifier) Verify(_ context.Context, req *models.VerificationRequest) (*models.VerificationResult, error) {
	f.lastReq = req
	return f.result, f.err
}

type fakeRepo struct {
	developers  []*models.Developer
	subscribers []*models.Subscriber
}

func (f *fakeRepo) CreateDeveloper(d *models.Developer) error {
	d.ID = uint(len(f.developers) + 1)
	f.developers = append(f.developers, d)
	return nil
}

func (f *fakeRepo) GetDeveloperByEmail(email string) (*models.Developer, error) {
	for _, d := range f.developers {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) GetDeveloperByAPIKey(apiKey string) (*models.Developer, error) {
	for _, d := range f.developers {
		if d.APIKey == apiKey {
			return d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) GetDeveloperByTelegramUsername(username string) (*models.Developer, error) {
	for _, d := range f.developers {
		if d.TelegramUsername == username {
			return d, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) SetDeveloperTelegramChatID(_, _ string) error { return nil }

func (f *fakeRepo) CreateSubscriberIfAbsent(s *models.Subscriber) (bool, error) {
	for _, existing := range f.subscribers {
		if existing.Email == s.Email && existing.DeveloperID == s.DeveloperID {
			return false, nil
		}
	}
	f.subscribers = append(f.subscribers, s)
	return true, nil
}

func (f *fakeRepo) GetSubscriber(email string, developerID uint) (*models.Subscriber, error) {
	for _, s := range f.subscribers {
		if s.Email == email && s.DeveloperID == developerID {
			return s, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeRepo) ListSubscribers(developerID uint) ([]*models.Subscriber, error) {
	var out []*models.Subscriber
	for _, s := range f.subscribers {
		if s.DeveloperID == developerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeRepo) Close() error { return nil }

type testEnv struct {
	server   *HTTPServer
	repo     *fakeRepo
	verifier *fakeVerifier
	tokens   *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := &fakeRepo{}
	verifier := &fakeVerifier{result: &models.VerificationResult{}}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	server := NewHTTPServer(
		payment.NewURIBuilder("devnet"),
		verifier,
		repo,
		tokens,
		auth.NewMemoryRevocationStore(),
		0,
		logger.NewNop(),
	)

	return &testEnv{server: server, repo: repo, verifier: verifier, tokens: tokens}
}

func (e *testEnv) do(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	e.server.router.ServeHTTP(w, req)
	return w
}

func TestGeneratePaymentRequest(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/generate-payment-request", gin.H{
		"amount":          1000000000,
		"recipientWallet": testRecipient,
	}, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
	assert.Contains(t, w.Body.String(), "<svg")
}

func TestGeneratePaymentRequestRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{name: "missing amount", body: gin.H{"recipientWallet": testRecipient}},
		{name: "missing recipient", body: gin.H{"amount": 1}},
		{name: "zero amount", body: gin.H{"amount": 0, "recipientWallet": testRecipient}},
		{name: "negative amount", body: gin.H{"amount": -5, "recipientWallet": testRecipient}},
		{name: "non numeric amount", body: gin.H{"amount": "abc", "recipientWallet": testRecipient}},
		{name: "malformed recipient", body: gin.H{"amount": 1, "recipientWallet": "0xdeadbeef"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/generate-payment-request", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEqual(t, "image/svg+xml", w.Header().Get("Content-Type"))
		})
	}
}

func verifyBody() gin.H {
	return gin.H{
		"transactionSignature": testSignature,
		"recipientWallet":      testRecipient,
		"amount":               1000000000,
		"userEmail":            "user@example.com",
		"developerApiKey":      "key-1",
		"userWallet":           testSender,
		"planId":               "pro",
	}
}

func TestVerifyPayment(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/verify-payment", verifyBody(), nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])

	require.NotNil(t, env.verifier.lastReq)
	assert.Equal(t, uint64(1000000000), env.verifier.lastReq.Amount)
	assert.Equal(t, "key-1", env.verifier.lastReq.DeveloperAPIKey)
}

func TestVerifyPaymentMissingField(t *testing.T) {
	env := newTestEnv(t)

	body := verifyBody()
	delete(body, "userEmail")
	w := env.do(http.MethodPost, "/verify-payment", body, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, env.verifier.lastReq)
}

func TestVerifyPaymentErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{err: verification.ErrDeveloperNotFound, code: http.StatusNotFound},
		{err: verification.ErrTimeout, code: http.StatusBadRequest},
		{err: verification.ErrSenderMismatch, code: http.StatusBadRequest},
		{err: verification.ErrValidationFailed, code: http.StatusBadRequest},
		{err: fmt.Errorf("rpc exploded"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			env := newTestEnv(t)
			env.verifier.err = tt.err
			env.verifier.result = nil

			w := env.do(http.MethodPost, "/verify-payment", verifyBody(), nil)
			assert.Equal(t, tt.code, w.Code)

			var resp map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, false, resp["success"])
		})
	}
}

func TestRegisterDeveloper(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/register-developer", gin.H{
		"email":       "Dev@Example.com",
		"companyName": "Acme",
		"password":    "s3cret-pass",
	}, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp RegisterDeveloperResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.APIKey, 64)

	require.Len(t, env.repo.developers, 1)
	dev := env.repo.developers[0]
	assert.Equal(t, "dev@example.com", dev.Email)
	assert.NotEqual(t, "s3cret-pass", dev.PasswordHash)
	assert.True(t, auth.CheckPasswordHash("s3cret-pass", dev.PasswordHash))
}

func TestRegisterDeveloperRejectsBadBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/register-developer", gin.H{
		"email":       "not-an-email",
		"companyName": "Acme",
		"password":    "s3cret-pass",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, env.repo.developers)
}

func registerAndLogin(t *testing.T, env *testEnv) string {
	t.Helper()

	w := env.do(http.MethodPost, "/register-developer", gin.H{
		"email":       "dev@example.com",
		"companyName": "Acme",
		"password":    "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(http.MethodPost, "/login-developer", gin.H{
		"email":    "dev@example.com",
		"password": "s3cret-pass",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp LoginDeveloperResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginDeveloper(t *testing.T) {
	env := newTestEnv(t)
	token := registerAndLogin(t, env)

	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "dev@example.com", claims.Email)
}

func TestLoginDeveloperWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	registerAndLogin(t, env)

	w := env.do(http.MethodPost, "/login-developer", gin.H{
		"email":    "dev@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginDeveloperUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/login-developer", gin.H{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token := registerAndLogin(t, env)

	w := env.do(http.MethodPost, "/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	claims, err := env.tokens.Verify(token)
	require.NoError(t, err)
	revoked, err := env.server.revocation.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLogoutRejectsRevokedToken(t *testing.T) {
	env := newTestEnv(t)
	token := registerAndLogin(t, env)

	w := env.do(http.MethodPost, "/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Replaying the revoked token is an auth failure, not another logout.
	w = env.do(http.MethodPost, "/logout", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}

func TestLogoutWithoutToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/logout", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVerifiedPayments(t *testing.T) {
	env := newTestEnv(t)
	env.repo.developers = append(env.repo.developers, &models.Developer{ID: 1, Email: "dev@example.com", APIKey: "key-1"})
	env.repo.subscribers = append(env.repo.subscribers, &models.Subscriber{
		ID: 1, Email: "user@example.com", DeveloperID: 1, PlanID: "pro", TransactionSignature: testSignature,
	})

	w := env.do(http.MethodGet, "/get-verified-payments?developerApiKey=key-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                 `json:"success"`
		Users   []*models.Subscriber `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Users, 1)
	assert.Equal(t, "user@example.com", resp.Users[0].Email)
}

func TestGetVerifiedPaymentsMissingKey(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/get-verified-payments", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetVerifiedPaymentsUnknownKey(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/get-verified-payments?developerApiKey=nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCatchAllRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/no-such-route", nil, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
}
