package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/petloc/petloc/internal/config"
	"github.com/petloc/petloc/internal/identity"
	"github.com/petloc/petloc/internal/sessions"
	"github.com/petloc/petloc/internal/users"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// in-memory sessions repo
type fakeSessionsRepo struct {
	store map[string]*sessions.Session
}

func (f *fakeSessionsRepo) Create(ctx context.Context, s *sessions.Session) error {
	if f.store == nil {
		f.store = map[string]*sessions.Session{}
	}
	f.store[s.RefreshToken] = s
	return nil
}

func (f *fakeSessionsRepo) GetByRefresh(ctx context.Context, refresh string) (*sessions.Session, error) {
	s, ok := f.store[refresh]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (f *fakeSessionsRepo) DeleteByRefresh(ctx context.Context, refresh string) error {
	delete(f.store, refresh)
	return nil
}

type authFixture struct {
	router *gin.Engine
	users  *users.Service
	redis  *mr.Miniredis
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m := mr.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	sessions.SetBlacklistClient(client)

	cfg := &config.Config{}
	cfg.JWT.Secret = "auth-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = 24 * time.Hour

	uSvc := users.NewService(users.NewMemoryUserRepository())
	sSvc := sessions.NewService(&fakeSessionsRepo{})
	provider := identity.NewLocalProvider(uSvc)
	hook := identity.NewSessionHook(provider, identity.NewRoleCache(client, time.Hour))
	hook.Resolve(nil)

	h := NewAuthHandler(cfg, hook, uSvc, sSvc)
	r := gin.New()
	rg := r.Group("/api")
	h.Register(rg)

	return &authFixture{router: r, users: uSvc, redis: m}
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	resp := w.Result()
	var got map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&got)
	return resp, got
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Ana Silva","email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Conta criada com sucesso", got["message"])
	user := got["user"].(map[string]interface{})
	assert.Equal(t, "Ana Silva", user["nome"])
	assert.Equal(t, "user", user["role"])

	resp, got = doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Login realizado com sucesso", got["message"])
	assert.NotEmpty(t, got["token"])
	assert.NotEmpty(t, got["refreshToken"])
}

func TestLoginMissingFields(t *testing.T) {
	f := newAuthFixture(t)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/login", `{"email":"ana@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email e senha são obrigatórios", got["message"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.users.CreateAccount(context.Background(), "Ana", "ana@x.com", "senha-forte")
	require.NoError(t, err)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"errada"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Credenciais inválidas", got["message"])
}

func TestLoginRoleComesFromStoredAccount(t *testing.T) {
	f := newAuthFixture(t)

	// isAdmin in the request body must not grant the admin role
	u, err := f.users.CreateAccount(context.Background(), "Ana", "ana@x.com", "senha-forte")
	require.NoError(t, err)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"senha-forte","isAdmin":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := got["user"].(map[string]interface{})
	assert.Equal(t, "user", user["role"])

	require.NoError(t, f.users.SetTipo(context.Background(), u.ID, "admin"))
	resp, got = doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user = got["user"].(map[string]interface{})
	assert.Equal(t, "admin", user["role"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Ana","email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Outra","email":"ana@x.com","password":"outra-senha"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "Este email já está em uso", got["message"])
}

func TestRegisterWeakPassword(t *testing.T) {
	f := newAuthFixture(t)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Ana","email":"ana@x.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Senha muito fraca", got["message"])

	// no account should survive a rejected registration
	u, err := f.users.GetByEmail(context.Background(), "ana@x.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestRegisterMissingFields(t *testing.T) {
	f := newAuthFixture(t)

	resp, got := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"email":"ana@x.com","password":"senha-forte"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Nome, email e senha são obrigatórios", got["message"])
}

func TestRefreshFlow(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Ana","email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, got := doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rt := got["refreshToken"].(string)

	resp, got = doJSON(t, f.router, "POST", "/api/auth/refresh",
		fmt.Sprintf(`{"refreshToken":"%s"}`, rt))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, got["token"])

	resp, _ = doJSON(t, f.router, "POST", "/api/auth/refresh",
		`{"refreshToken":"does-not-exist"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutBlacklistsAccessAndDeletesRefresh(t *testing.T) {
	f := newAuthFixture(t)

	resp, _ := doJSON(t, f.router, "POST", "/api/auth/register",
		`{"nome":"Ana","email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, got := doJSON(t, f.router, "POST", "/api/auth/login",
		`{"email":"ana@x.com","password":"senha-forte"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	access := got["token"].(string)
	rt := got["refreshToken"].(string)

	req := httptest.NewRequest("POST", "/api/auth/logout",
		strings.NewReader(fmt.Sprintf(`{"refreshToken":"%s"}`, rt)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Result().StatusCode)

	// refresh is gone
	resp, _ = doJSON(t, f.router, "POST", "/api/auth/refresh",
		fmt.Sprintf(`{"refreshToken":"%s"}`, rt))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// access token is blacklisted
	assert.True(t, f.redis.Exists("blacklist:access:"+access))
}
