package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nexusmart/storefront/internal/cartstore"
	"github.com/nexusmart/storefront/internal/catalog"
	"github.com/nexusmart/storefront/internal/domain"
	"github.com/nexusmart/storefront/internal/pricing"
	"github.com/nexusmart/storefront/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.OrderPlaced
	err    error
}

func (p *recordingPublisher) PublishOrderPlaced(_ context.Context, e domain.OrderPlaced) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

type testApp struct {
	server    *httptest.Server
	client    *http.Client
	repo      *catalog.Repository
	carts     *cartstore.MemoryRepository
	publisher *recordingPublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zap.NewNop()

	repo, err := catalog.NewRepository(catalog.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	require.NoError(t, repo.RunMigrations())
	_, err = catalog.Seed(context.Background(), repo, logger)
	require.NoError(t, err)

	carts := cartstore.NewMemoryRepository(time.Hour)
	pub := &recordingPublisher{}
	rules := pricing.DefaultRules()

	cartSvc := service.NewCartService(carts, repo, rules, logger)
	checkoutSvc := service.NewCheckoutService(carts, repo, rules, pub, "USD", logger)
	productSvc := service.NewProductService(repo, repo)
	adminSvc, err := service.NewAdminService(repo, nil, "devops2025", logger)
	require.NoError(t, err)

	sessions := NewSessionManager([]byte("test-secret-test-secret-32-bytes"), time.Hour, false, logger)
	timeout := 5 * time.Second
	router := NewRouter(RouterConfig{RequestTimeout: timeout, MaxRequestBodySize: 1 << 20}, sessions, Handlers{
		Products: NewProductHandler(productSvc, cartSvc, sessions, timeout, logger),
		Cart:     NewCartHandler(cartSvc, sessions, timeout, logger),
		Checkout: NewCheckoutHandler(checkoutSvc, sessions, timeout, logger),
		Admin:    NewAdminHandler(adminSvc, sessions, timeout, logger),
	}, logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testApp{
		server:    server,
		client:    newClient(t),
		repo:      repo,
		carts:     carts,
		publisher: pub,
	}
}

// newClient keeps cookies and does not follow redirects so tests can assert on them.
func newClient(t *testing.T) *http.Client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) postAJAX(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return a.do(t, req)
}

func (a *testApp) sendJSON(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return a.do(t, req)
}

func (a *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (a *testApp) loginAdmin(t *testing.T) {
	t.Helper()
	resp := a.postForm(t, "/admin-login", url.Values{"password": {"devops2025"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

// sessionCart returns the stored cart of the client's only session.
func (a *testApp) sessionCart(t *testing.T) map[string]int {
	t.Helper()
	sid := a.sessionID(t)
	cart, err := a.carts.Load(context.Background(), sid)
	require.NoError(t, err)
	return cart.Items()
}

// sessionID reads the id back through the session manager, the same way handlers do.
func (a *testApp) sessionID(t *testing.T) string {
	t.Helper()
	var sid string
	probe := NewSessionManager([]byte("test-secret-test-secret-32-bytes"), time.Hour, false, zap.NewNop())
	h := probe.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		sid = sessionID(r)
	}))

	u, err := url.Parse(a.server.URL)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range a.client.Jar.Cookies(u) {
		req.AddCookie(c)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	require.NotEmpty(t, sid)
	return sid
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

var errBrokerDown = errors.New("broker down")
