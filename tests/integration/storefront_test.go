//go:build integration

// Package integration exercises the full storefront stack in-process: real
// file-backed session storage, the real HTTP handlers, and a fake catalog
// backend served by httptest.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/leafbound/bookstall/internal/domain/checkout"
	"github.com/leafbound/bookstall/internal/handler"
	"github.com/leafbound/bookstall/internal/promo"
	"github.com/leafbound/bookstall/internal/session"
	"github.com/leafbound/bookstall/internal/storage/backend"
	"github.com/leafbound/bookstall/pkg/kv"
)

// fakeBackend imitates the catalog and order API the storefront depends on.
func fakeBackend(t *testing.T) (*httptest.Server, *int) {
	t.Helper()

	orders := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id":1,"title":"Dune","author":"Frank Herbert","sellingPrice":24.99,"coverImage":"covers/dune.jpg","categoryId":1},
			{"id":2,"title":"Solaris","author":"Stanislaw Lem","sellingPrice":10.00,"coverImage":"covers/solaris.jpg","categoryId":1}
		]`)
	})
	mux.HandleFunc("GET /api/books/1", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":1,"title":"Dune","author":"Frank Herbert","sellingPrice":24.99,"coverImage":"covers/dune.jpg","categoryId":1}`)
	})
	mux.HandleFunc("GET /api/books/2", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":2,"title":"Solaris","author":"Stanislaw Lem","sellingPrice":10.00,"coverImage":"covers/solaris.jpg","categoryId":1}`)
	})
	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		orders++
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &orders
}

// storefront assembles the service over a shared data directory, standing in
// for one process lifetime.
func storefront(t *testing.T, dataDir, backendURL string) *httptest.Server {
	t.Helper()

	store, err := kv.NewFileStore(dataDir)
	require.NoError(t, err)

	client, err := backend.NewClient(backendURL)
	require.NoError(t, err)

	mux := http.NewServeMux()
	handler.New(
		backend.NewCatalogRepository(client),
		session.NewManager(store, zaptest.NewLogger(t)),
		checkout.NewService(promo.NewSet([]string{"welcome10"}), backend.NewOrderSubmitter(client)),
	).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// visitor drives one browser session, carrying the identity cookie.
type visitor struct {
	t      *testing.T
	base   string
	cookie *http.Cookie
}

func (v *visitor) do(method, path, body string) (*http.Response, []byte) {
	v.t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, v.base+path, rd)
	require.NoError(v.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if v.cookie != nil {
		req.AddCookie(v.cookie)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(v.t, err)
	defer resp.Body.Close()

	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName {
			v.cookie = ck
		}
	}

	data, err := io.ReadAll(resp.Body)
	require.NoError(v.t, err)
	return resp, data
}

func TestStorefrontFlow(t *testing.T) {
	be, orders := fakeBackend(t)
	dataDir := t.TempDir()

	srv := storefront(t, dataDir, be.URL)
	v := &visitor{t: t, base: srv.URL}

	// Browse the catalog.
	resp, body := v.do(http.MethodGet, "/api/books", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var books []map[string]any
	require.NoError(t, json.Unmarshal(body, &books))
	require.Len(t, books, 2)

	// Fill the cart and favorite a book.
	v.do(http.MethodPost, "/api/cart/items", `{"bookId":1}`)
	v.do(http.MethodPost, "/api/cart/items", `{"bookId":1}`)
	v.do(http.MethodPost, "/api/cart/items", `{"bookId":2}`)
	v.do(http.MethodPut, "/api/favorites/2", "")

	resp, body = v.do(http.MethodGet, "/api/cart/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		ItemCount int     `json:"itemCount"`
		Total     float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	assert.Equal(t, 3, summary.ItemCount)
	assert.InDelta(t, 62.98, summary.Total, 0.001)

	// Restart the storefront over the same data directory; the visitor's
	// state must survive.
	srv.Close()
	srv2 := storefront(t, dataDir, be.URL)
	v.base = srv2.URL

	resp, body = v.do(http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart struct {
		ItemCount int `json:"itemCount"`
	}
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Equal(t, 3, cart.ItemCount, "cart must survive a restart")

	resp, body = v.do(http.MethodGet, "/api/favorites", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var favs []map[string]any
	require.NoError(t, json.Unmarshal(body, &favs))
	assert.Len(t, favs, 1, "favorites must survive a restart")

	// Check out.
	resp, body = v.do(http.MethodPost, "/api/checkout",
		`{"promoCode":"welcome10","address":{"name":"Pat Reader","street":"1 Library Way","city":"Booktown","state":"OR","zip":"97201","country":"US"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", body)
	assert.Equal(t, 1, *orders)

	// The cart is empty afterwards, and stays empty across another restart.
	resp, body = v.do(http.MethodGet, "/api/cart", "")
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Zero(t, cart.ItemCount)

	srv2.Close()
	srv3 := storefront(t, dataDir, be.URL)
	v.base = srv3.URL

	_, body = v.do(http.MethodGet, "/api/cart", "")
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Zero(t, cart.ItemCount)
}

func TestStorefrontVisitorIsolation(t *testing.T) {
	be, _ := fakeBackend(t)
	srv := storefront(t, t.TempDir(), be.URL)

	v1 := &visitor{t: t, base: srv.URL}
	v1.do(http.MethodPost, "/api/cart/items", `{"bookId":1}`)

	v2 := &visitor{t: t, base: srv.URL}
	_, body := v2.do(http.MethodGet, "/api/cart", "")

	var cart struct {
		ItemCount int `json:"itemCount"`
	}
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Zero(t, cart.ItemCount)
}
