package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/pkg/kv"
)

func TestManager_VisitorIsCached(t *testing.T) {
	m := NewManager(kv.NewMemStore(), zap.NewNop())

	a := m.Visitor("visitor-a")
	again := m.Visitor("visitor-a")

	assert.Same(t, a, again, "same ID must yield the same store instances")
}

func TestManager_VisitorsAreIsolated(t *testing.T) {
	m := NewManager(kv.NewMemStore(), zap.NewNop())
	book := catalog.Book{ID: 1, Title: "Dune", Price: decimal.RequireFromString("24.99")}

	m.Visitor("visitor-a").Cart.Add(book)

	assert.Equal(t, 1, m.Visitor("visitor-a").Cart.ItemCount())
	assert.Equal(t, 0, m.Visitor("visitor-b").Cart.ItemCount())
}

func TestManager_RehydratesFromBacking(t *testing.T) {
	backing := kv.NewMemStore()
	book := catalog.Book{ID: 1, Title: "Dune", Price: decimal.RequireFromString("24.99")}

	NewManager(backing, zap.NewNop()).Visitor("visitor-a").Cart.Add(book)

	// A new manager over the same backing (e.g. after restart) sees the cart.
	fresh := NewManager(backing, zap.NewNop())
	assert.Equal(t, 1, fresh.Visitor("visitor-a").Cart.ItemCount())
}

func TestFromRequest_MintsCookie(t *testing.T) {
	m := NewManager(kv.NewMemStore(), zap.NewNop())

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	v := m.FromRequest(w, r)
	require.NotNil(t, v)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, v.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestFromRequest_ReusesValidCookie(t *testing.T) {
	m := NewManager(kv.NewMemStore(), zap.NewNop())

	w := httptest.NewRecorder()
	first := m.FromRequest(w, httptest.NewRequest(http.MethodGet, "/", nil))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: first.ID})

	w2 := httptest.NewRecorder()
	second := m.FromRequest(w2, r)

	assert.Same(t, first, second)
	assert.Empty(t, w2.Result().Cookies(), "existing identity must not be re-set")
}

func TestFromRequest_RejectsMalformedCookie(t *testing.T) {
	m := NewManager(kv.NewMemStore(), zap.NewNop())

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "../../etc/passwd"})

	w := httptest.NewRecorder()
	v := m.FromRequest(w, r)

	assert.NotEqual(t, "../../etc/passwd", v.ID)
	require.Len(t, w.Result().Cookies(), 1, "a fresh identity is minted")
}
