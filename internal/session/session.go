// Package session ties a visitor identity to that visitor's cart and
// favorites stores. Identity lives in a long-lived cookie; state lives in
// the kv backing under the visitor's namespace, so it survives restarts of
// both the browser session and this service.
package session

import (
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/cart"
	"github.com/leafbound/bookstall/internal/domain/favorites"
	"github.com/leafbound/bookstall/pkg/kv"
)

// CookieName carries the visitor ID between requests.
const CookieName = "bookstall_visitor"

// cookieMaxAge keeps the visitor identity for a year, matching the
// cart's own outlive-the-session persistence.
const cookieMaxAge = int(365 * 24 * time.Hour / time.Second)

var visitorIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Visitor bundles one visitor's stores. Stores are exclusive owners of their
// state; handlers only call their operations.
type Visitor struct {
	ID        string
	Cart      *cart.Store
	Favorites *favorites.Store
}

// Manager lazily constructs and caches Visitor state over a shared kv
// backing. Each visitor gets a namespaced view so the fixed "cart" and
// "favorites" keys never collide across visitors.
type Manager struct {
	mu       sync.Mutex
	backing  kv.Store
	lg       *zap.Logger
	visitors map[string]*Visitor
}

// NewManager creates a Manager over the given backing store.
func NewManager(backing kv.Store, lg *zap.Logger) *Manager {
	return &Manager{
		backing:  backing,
		lg:       lg,
		visitors: make(map[string]*Visitor),
	}
}

// Visitor returns the cached state for id, constructing and rehydrating the
// stores on first sight.
func (m *Manager) Visitor(id string) *Visitor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.visitors[id]; ok {
		return v
	}

	ns := kv.Namespaced(m.backing, id)
	lg := m.lg.With(zap.String("visitor", id))
	v := &Visitor{
		ID:        id,
		Cart:      cart.NewStore(ns, lg),
		Favorites: favorites.NewStore(ns, lg),
	}
	m.visitors[id] = v
	return v
}

// FromRequest resolves the request's visitor, minting a new identity (and
// setting the cookie) when none is present or the cookie value is not a
// well-formed UUID.
func (m *Manager) FromRequest(w http.ResponseWriter, r *http.Request) *Visitor {
	if c, err := r.Cookie(CookieName); err == nil && visitorIDPattern.MatchString(c.Value) {
		return m.Visitor(c.Value)
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return m.Visitor(id)
}
