// Package cart implements the visitor's shopping cart: an insertion-ordered
// set of book snapshots with quantities, mirrored to durable storage on every
// mutation and rehydrated once at construction.
package cart

import (
	"sync"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/pkg/kv"
)

// persistKey is the fixed storage slot for the serialized cart.
const persistKey = "cart"

// Line pairs a book snapshot with a purchase quantity. At most one Line
// exists per book ID.
type Line struct {
	Book     catalog.Book
	Quantity int
}

// Store holds the authoritative in-memory cart state. Mutations flow only
// through Store methods; each one re-serializes the full cart to the backing
// store before returning. Persistence is best-effort: write failures are
// logged and in-memory state stays usable for the rest of the session.
type Store struct {
	mu      sync.RWMutex
	kv      kv.Store
	lg      *zap.Logger
	lines   []Line
	index   map[int64]int // book ID -> position in lines
	subs    map[int]func()
	nextSub int
}

// NewStore builds a Store and rehydrates it from the backing store. A missing
// key yields an empty cart; an unreadable or unparsable value also yields an
// empty cart with a logged diagnostic. Construction never fails.
func NewStore(store kv.Store, lg *zap.Logger) *Store {
	s := &Store{
		kv:    store,
		lg:    lg.Named("cart"),
		index: make(map[int64]int),
		subs:  make(map[int]func()),
	}

	data, err := store.Load(persistKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.lg.Error("Load persisted cart", zap.Error(err))
		}
		return s
	}

	lines, err := decodeLines(data)
	if err != nil {
		s.lg.Error("Parse persisted cart, starting empty", zap.Error(err))
		return s
	}

	// Merge any duplicate IDs from a hand-edited or corrupt blob so the
	// one-line-per-book invariant holds from the first read.
	for _, ln := range lines {
		if ln.Quantity < 1 {
			ln.Quantity = 1
		}
		if i, ok := s.index[ln.Book.ID]; ok {
			s.lines[i].Quantity += ln.Quantity
			continue
		}
		s.index[ln.Book.ID] = len(s.lines)
		s.lines = append(s.lines, ln)
	}
	return s
}

// Items returns the cart contents in insertion order.
func (s *Store) Items() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// ItemCount returns the sum of all line quantities, not the line count.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, ln := range s.lines {
		total += ln.Quantity
	}
	return total
}

// Add puts book in the cart. If a line for book.ID already exists its
// quantity grows by one and the line keeps its position; otherwise a new
// line with quantity 1 is appended.
func (s *Store) Add(book catalog.Book) {
	s.mu.Lock()
	if i, ok := s.index[book.ID]; ok {
		s.lines[i].Quantity++
	} else {
		s.index[book.ID] = len(s.lines)
		s.lines = append(s.lines, Line{Book: book, Quantity: 1})
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// UpdateQuantity sets the line for book.ID to quantity. Values below 1 clamp
// to 1: the UI's own decrement control stops at 1, and clamping here keeps a
// misbehaving caller from corrupting downstream price arithmetic. Updating a
// book that is not in the cart is a no-op.
func (s *Store) UpdateQuantity(book catalog.Book, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	i, ok := s.index[book.ID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.lines[i].Quantity = quantity
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the line for book.ID. Removing a book that is not in the
// cart is a no-op.
func (s *Store) Remove(book catalog.Book) {
	s.mu.Lock()
	i, ok := s.index[book.ID]
	if !ok {
		s.mu.Unlock()
		return
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	s.reindexLocked()
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Clear empties the cart and erases the persisted key entirely, as opposed
// to persisting an empty array.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.index = make(map[int64]int)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Subscribe registers fn to run after every mutation. The returned function
// cancels the subscription.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) reindexLocked() {
	s.index = make(map[int64]int, len(s.lines))
	for i, ln := range s.lines {
		s.index[ln.Book.ID] = i
	}
}

// persistLocked mirrors current state to the backing store. An empty cart
// removes the key rather than storing "[]"; see the uniform empty-state
// policy in DESIGN.md. Callers must hold s.mu.
func (s *Store) persistLocked() {
	if len(s.lines) == 0 {
		if err := s.kv.Remove(persistKey); err != nil {
			s.lg.Error("Remove persisted cart", zap.Error(err))
		}
		return
	}
	if err := s.kv.Save(persistKey, encodeLines(s.lines)); err != nil {
		s.lg.Error("Save cart", zap.Error(err), zap.Int("lines", len(s.lines)))
	}
}

// notify runs subscribers outside the lock so a callback can read the store.
func (s *Store) notify() {
	s.mu.RLock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}
