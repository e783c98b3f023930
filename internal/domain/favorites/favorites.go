// Package favorites implements the visitor's favorites list: an
// insertion-ordered set of book snapshots, unique by book ID, mirrored to
// durable storage on every mutation and rehydrated once at construction.
package favorites

import (
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"github.com/leafbound/bookstall/internal/domain/catalog"
	"github.com/leafbound/bookstall/pkg/kv"
)

// persistKey is the fixed storage slot for the serialized favorites list.
const persistKey = "favorites"

// Store holds the authoritative in-memory favorites state. The ids index
// gives catalog and detail views an O(1) membership test for rendering the
// toggle state.
type Store struct {
	mu      sync.RWMutex
	kv      kv.Store
	lg      *zap.Logger
	books   []catalog.Book
	ids     map[int64]struct{}
	subs    map[int]func()
	nextSub int
}

// NewStore builds a Store and rehydrates it from the backing store. Missing
// or unparsable state degrades to an empty list with a logged diagnostic;
// construction never fails.
func NewStore(store kv.Store, lg *zap.Logger) *Store {
	s := &Store{
		kv:   store,
		lg:   lg.Named("favorites"),
		ids:  make(map[int64]struct{}),
		subs: make(map[int]func()),
	}

	data, err := store.Load(persistKey)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			s.lg.Error("Load persisted favorites", zap.Error(err))
		}
		return s
	}

	books, err := decodeBooks(data)
	if err != nil {
		s.lg.Error("Parse persisted favorites, starting empty", zap.Error(err))
		return s
	}

	for _, b := range books {
		if _, ok := s.ids[b.ID]; ok {
			continue
		}
		s.ids[b.ID] = struct{}{}
		s.books = append(s.books, b)
	}
	return s
}

// Favorites returns the favorited books in insertion order.
func (s *Store) Favorites() []catalog.Book {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]catalog.Book, len(s.books))
	copy(out, s.books)
	return out
}

// IsFavorite reports whether the book with the given ID is favorited.
func (s *Store) IsFavorite(bookID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.ids[bookID]
	return ok
}

// Add appends book to the favorites. Adding a book that is already favorited
// is a no-op, so repeated toggles cannot duplicate an entry.
func (s *Store) Add(book catalog.Book) {
	s.mu.Lock()
	if _, ok := s.ids[book.ID]; ok {
		s.mu.Unlock()
		return
	}
	s.ids[book.ID] = struct{}{}
	s.books = append(s.books, book)
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Remove deletes the book with the given ID. Removing an absent ID is a
// no-op and leaves the persisted key untouched.
func (s *Store) Remove(bookID int64) {
	s.mu.Lock()
	if _, ok := s.ids[bookID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.ids, bookID)
	for i, b := range s.books {
		if b.ID == bookID {
			s.books = append(s.books[:i], s.books[i+1:]...)
			break
		}
	}
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Clear empties the favorites and erases the persisted key entirely.
func (s *Store) Clear() {
	s.mu.Lock()
	s.books = nil
	s.ids = make(map[int64]struct{})
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

// persistLocked mirrors current state to the backing store under the same
// empty-state policy as the cart: an empty list removes the key instead of
// storing "[]". Callers must hold s.mu.
func (s *Store) persistLocked() {
	if len(s.books) == 0 {
		if err := s.kv.Remove(persistKey); err != nil {
			s.lg.Error("Remove persisted favorites", zap.Error(err))
		}
		return
	}
	if err := s.kv.Save(persistKey, encodeBooks(s.books)); err != nil {
		s.lg.Error("Save favorites", zap.Error(err), zap.Int("books", len(s.books)))
	}
}

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

// Persisted format: a JSON array of Book snapshots.

func encodeBooks(books []catalog.Book) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, b := range books {
		catalog.EncodeBook(&e, b)
	}
	e.ArrEnd()
	return e.Bytes()
}

func decodeBooks(data []byte) ([]catalog.Book, error) {
	d := jx.DecodeBytes(data)
	var books []catalog.Book
	if err := d.Arr(func(d *jx.Decoder) error {
		b, err := catalog.DecodeBook(d)
		if err != nil {
			return err
		}
		books = append(books, b)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode favorites")
	}
	return books, nil
}
