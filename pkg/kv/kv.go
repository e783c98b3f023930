// Package kv provides durable keyed blob storage for per-visitor state.
//
// The storefront treats persistence as best-effort: a missing or unreadable
// value must never prevent the service from running, so implementations keep
// the contract small (load, overwrite, remove) and leave retry or fallback
// policy to callers.
package kv

import (
	"strings"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned by Load when no value has been written for a key,
// or when a previously written value has been removed.
var ErrNotFound = errors.New("kv: key not found")

// Store is a durable string-keyed blob store.
type Store interface {
	// Load returns the stored value for key, or ErrNotFound when absent.
	Load(key string) ([]byte, error)

	// Save overwrites the stored value for key.
	Save(key string, value []byte) error

	// Remove deletes the value for key. Removing an absent key is a no-op.
	Remove(key string) error
}

// Namespaced returns a Store view that prefixes every key with ns, keeping
// each visitor's fixed keys ("cart", "favorites") disjoint from every other
// visitor's.
func Namespaced(s Store, ns string) Store {
	return &namespaced{inner: s, prefix: ns + "/"}
}

type namespaced struct {
	inner  Store
	prefix string
}

func (n *namespaced) Load(key string) ([]byte, error) {
	return n.inner.Load(n.prefix + key)
}

func (n *namespaced) Save(key string, value []byte) error {
	return n.inner.Save(n.prefix+key, value)
}

func (n *namespaced) Remove(key string) error {
	return n.inner.Remove(n.prefix + key)
}

// validKey reports whether key is safe to use as a storage path component.
// Keys are slash-separated segments; empty segments and dot-relative segments
// are rejected to keep file-backed stores inside their root directory.
func validKey(key string) bool {
	if key == "" {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
