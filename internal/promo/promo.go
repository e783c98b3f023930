// Package promo validates storefront promo codes and computes their
// discounts. Codes come from an offline-ingested list (see cmd/promo-ingest);
// a bloom filter in front of the exact set rejects the overwhelmingly common
// case, an unknown code, without touching the set.
package promo

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrInvalidCode is returned when a promo code is not in the valid set.
var ErrInvalidCode = errors.New("invalid promo code")

// falsePositiveRate for the bloom prefilter. Misses are resolved by the
// exact set, so this only tunes wasted lookups, not correctness.
const falsePositiveRate = 0.001

// discountRate is the storefront's flat promo benefit: 10% of the subtotal.
var discountRate = decimal.RequireFromString("0.10")

// Set holds the valid promo codes. Codes are matched case-insensitively.
type Set struct {
	filter *bloom.BloomFilter
	codes  map[string]struct{}
}

// NewSet builds a Set from the given codes.
func NewSet(codes []string) *Set {
	n := uint(len(codes))
	if n == 0 {
		n = 1
	}
	s := &Set{
		filter: bloom.NewWithEstimates(n, falsePositiveRate),
		codes:  make(map[string]struct{}, len(codes)),
	}
	for _, code := range codes {
		c := normalize(code)
		if c == "" {
			continue
		}
		s.filter.AddString(c)
		s.codes[c] = struct{}{}
	}
	return s
}

// Load reads one code per line from r, skipping blank lines and #-comments.
func Load(r io.Reader) (*Set, error) {
	var codes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "scan promo codes")
	}
	return NewSet(codes), nil
}

// LoadFile reads a code list produced by promo-ingest.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", path)
	}
	defer f.Close()
	return Load(f)
}

// Len reports the number of valid codes.
func (s *Set) Len() int {
	return len(s.codes)
}

// Contains reports whether code is a valid promo code.
func (s *Set) Contains(code string) bool {
	c := normalize(code)
	if c == "" || !s.filter.TestString(c) {
		return false
	}
	_, ok := s.codes[c]
	return ok
}

// Validate checks code and returns the discount it grants on the given
// subtotal: 10% of the subtotal for any valid code, rounded to cents.
// Unknown codes return ErrInvalidCode.
func (s *Set) Validate(code string, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if !s.Contains(code) {
		return decimal.Zero, ErrInvalidCode
	}
	d := subtotal.Mul(discountRate)
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d.Round(2), nil
}

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}
