// Package cellid decodes Xenium composite cell identifiers.
package cellid

import (
	"fmt"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Decode converts a cell identifier string to its integer form.
//
// Already-numeric identifiers (including the unassigned sentinel "0") are
// returned unchanged. Composite identifiers look like "ffkpbaba-1": the part
// before the first '-' is a shifted-hex digit sequence where 'a'..'p' encode
// the nibble values 0..15, and the part after it is a dataset suffix that is
// validated but not part of the value.
func Decode(id string) (uint32, error) {
	if v, err := strconv.ParseUint(id, 10, 32); err == nil {
		return uint32(v), nil
	}

	shifted, suffix, ok := strings.Cut(id, "-")
	if !ok {
		return 0, fmt.Errorf("cell id %q: expected <shifted-hex>-<suffix>", id)
	}
	if _, err := strconv.ParseUint(suffix, 10, 64); err != nil {
		return 0, fmt.Errorf("cell id %q: non-numeric dataset suffix %q", id, suffix)
	}

	hex := make([]byte, 0, len(shifted))
	for i := 0; i < len(shifted); i++ {
		c := shifted[i]
		if c < 'a' || c > 'p' {
			return 0, fmt.Errorf("cell id %q: character %q outside 'a'-'p'", id, c)
		}
		hex = append(hex, "0123456789ABCDEF"[c-'a'])
	}

	v, err := strconv.ParseUint(string(hex), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("cell id %q: hex value %s overflows 32 bits", id, hex)
	}
	return uint32(v), nil
}

// Config contains decoder cache settings.
type Config struct {
	CacheSize int
}

// Decoder memoizes Decode results. A transcript table repeats each cell id
// across thousands of rows, so the hit rate is effectively the fraction of
// non-unique rows.
type Decoder struct {
	cache *lru.Cache[string, uint32]
}

// NewDecoder creates a decoder with an LRU cache of the given size.
func NewDecoder(cfg Config) (*Decoder, error) {
	size := cfg.CacheSize
	if size <= 0 {
		size = 1 << 17
	}
	cache, err := lru.New[string, uint32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cell id cache: %w", err)
	}
	return &Decoder{cache: cache}, nil
}

// Decode returns the integer form of id, consulting the cache first.
func (d *Decoder) Decode(id string) (uint32, error) {
	if v, ok := d.cache.Get(id); ok {
		return v, nil
	}
	v, err := Decode(id)
	if err != nil {
		return 0, err
	}
	d.cache.Add(id, v)
	return v, nil
}
