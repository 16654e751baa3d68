package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// IDFunc allocates a new id with the given prefix ("card", "act", "ck", ...).
type IDFunc func(prefix string) string

// RandomIDs allocates random ids, falling back to a clock-based suffix if the system
// randomness source fails.
func RandomIDs() IDFunc {
	var mu sync.Mutex
	var last int64
	return func(prefix string) string {
		if id, err := newRandomID(prefix); err == nil {
			return id
		}
		mu.Lock()
		defer mu.Unlock()
		n := time.Now().UnixNano()
		if n <= last {
			n = last + 1
		}
		last = n
		return prefix + "-" + strconv.FormatInt(n, 36)
	}
}

// SequentialIDs allocates prefix-1, prefix-2, ... (one counter per prefix).
// Deterministic; used by tests and reproducible CLI runs.
func SequentialIDs() IDFunc {
	var mu sync.Mutex
	next := map[string]int{}
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		next[prefix]++
		return fmt.Sprintf("%s-%d", prefix, next[prefix])
	}
}
