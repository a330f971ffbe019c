package store

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"

	"taskboard/internal/tree"
)

// newRandomID returns prefix-<suffix> where suffix is n chars of lowercase
// base32. Six chars give 30 bits, plenty for a personal board.
func newRandomID(prefix string, n int) (string, error) {
	b := make([]byte, (n*5+7)/8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b))
	return prefix + "-" + suffix[:n], nil
}

func (b *Board) idExists(id string) bool {
	_, ok := tree.Find(b.Tasks, id)
	return ok
}

// NewID returns an id with the given prefix ("task" or "sub") that is not
// yet used anywhere in the tree.
func (b *Board) NewID(prefix string) (string, error) {
	for i := 0; i < 32; i++ {
		id, err := newRandomID(prefix, 6)
		if err != nil {
			return "", err
		}
		if !b.idExists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not allocate a unique %s id", prefix)
}

// idAllocator adapts NewID to model.Defaults, reserving each id in seen so
// that a batch of records normalized before insertion never collides.
func (b *Board) idAllocator(seen map[string]struct{}) func(prefix string) string {
	fallback := 0
	return func(prefix string) string {
		for {
			id, err := newRandomID(prefix, 6)
			if err != nil {
				fallback++
				id = fmt.Sprintf("%s-%d", prefix, fallback)
			}
			if _, dup := seen[id]; dup || b.idExists(id) {
				continue
			}
			seen[id] = struct{}{}
			return id
		}
	}
}
