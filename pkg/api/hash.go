package api

import (
	"encoding/binary"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 hash over the note's content: ID,
// title, body, and tags (sorted, lowercased). Timestamps and version are
// excluded on purpose so the auto-saver can ask "did the user actually
// change anything" across edits.
func (n Note) Hash() string {
	h := blake3.New()

	var idbuf [8]byte
	binary.BigEndian.PutUint64(idbuf[:], uint64(n.ID))
	h.Write(idbuf[:])

	// Null delimiters keep field boundaries unambiguous.
	h.Write([]byte(n.Title))
	h.Write([]byte{0})
	h.Write([]byte(n.Body))
	h.Write([]byte{0})

	tags := append([]string(nil), n.Tags...)
	sort.Strings(tags)
	for _, t := range tags {
		h.Write([]byte(strings.ToLower(t)))
		h.Write([]byte{0})
	}

	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
