package outline

import (
	"crypto/sha256"
	"encoding/hex"

	json "github.com/goccy/go-json"
)

// Hash returns a short stable digest of the items' content and shape. Two
// item slices hash equal iff they would serialize identically, so reload
// paths can skip work when a file event changed nothing.
func Hash(items []Item) string {
	h := sha256.New()
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			h.Write([]byte(it.ID))
			continue
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
