package cart

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
)

// Options are the identity-affecting attributes of a line item (size, color,
// ...). Two items with the same product ID but different options are
// different rows.
type Options map[string]string

func (o Options) clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

// GenerateRowID derives the deterministic identity hash of a line item from
// its product ID and sorted option set.
func GenerateRowID(id string, options Options) string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := md5.New()
	io.WriteString(h, id)
	for _, k := range keys {
		io.WriteString(h, k)
		io.WriteString(h, "=")
		io.WriteString(h, options[k])
		io.WriteString(h, ";")
	}
	return hex.EncodeToString(h.Sum(nil))
}
