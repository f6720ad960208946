package taxonomy

import "sync/atomic"

// Holder is a Source whose taxonomy can be replaced while readers are
// active. Readers always observe a complete, validated Taxonomy.
type Holder struct {
	current atomic.Pointer[Taxonomy]
}

// NewHolder returns a Holder serving t.
func NewHolder(t *Taxonomy) *Holder {
	h := &Holder{}
	h.current.Store(t)
	return h
}

// Current returns the taxonomy in effect.
func (h *Holder) Current() *Taxonomy {
	return h.current.Load()
}

// Swap installs t and returns the previous taxonomy. A nil t is ignored.
func (h *Holder) Swap(t *Taxonomy) *Taxonomy {
	if t == nil {
		return h.current.Load()
	}
	return h.current.Swap(t)
}
