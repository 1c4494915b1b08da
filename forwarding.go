package metagrid

// ForwardingIndex is a minimal delegation wrapper: it takes its length from a
// wrapped index while leaving element retrieval to the embedding backend.
// Backends whose elements live behind a different retrieval contract (for
// example part-based file access) embed it and supply their own Get.
type ForwardingIndex struct {
	index Index
}

// NewForwardingIndex wraps ix.
func NewForwardingIndex(ix Index) *ForwardingIndex {
	return &ForwardingIndex{index: ix}
}

// Len returns the wrapped index length.
func (f *ForwardingIndex) Len() int { return f.index.Len() }

// Wrapped returns the wrapped index.
func (f *ForwardingIndex) Wrapped() Index { return f.index }

// Get signals not-implemented; the embedding backend supplies retrieval.
func (f *ForwardingIndex) Get(n int) (Element, error) {
	return nil, notImplemented(f, "Get")
}

// Sel signals not-implemented on the bare wrapper. Embedding backends filter
// with metagrid.Sel on themselves so the scan sees their Get.
func (f *ForwardingIndex) Sel(dicts ...map[string]any) (Index, error) {
	return nil, notImplemented(f, "Sel")
}

// OrderBy signals not-implemented on the bare wrapper, like Sel.
func (f *ForwardingIndex) OrderBy(args ...any) (Index, error) {
	return nil, notImplemented(f, "OrderBy")
}
