package pagination

// CursorRequest carries keyset pagination parameters from the query string
type CursorRequest struct {
	Cursor *string `json:"cursor,omitempty" query:"cursor"`
	Size   int     `json:"size" query:"size"`
}

// Normalize clamps Size into [1, PageMaxSize], applying the default for zero
func (r *CursorRequest) Normalize() {
	if r.Size <= 0 {
		r.Size = PageDefaultSize
	}
	if r.Size > PageMaxSize {
		r.Size = PageMaxSize
	}
}

// HasCursor reports whether a non-blank cursor token was sent
func (r *CursorRequest) HasCursor() bool {
	return r.Cursor != nil && *r.Cursor != ""
}
