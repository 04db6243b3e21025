package papi

// Attrs is the raw attribute set of a single API record, keyed by field
// name. Values are the decoded JSON forms (string, float64, bool, nil,
// []any, map[string]any).
type Attrs map[string]any

// Clone returns a deep copy of the attribute set. Mutating the copy never
// affects the original.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}

	clone := make(Attrs, len(a))
	for key, value := range a {
		clone[key] = deepCopyValue(value)
	}

	return clone
}

func deepCopyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(typed))
		for k, v := range typed {
			copied[k] = deepCopyValue(v)
		}

		return copied
	case []any:
		copied := make([]any, len(typed))
		for i, v := range typed {
			copied[i] = deepCopyValue(v)
		}

		return copied
	default:
		return typed
	}
}

// ListResponse represents an offset-paginated list response.
type ListResponse[T any] struct {
	Results     []T `json:"results"      yaml:"results"`
	Total       int `json:"total"        yaml:"total"`
	CurrentPage int `json:"current_page" yaml:"current_page"`
}

// CursorPage represents one page of a cursor-paginated list response.
type CursorPage[T any] struct {
	Results []T          `json:"results" yaml:"results"`
	Paging  CursorPaging `json:"paging"  yaml:"paging"`
}

// CursorPaging carries the continuation state of a cursor-paginated
// response.
type CursorPaging struct {
	Cursors CursorSet `json:"cursors" yaml:"cursors"`
}

// CursorSet holds the opaque continuation tokens reported by the server. An
// absent or empty Next token means the walk is complete.
type CursorSet struct {
	Next string `json:"next,omitempty" yaml:"next,omitempty"`
}

// HasNext reports whether the server supplied a continuation token.
func (p CursorPaging) HasNext() bool {
	return p.Cursors.Next != ""
}
