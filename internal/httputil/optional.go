package httputil

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes an absent JSON field from an explicit null (RFC 7396
// merge-patch semantics), which a plain pointer cannot.
//
//	Present=false            field absent, leave unchanged
//	Present=true, Value=nil  field is null
//	Present=true, Value!=nil field carries a value
type Optional[T any] struct {
	Present bool
	Value   *T
}

// UnmarshalJSON only runs for fields present in the document.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// IsNull reports an explicit null
func (o Optional[T]) IsNull() bool {
	return o.Present && o.Value == nil
}
