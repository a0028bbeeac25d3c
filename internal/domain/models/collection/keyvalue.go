package collection

import "encoding/json"

// KeyValue is one header or query parameter entry.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// KeyValues is an ordered string mapping with unique keys.
type KeyValues []KeyValue

// Get returns the value stored under key.
func (kv KeyValues) Get(key string) (string, bool) {
	for _, e := range kv {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Set replaces the value of an existing key in place or appends a new entry.
func (kv KeyValues) Set(key, value string) KeyValues {
	for i := range kv {
		if kv[i].Key == key {
			kv[i].Value = value
			return kv
		}
	}
	return append(kv, KeyValue{Key: key, Value: value})
}

// Delete returns kv without key.
func (kv KeyValues) Delete(key string) KeyValues {
	out := make(KeyValues, 0, len(kv))
	for _, e := range kv {
		if e.Key != key {
			out = append(out, e)
		}
	}
	return out
}

// Normalize drops entries with an empty key and collapses duplicate keys.
// A later duplicate overwrites the value but keeps the position of the first one.
func (kv KeyValues) Normalize() KeyValues {
	out := make(KeyValues, 0, len(kv))
	for _, e := range kv {
		if e.Key == "" {
			continue
		}
		out = out.Set(e.Key, e.Value)
	}
	return out
}

// Clone returns a copy that shares no backing array with kv.
func (kv KeyValues) Clone() KeyValues {
	out := make(KeyValues, len(kv))
	copy(out, kv)
	return out
}

// Equal reports whether both mappings hold the same entries in the same order.
func (kv KeyValues) Equal(other KeyValues) bool {
	if len(kv) != len(other) {
		return false
	}
	for i := range kv {
		if kv[i] != other[i] {
			return false
		}
	}
	return true
}

// MarshalJSON always emits an array, never null.
func (kv KeyValues) MarshalJSON() ([]byte, error) {
	if kv == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]KeyValue(kv))
}
