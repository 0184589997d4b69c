package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Values holds session data. Keys keep their insertion order, and the JSON
// encoding preserves it so two equal sessions always serialize identically.
// The zero value is ready to use.
type Values struct {
	keys []string
	m    map[string]any
}

// NewValues returns an empty container.
func NewValues() *Values {
	return &Values{m: make(map[string]any)}
}

// Get retrieves a value by key
func (v *Values) Get(key string) (any, bool) {
	if v == nil || v.m == nil {
		return nil, false
	}
	val, ok := v.m[key]
	return val, ok
}

// GetString retrieves a string value
func (v *Values) GetString(key string) (string, bool) {
	val, ok := v.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value. Numbers decoded from JSON arrive as float64.
func (v *Values) GetInt(key string) (int, bool) {
	val, ok := v.Get(key)
	if !ok {
		return 0, false
	}
	switch n := val.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value
func (v *Values) GetBool(key string) (bool, bool) {
	val, ok := v.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// Set stores a value. A new key goes to the end; an existing key keeps its
// position.
func (v *Values) Set(key string, value any) {
	if v == nil {
		return
	}
	if v.m == nil {
		v.m = make(map[string]any)
	}
	if _, ok := v.m[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.m[key] = value
}

// Delete removes a key
func (v *Values) Delete(key string) {
	if v == nil || v.m == nil {
		return
	}
	if _, ok := v.m[key]; !ok {
		return
	}
	delete(v.m, key)
	if i := slices.Index(v.keys, key); i >= 0 {
		v.keys = slices.Delete(v.keys, i, i+1)
	}
}

// Clear removes all keys
func (v *Values) Clear() {
	if v == nil {
		return
	}
	v.keys = nil
	v.m = make(map[string]any)
}

// Len returns the number of keys
func (v *Values) Len() int {
	if v == nil {
		return 0
	}
	return len(v.keys)
}

// Keys returns the keys in insertion order
func (v *Values) Keys() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.keys)
}

// Clone returns a shallow copy; nested maps and slices are shared.
func (v *Values) Clone() *Values {
	if v == nil {
		return NewValues()
	}
	c := &Values{keys: slices.Clone(v.keys), m: make(map[string]any, len(v.m))}
	maps.Copy(c.m, v.m)
	return c
}

// MarshalJSON encodes the values as a JSON object in insertion order.
func (v *Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(v.m[k])
		if err != nil {
			return nil, fmt.Errorf("session: value %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys.
func (v *Values) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("session: values must be a JSON object, got %v", tok)
	}

	v.keys = nil
	v.m = make(map[string]any)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("session: unexpected key token %v", tok)
		}
		var val any
		if err := dec.Decode(&val); err != nil {
			return err
		}
		v.Set(key, val)
	}
	_, err = dec.Token()
	return err
}
