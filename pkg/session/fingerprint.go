package session

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes the serialized session data. Cookie attributes are not
// part of it, so touching a session never counts as a modification. Equal
// data inserted in a different order hashes differently.
func Fingerprint(v *Values) uint64 {
	data, err := json.Marshal(v)
	if err != nil {
		// Unserializable values still need a stable digest within a request.
		d := xxhash.New()
		for _, k := range v.Keys() {
			val, _ := v.Get(k)
			fmt.Fprintf(d, "%q=%#v;", k, val)
		}
		return d.Sum64()
	}
	return xxhash.Sum64(data)
}

// tracker remembers what the session looked like when it was loaded and when
// it was last written during the current request.
type tracker struct {
	originalID   string
	originalHash uint64
	savedHash    uint64
	hasSaved     bool
}

// capture records the load-time identity. saved marks the loaded state as
// already persisted.
func (t *tracker) capture(id string, v *Values, saved bool) {
	h := Fingerprint(v)
	t.originalID = id
	t.originalHash = h
	t.hasSaved = saved
	if saved {
		t.savedHash = h
	}
}

func (t *tracker) markSaved(v *Values) {
	t.savedHash = Fingerprint(v)
	t.hasSaved = true
}

func (t *tracker) isModified(id string, v *Values) bool {
	return id != t.originalID || Fingerprint(v) != t.originalHash
}

func (t *tracker) isSaved(id string, v *Values) bool {
	return t.hasSaved && id == t.originalID && Fingerprint(v) == t.savedHash
}
