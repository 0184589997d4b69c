package session

import (
	"encoding/json"

	"github.com/dmitrymomot/sessionkit/pkg/cookie"
)

// Record is what stores persist for one session: the cookie attributes and
// the session data.
type Record struct {
	Cookie *cookie.Attributes `json:"cookie"`
	Values *Values            `json:"data"`
}

// Clone returns a copy that shares no attribute pointers with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{Cookie: r.Cookie.Clone(), Values: r.Values.Clone()}
}

// EncodeRecord serializes a record for byte-oriented stores.
func EncodeRecord(r *Record) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRecord parses the output of EncodeRecord. Missing data decodes to an
// empty container; a missing cookie is left nil for the caller to reject.
func DecodeRecord(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Values == nil {
		r.Values = NewValues()
	}
	return &r, nil
}
