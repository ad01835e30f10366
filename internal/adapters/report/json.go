package report

import (
	"encoding/json"
	"io"

	"go.trai.ch/depcache/internal/core/domain"
	"go.trai.ch/depcache/internal/core/ports"
)

// JSON renders reports as indented JSON documents, one per call.
type JSON struct {
	enc *json.Encoder
}

var _ ports.Reporter = (*JSON)(nil)

// NewJSON creates a JSON reporter writing to w.
func NewJSON(w io.Writer) *JSON {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return &JSON{enc: enc}
}

// Pass encodes the pass result.
func (j *JSON) Pass(result *domain.PassResult) error {
	out := *result
	if out.Affected == nil {
		out.Affected = []string{}
	}
	return j.enc.Encode(out)
}

// Dependents encodes the dependents of class.
func (j *JSON) Dependents(class string, dependents []string) error {
	if dependents == nil {
		dependents = []string{}
	}
	return j.enc.Encode(struct {
		Class      string   `json:"class"`
		Dependents []string `json:"dependents"`
	}{class, dependents})
}

// Class encodes the class view.
func (j *JSON) Class(view domain.ClassView) error {
	return j.enc.Encode(view)
}

// Supertype encodes the common superclass query.
func (j *JSON) Supertype(a, b, common string) error {
	return j.enc.Encode(struct {
		A      string `json:"a"`
		B      string `json:"b"`
		Common string `json:"common"`
	}{a, b, common})
}
