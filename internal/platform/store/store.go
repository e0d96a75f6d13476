// Package store defines the document-store boundary of the repository
// layer: key/value document access by (collection, id) plus
// equality-filtered queries. Two adapters implement it (local JSON
// snapshot, postgres) and a failover decorator composes them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by Get/Update/Delete when the document is absent.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable wraps transport or backend failures on the remote path.
	// Callers treat it as "try the fallback", not as a data error.
	ErrUnavailable = errors.New("storage unavailable")
)

// Doc is a flat JSON document. The document id is mirrored into the "id"
// field so a query result is self-describing.
type Doc = map[string]any

// Filter is an equality constraint on a top-level document field.
type Filter struct {
	Field string
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Value: value}
}

type Store interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	Set(ctx context.Context, collection, id string, doc Doc, merge bool) error
	Add(ctx context.Context, collection string, doc Doc) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters []Filter) ([]Doc, error)
}

// Encode converts a model to a Doc through its JSON form.
func Encode(v any) (Doc, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode doc: %w", err)
	}
	var d Doc
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("encode doc: %w", err)
	}
	return d, nil
}

// Decode converts a Doc back into a typed model.
func Decode[T any](d Doc) (*T, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("decode doc: %w", err)
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode doc: %w", err)
	}
	return &v, nil
}

// DecodeAll decodes a query result set.
func DecodeAll[T any](docs []Doc) ([]*T, error) {
	out := make([]*T, 0, len(docs))
	for _, d := range docs {
		v, err := Decode[T](d)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Matches reports whether a document satisfies every filter. Values are
// compared through their JSON string forms so int/float64 mismatches from
// JSON round-trips do not break equality.
func Matches(d Doc, filters []Filter) bool {
	for _, f := range filters {
		got, ok := d[f.Field]
		if !ok || fmt.Sprint(got) != fmt.Sprint(f.Value) {
			return false
		}
	}
	return true
}
