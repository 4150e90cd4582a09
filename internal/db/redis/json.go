package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/rigel/index"
)

// OpJSONSet names JSON.SET in error context.
const OpJSONSet = "JSON.SET"

// PutDocument stores doc as a JSON document at key.
func (s *Store) PutDocument(ctx context.Context, key string, doc index.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &index.Error{Op: OpJSONSet, Err: err}
	}
	return nil
}
