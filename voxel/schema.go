// Package voxel gives attribute vectors a named channel schema and
// flattens tree regions into dense snapshots for downstream storage or
// display.
package voxel

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/voxelforge/voxtree/ntree"
)

// Schema names the channels of an attribute vector, in storage order.
type Schema []string

// NewSchema returns a schema from the given channel names. Names must
// be non-empty and unique.
func NewSchema(names ...string) (Schema, error) {
	if len(names) == 0 {
		return nil, errors.New("schema has no channels").
			WithType(ntree.ErrTypeConfig)
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			return nil, errors.New("schema channel name is empty").
				WithType(ntree.ErrTypeConfig)
		}
		if _, ok := seen[name]; ok {
			return nil, errors.New("schema channel name is duplicated").
				WithType(ntree.ErrTypeConfig).
				WithTag("channel", name)
		}
		seen[name] = struct{}{}
	}

	return Schema(append([]string(nil), names...)), nil
}

// Arity returns the number of channels.
func (s Schema) Arity() int {
	return len(s)
}

// Index returns the vector index of the named channel.
func (s Schema) Index(name string) (int, bool) {
	for i, n := range s {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Validate checks that the schema matches the given attribute arity.
func (s Schema) Validate(arity int) error {
	if len(s) != arity {
		return errors.New("schema does not match attribute arity").
			WithType(ntree.ErrTypeConfig).
			WithTag("channels", len(s)).
			WithTag("arity", arity)
	}
	return nil
}
