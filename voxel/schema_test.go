package voxel

import (
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/voxelforge/voxtree/ntree"
)

func TestNewSchema(t *testing.T) {
	t.Run("schema keeps channel order", func(t *testing.T) {
		s, err := NewSchema("material", "speed", "temperature")
		require.NoError(t, err)
		require.Equal(t, 3, s.Arity())

		i, ok := s.Index("speed")
		require.True(t, ok)
		require.Equal(t, 1, i)

		_, ok = s.Index("direction_x")
		require.False(t, ok)
	})

	t.Run("empty schema is rejected", func(t *testing.T) {
		_, err := NewSchema()
		require.Error(t, err)
		require.True(t, errors.IsType(err, ntree.ErrTypeConfig))
	})

	t.Run("empty channel name is rejected", func(t *testing.T) {
		_, err := NewSchema("material", "")
		require.Error(t, err)
		require.True(t, errors.IsType(err, ntree.ErrTypeConfig))
	})

	t.Run("duplicated channel name is rejected", func(t *testing.T) {
		_, err := NewSchema("material", "material")
		require.Error(t, err)
		require.True(t, errors.IsType(err, ntree.ErrTypeConfig))
	})
}

func TestSchemaValidate(t *testing.T) {
	s, err := NewSchema("material", "speed")
	require.NoError(t, err)

	require.NoError(t, s.Validate(2))

	err = s.Validate(3)
	require.Error(t, err)
	require.True(t, errors.IsType(err, ntree.ErrTypeConfig))
}
