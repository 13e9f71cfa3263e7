package voxel

import (
	"bytes"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
	"github.com/voxelforge/voxtree/ntree"
)

func newTestExporter(t *testing.T) *Exporter {
	t.Helper()

	tree, err := ntree.New(ntree.Config{
		Bounds:            [][2]float64{{0, 4}, {0, 4}},
		MaxDepth:          2,
		DefaultAttributes: []float64{0, 0},
	})
	require.NoError(t, err)

	schema, err := NewSchema("material", "speed")
	require.NoError(t, err)

	return &Exporter{Tree: tree, Schema: schema}
}

func TestExporterSnapshot(t *testing.T) {
	t.Run("snapshot returns the dense region", func(t *testing.T) {
		e := newTestExporter(t)
		require.NoError(t, e.Tree.Set(ntree.Region{ntree.Span(0, 2)}, []float64{1, 5}))

		d, err := e.Snapshot(nil)
		require.NoError(t, err)
		require.Equal(t, []int{4, 4}, d.Shape())
		require.Equal(t, []float64{1, 5}, d.At(0, 0))
		require.Equal(t, []float64{0, 0}, d.At(3, 3))
	})

	t.Run("schema mismatch is rejected", func(t *testing.T) {
		e := newTestExporter(t)
		schema, err := NewSchema("material")
		require.NoError(t, err)
		e.Schema = schema

		_, err = e.Snapshot(nil)
		require.Error(t, err)
	})
}

func TestExporterWriteHeader(t *testing.T) {
	e := newTestExporter(t)

	d, err := e.Snapshot(ntree.Region{ntree.Span(0, 2)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, e.WriteHeader(&buf, d))

	var h Header
	require.NoError(t, json.Unmarshal(buf.Bytes(), &h))
	require.Equal(t, []string{"material", "speed"}, h.Channels)
	require.Equal(t, [][2]float64{{0, 4}, {0, 4}}, h.Bounds)
	require.Equal(t, []float64{1, 1}, h.Resolution)
	require.Equal(t, []int{2, 4}, h.Shape)
}
