package voxel

import (
	"io"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/voxelforge/voxtree/ntree"
)

// Header describes a dense snapshot: the channel names plus the
// geometry needed to interpret the flat cell data.
type Header struct {
	Channels   []string     `json:"channels"`
	Bounds     [][2]float64 `json:"bounds"`
	Resolution []float64    `json:"resolution"`
	Shape      []int        `json:"shape"`
}

// Exporter flattens tree regions into dense snapshots described by a
// channel schema. The on-disk array format is owned by the storage
// consumer; the exporter stops at the header and the dense data.
type Exporter struct {
	Tree   *ntree.Tree
	Schema Schema
}

// Snapshot returns the dense content of the region after checking the
// schema against the tree.
func (e *Exporter) Snapshot(region ntree.Region) (*ntree.Dense, error) {
	if err := e.Schema.Validate(e.Tree.Arity()); err != nil {
		return nil, err
	}
	return e.Tree.Get(region)
}

// Describe returns the header for a snapshot taken from the exporter's
// tree.
func (e *Exporter) Describe(d *ntree.Dense) Header {
	return Header{
		Channels:   append([]string(nil), e.Schema...),
		Bounds:     e.Tree.Bounds(),
		Resolution: e.Tree.Resolution(),
		Shape:      d.Shape(),
	}
}

// WriteHeader writes the JSON header of a snapshot.
func (e *Exporter) WriteHeader(w io.Writer, d *ntree.Dense) error {
	b, err := json.Marshal(e.Describe(d))
	if err != nil {
		return errors.New("encoding snapshot header failed").Wrap(err)
	}
	if _, err := w.Write(b); err != nil {
		return errors.New("writing snapshot header failed").Wrap(err)
	}
	return nil
}
