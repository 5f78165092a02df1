// Package testutil holds fixture helpers shared by package tests
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/transit-router/builder"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/internal"
)

// TestDataPath returns the absolute path of the repository testdata/ directory
func TestDataPath() string {
	wd, _ := os.Getwd()
	for {
		p := filepath.Join(wd, "testdata")
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			panic("could not find testdata directory")
		}
		wd = parent
	}
}

// FeedPath returns the directory of a GTFS fixture under testdata/gtfs
func FeedPath(name string) string {
	return filepath.Join(TestDataPath(), "gtfs", name)
}

// LoadFeed loads a GTFS fixture
func LoadFeed(t *testing.T, name string) *gtfs.Feed {
	t.Helper()
	feed, err := gtfs.LoadFeedFromDir(FeedPath(name))
	require.NoError(t, err, "loading fixture %s", name)
	return feed
}

// Fixture is a graph built from a GTFS fixture
type Fixture struct {
	Graph   *core.Graph
	Result  *builder.Result
	Factory *builder.PatternHopFactory
}

// Build loads a fixture and runs the pattern hop factory on a new graph
func Build(t *testing.T, name string, opts ...builder.Option) *Fixture {
	t.Helper()
	feed := LoadFeed(t, name)
	opts = append([]builder.Option{builder.WithLogger(internal.Discard())}, opts...)
	f := builder.NewPatternHopFactory(feed, opts...)
	g := core.NewGraph()
	res, err := f.Run(g)
	require.NoError(t, err)
	return &Fixture{Graph: g, Result: res, Factory: f}
}

// Stop returns the transit stop vertex of a GTFS stop id
func (fx *Fixture) Stop(t *testing.T, stopID string) *core.Vertex {
	t.Helper()
	v := fx.Graph.Vertex(fx.Factory.StopLabel(stopID))
	require.NotNil(t, v, "stop %s", stopID)
	return v
}

// Options returns transit options bound to the fixture calendar and time zone
func (fx *Fixture) Options() *core.TraverseOptions {
	o := core.DefaultTraverseOptions()
	o.Modes = core.AllTransit.With(core.ModeWalk)
	o.Calendar = fx.Result.Calendar
	o.Location = fx.Result.Location
	return o
}

// At returns the instant h:m:s on the given day in the fixture time zone
func (fx *Fixture) At(year int, month time.Month, day, h, m, s int) time.Time {
	return time.Date(year, month, day, h, m, s, 0, fx.Result.Location)
}
