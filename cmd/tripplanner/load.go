package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theoremus-urban-solutions/transit-router/builder"
	"github.com/theoremus-urban-solutions/transit-router/config"
	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/gtfs"
	"github.com/theoremus-urban-solutions/transit-router/internal"
	"github.com/theoremus-urban-solutions/transit-router/linker"
	"github.com/theoremus-urban-solutions/transit-router/planner"
	"github.com/theoremus-urban-solutions/transit-router/realtime"
)

var log = internal.Logger("tripplanner")

// router is a graph built from one configured feed
type router struct {
	feed    config.Feed
	graph   *core.Graph
	result  *builder.Result
	linked  int
	overlay *realtime.Overlay
	planner *planner.Planner
}

func loadRouter(ctx context.Context, feedName string) (*router, error) {
	fc, ok := config.SelectFeed(feedName)
	if !ok {
		return nil, errors.New("no feed configured")
	}
	feed, err := gtfs.LoadFeedFromPath(fc.GTFS.Path)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", fc.Name, err)
	}

	opts := []builder.Option{
		builder.WithFares(fc.GTFS.Fares),
		builder.WithWalkSpeed(config.Config.Routing.WalkSpeed),
	}
	if fc.GTFS.AgencyID != "" {
		opts = append(opts, builder.WithAgencyID(fc.GTFS.AgencyID))
	}
	g := core.NewGraph()
	res, err := builder.NewPatternHopFactory(feed, opts...).Run(g)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", fc.Name, err)
	}

	r := &router{feed: fc, graph: g, result: res}
	lk := linker.New(g,
		linker.WithSearchRadius(config.Config.Linking.SearchRadius),
		linker.WithSnapDistance(config.Config.Linking.SnapDistance))
	r.linked, err = lk.LinkStops()
	switch {
	case errors.Is(err, linker.ErrNoStreets):
		log.Info("No street network, coordinates cannot be planned", "feed", fc.Name)
	case err != nil:
		return nil, err
	}

	if fc.GTFSRT.TripUpdatesPath != "" || fc.GTFSRT.ServiceAlertsPath != "" {
		client := realtime.NewClient(10 * time.Second)
		r.overlay, err = client.Load(ctx, fc.GTFSRT.TripUpdatesPath, fc.GTFSRT.ServiceAlertsPath)
		if err != nil {
			log.Warn("Realtime data unavailable, planning on schedule", "feed", fc.Name, "err", err)
		}
	}

	r.planner = planner.FromBuild(g, res,
		planner.WithLinker(lk),
		planner.WithDefaults(config.Config.Routing),
		planner.WithRealtime(r.overlay))
	return r, nil
}
