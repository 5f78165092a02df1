package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/theoremus-urban-solutions/transit-router/core"
	"github.com/theoremus-urban-solutions/transit-router/planner"
)

type itineraryOutput struct {
	ID           string            `json:"id"`
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Duration     string            `json:"duration"`
	WalkDistance float64           `json:"walkDistance"`
	Transfers    int               `json:"transfers"`
	Routes       []string          `json:"routes"`
	Fare         map[string]string `json:"fare,omitempty"`
	Unpriced     int               `json:"unpricedRides,omitempty"`
}

type planOutput struct {
	RequestID   string            `json:"requestId"`
	From        string            `json:"from"`
	To          string            `json:"to"`
	Itineraries []itineraryOutput `json:"itineraries"`
}

// NewPlanCommand plans a trip between two stops or coordinates
func NewPlanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip",
		Long: "Plan a trip between two places. A place is a stop id, a vertex label " +
			"or a \"lat,lon\" coordinate. Times without a zone are read in the feed time zone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			feedName, _ := cmd.Flags().GetString("feed")
			r, err := loadRouter(cmd.Context(), feedName)
			if err != nil {
				return err
			}
			req, err := planRequest(cmd, r)
			if err != nil {
				return err
			}
			res, err := r.planner.Plan(cmd.Context(), req)
			if err != nil {
				return err
			}

			var out any
			if asGeoJSON, _ := cmd.Flags().GetBool("geojson"); asGeoJSON {
				fc := geojson.NewFeatureCollection()
				for i, it := range res.Itineraries {
					for _, f := range it.GeoJSON().Features {
						f.Properties["itinerary"] = i
						fc.Append(f)
					}
				}
				out = fc
			} else {
				out = summarize(req, res)
			}
			b, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}

	cmd.Flags().String("from", "", "origin: stop id, vertex label or lat,lon")
	cmd.Flags().String("to", "", "destination: stop id, vertex label or lat,lon")
	cmd.Flags().String("time", "", "departure time, or arrival time with --arrive-by (default now)")
	cmd.Flags().Bool("arrive-by", false, "treat --time as the latest arrival")
	cmd.Flags().StringSlice("modes", nil, "modes to use, e.g. WALK,TRANSIT")
	cmd.Flags().Bool("wheelchair", false, "only use accessible stops and trips")
	cmd.Flags().StringSlice("ban", nil, "banned routes as route or agency:route")
	cmd.Flags().Float64("max-walk", 0, "maximum walk distance in meters")
	cmd.Flags().Float64("walk-speed", 0, "walk speed in m/s")
	cmd.Flags().Int("itineraries", 0, "number of alternatives")
	cmd.Flags().Bool("geojson", false, "print the itineraries as a GeoJSON feature collection")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func planRequest(cmd *cobra.Command, r *router) (*planner.Request, error) {
	flags := cmd.Flags()
	from, _ := flags.GetString("from")
	to, _ := flags.GetString("to")
	at, _ := flags.GetString("time")
	arriveBy, _ := flags.GetBool("arrive-by")
	modes, _ := flags.GetStringSlice("modes")
	wheelchair, _ := flags.GetBool("wheelchair")
	bans, _ := flags.GetStringSlice("ban")
	maxWalk, _ := flags.GetFloat64("max-walk")
	walkSpeed, _ := flags.GetFloat64("walk-speed")
	n, _ := flags.GetInt("itineraries")

	t, err := parseTime(at, r.result.Location, time.Now())
	if err != nil {
		return nil, err
	}
	req := &planner.Request{
		From:            r.place(from),
		To:              r.place(to),
		Time:            t,
		ArriveBy:        arriveBy,
		Modes:           modes,
		Wheelchair:      wheelchair,
		MaxWalkDistance: maxWalk,
		WalkSpeed:       walkSpeed,
		NumItineraries:  n,
	}
	for _, b := range bans {
		req.BannedRoutes = append(req.BannedRoutes, parseRoute(b))
	}
	return req, nil
}

// place reads a coordinate, a vertex label or a stop id of the feed
func (r *router) place(s string) planner.Place {
	if lat, lon, ok := parseLatLon(s); ok {
		return planner.PointPlace(lat, lon)
	}
	if r.graph.Vertex(s) == nil {
		if label := r.result.AgencyID + "_" + s; r.graph.Vertex(label) != nil {
			return planner.LabelPlace(label)
		}
	}
	return planner.LabelPlace(s)
}

func parseLatLon(s string) (float64, float64, bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseTime(s string, loc *time.Location, now time.Time) (time.Time, error) {
	if s == "" {
		return now.In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", core.ErrInvalidTime, s)
}

func parseRoute(s string) core.RouteSpec {
	if agency, name, ok := strings.Cut(s, ":"); ok {
		return core.RouteSpec{Agency: agency, Name: name}
	}
	return core.RouteSpec{Name: s}
}

func summarize(req *planner.Request, res *planner.Plan) planOutput {
	out := planOutput{
		RequestID:   res.RequestID,
		From:        req.From.String(),
		To:          req.To.String(),
		Itineraries: []itineraryOutput{},
	}
	for _, it := range res.Itineraries {
		row := itineraryOutput{
			ID:           it.ID,
			Start:        it.StartTime.Format(time.RFC3339),
			End:          it.EndTime.Format(time.RFC3339),
			Duration:     it.Duration.String(),
			WalkDistance: float64(int64(it.WalkDistance*10)) / 10,
			Transfers:    it.Transfers,
			Routes:       it.Routes,
		}
		if it.Fare != nil {
			row.Fare = make(map[string]string, len(it.Fare.Details))
			for t, m := range it.Fare.Details {
				row.Fare[string(t)] = m.String()
			}
			row.Unpriced = len(it.Fare.Unpriced)
		}
		out.Itineraries = append(out.Itineraries, row)
	}
	return out
}
