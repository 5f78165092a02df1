package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type graphSummary struct {
	Feed              string   `yaml:"feed"`
	Agency            string   `yaml:"agency"`
	Timezone          string   `yaml:"timezone"`
	Vertices          int      `yaml:"vertices"`
	Edges             int      `yaml:"edges"`
	Stops             int      `yaml:"stops"`
	LinkedStops       int      `yaml:"linkedStops"`
	Patterns          int      `yaml:"patterns"`
	SingletonPatterns int      `yaml:"singletonPatterns"`
	Trips             int      `yaml:"trips"`
	FrequencyRuns     int      `yaml:"frequencyRuns"`
	Hops              int      `yaml:"hops"`
	InterlineDwells   int      `yaml:"interlineDwells"`
	Transfers         int      `yaml:"transfers"`
	SkippedTrips      int      `yaml:"skippedTrips"`
	SkippedRoutes     int      `yaml:"skippedRoutes"`
	FareTypes         []string       `yaml:"fareTypes,omitempty"`
	FareWarnings      map[string]int `yaml:"fareWarnings,omitempty"`
	CancelledTrips    int            `yaml:"cancelledTrips"`
	Alerts            int            `yaml:"alerts"`
}

// NewGraphCommand builds the graph of a feed and prints a summary
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build the graph of a feed and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			feedName, _ := cmd.Flags().GetString("feed")
			r, err := loadRouter(cmd.Context(), feedName)
			if err != nil {
				return err
			}
			b, err := yaml.Marshal(r.summary())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	return cmd
}

func (r *router) summary() graphSummary {
	st := r.result.Stats
	s := graphSummary{
		Feed:              r.feed.Name,
		Agency:            r.result.AgencyID,
		Timezone:          r.result.Location.String(),
		Vertices:          r.graph.NumVertices(),
		Edges:             r.graph.NumEdges(),
		Stops:             st.Stops,
		LinkedStops:       r.linked,
		Patterns:          st.Patterns,
		SingletonPatterns: st.SingletonPatterns,
		Trips:             st.Trips,
		FrequencyRuns:     st.FrequencyRuns,
		Hops:              st.Hops,
		InterlineDwells:   st.InterlineDwells,
		Transfers:         st.Transfers,
		SkippedTrips:      st.SkippedTrips,
		SkippedRoutes:     st.SkippedRoutes,
	}
	if fs := r.result.Fares; fs != nil {
		for _, t := range fs.Types() {
			s.FareTypes = append(s.FareTypes, string(t))
		}
		s.FareWarnings = fs.Warnings().Counts()
	}
	if r.overlay != nil {
		s.CancelledTrips = len(r.overlay.CancelledTrips())
		s.Alerts = len(r.overlay.Alerts())
	}
	return s
}
