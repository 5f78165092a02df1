/*
Package gtfs reads GTFS static feeds into typed, in-memory records.

The reader is data-source agnostic: it consumes any fs.FS, so a feed can be an
unpacked directory, a zip archive on disk or raw zip bytes.

	feed, err := gtfs.LoadFeedFromDir("testdata/caltrain")
	if err != nil {
	    log.Fatal(err)
	}
	tz, _ := feed.Timezone()

# Files

The following files are consumed when present: agency.txt, stops.txt,
routes.txt, trips.txt, stop_times.txt, calendar.txt, calendar_dates.txt,
transfers.txt, frequencies.txt, shapes.txt, fare_attributes.txt and
fare_rules.txt. Unknown files are ignored, missing optional columns take the
GTFS defaults.

# Times

Stop times are kept as seconds since service-day midnight and may exceed 24h
for trips running past midnight. Missing arrival/departure values are stored as
MissingTime and left for the graph builder to interpolate.
*/
package gtfs
