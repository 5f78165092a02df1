package gtfs

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	// agency time zones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// feedFiles lists the files consumed, in dependency order
var feedFiles = []string{
	"agency.txt",
	"stops.txt",
	"routes.txt",
	"trips.txt",
	"stop_times.txt",
	"calendar.txt",
	"calendar_dates.txt",
	"transfers.txt",
	"frequencies.txt",
	"shapes.txt",
	"fare_attributes.txt",
	"fare_rules.txt",
}

// ErrMissingFile is returned when a required GTFS file is absent
var ErrMissingFile = errors.New("gtfs: required file missing")

var requiredFiles = map[string]bool{
	"stops.txt":      true,
	"routes.txt":     true,
	"trips.txt":      true,
	"stop_times.txt": true,
}

// LoadFeedFromDir reads an unpacked feed directory
func LoadFeedFromDir(dir string) (*Feed, error) {
	return LoadFeed(os.DirFS(dir))
}

// LoadFeedFromZip reads a zip archive on disk
func LoadFeedFromZip(p string) (*Feed, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return LoadFeed(zr)
}

// LoadFeedFromBytes reads a zip archive held in memory
func LoadFeedFromBytes(b []byte) (*Feed, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	return LoadFeed(zr)
}

// LoadFeedFromPath dispatches on the path: directories are read as unpacked
// feeds, anything else as a zip archive
func LoadFeedFromPath(p string) (*Feed, error) {
	st, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return LoadFeedFromDir(p)
	}
	return LoadFeedFromZip(p)
}

// LoadFeed reads every known GTFS file found at the root of fsys
func LoadFeed(fsys fs.FS) (*Feed, error) {
	feed := newFeed()
	for _, name := range feedFiles {
		r, err := fsys.Open(name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				if requiredFiles[name] {
					return nil, fmt.Errorf("%w: %s", ErrMissingFile, name)
				}
				continue
			}
			return nil, err
		}
		err = feed.consumeCSV(name, r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	for trip, sts := range feed.StopTimes {
		sort.Slice(sts, func(i, j int) bool { return sts[i].Sequence < sts[j].Sequence })
		feed.StopTimes[trip] = sts
	}
	for id, pts := range feed.Shapes {
		sort.Slice(pts, func(i, j int) bool { return pts[i].Sequence < pts[j].Sequence })
		feed.Shapes[id] = pts
	}
	return feed, nil
}

func (f *Feed) consumeCSV(name string, r io.Reader) error {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	rec, err := csvr.ReadAll()
	if err != nil {
		return err
	}
	if len(rec) == 0 {
		return nil
	}
	head := rec[0]
	if len(head) > 0 {
		head[0] = strings.TrimPrefix(head[0], "\ufeff")
	}
	idx := func(col string) int {
		for i, h := range head {
			if strings.EqualFold(strings.TrimSpace(h), col) {
				return i
			}
		}
		return -1
	}
	get := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	atoi := func(row []string, i, def int) int {
		s := get(row, i)
		if s == "" {
			return def
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return def
		}
		return n
	}
	atof := func(row []string, i int, def float64) float64 {
		s := get(row, i)
		if s == "" {
			return def
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return def
		}
		return v
	}

	switch name {
	case "agency.txt":
		agID := idx("agency_id")
		agName := idx("agency_name")
		agURL := idx("agency_url")
		agTZ := idx("agency_timezone")
		for _, row := range rec[1:] {
			f.Agencies = append(f.Agencies, &Agency{
				ID:       get(row, agID),
				Name:     get(row, agName),
				URL:      get(row, agURL),
				Timezone: get(row, agTZ),
			})
		}
	case "stops.txt":
		sID := idx("stop_id")
		sN := idx("stop_name")
		sLat := idx("stop_lat")
		sLon := idx("stop_lon")
		zone := idx("zone_id")
		loc := idx("location_type")
		parent := idx("parent_station")
		wc := idx("wheelchair_boarding")
		if sID < 0 {
			return errors.New("missing stop_id column")
		}
		for line, row := range rec[1:] {
			s := &Stop{
				ID:                 get(row, sID),
				Name:               get(row, sN),
				ZoneID:             get(row, zone),
				LocationType:       atoi(row, loc, LocationStop),
				ParentStation:      get(row, parent),
				WheelchairBoarding: atoi(row, wc, 0),
			}
			var err error
			if s.Lat, err = strconv.ParseFloat(get(row, sLat), 64); err != nil {
				return fmt.Errorf("row %d: stop %s latitude: %w", line+2, s.ID, err)
			}
			if s.Lon, err = strconv.ParseFloat(get(row, sLon), 64); err != nil {
				return fmt.Errorf("row %d: stop %s longitude: %w", line+2, s.ID, err)
			}
			f.Stops[s.ID] = s
		}
	case "routes.txt":
		rID := idx("route_id")
		ag := idx("agency_id")
		rSN := idx("route_short_name")
		rLN := idx("route_long_name")
		rType := idx("route_type")
		for line, row := range rec[1:] {
			rt := &Route{
				ID:        get(row, rID),
				AgencyID:  get(row, ag),
				ShortName: get(row, rSN),
				LongName:  get(row, rLN),
			}
			t, err := strconv.Atoi(get(row, rType))
			if err != nil {
				return fmt.Errorf("row %d: route %s type: %w", line+2, rt.ID, err)
			}
			rt.Type = t
			f.Routes[rt.ID] = rt
		}
	case "trips.txt":
		rID := idx("route_id")
		sID := idx("service_id")
		tID := idx("trip_id")
		hs := idx("trip_headsign")
		dir := idx("direction_id")
		blk := idx("block_id")
		sh := idx("shape_id")
		wc := idx("wheelchair_accessible")
		for _, row := range rec[1:] {
			t := &Trip{
				ID:                   get(row, tID),
				RouteID:              get(row, rID),
				ServiceID:            get(row, sID),
				Headsign:             get(row, hs),
				DirectionID:          get(row, dir),
				BlockID:              get(row, blk),
				ShapeID:              get(row, sh),
				WheelchairAccessible: atoi(row, wc, 0),
			}
			f.Trips[t.ID] = t
		}
	case "stop_times.txt":
		tID := idx("trip_id")
		sID := idx("stop_id")
		sq := idx("stop_sequence")
		arrTime := idx("arrival_time")
		depTime := idx("departure_time")
		pickupType := idx("pickup_type")
		dropOffType := idx("drop_off_type")
		dist := idx("shape_dist_traveled")
		if tID < 0 || sID < 0 || sq < 0 {
			return errors.New("missing trip_id, stop_id or stop_sequence column")
		}
		for line, row := range rec[1:] {
			st := &StopTime{
				TripID:            get(row, tID),
				StopID:            get(row, sID),
				Sequence:          atoi(row, sq, 0),
				PickupType:        atoi(row, pickupType, PickupRegular),
				DropOffType:       atoi(row, dropOffType, PickupRegular),
				ShapeDistTraveled: atof(row, dist, -1),
			}
			var err error
			if st.Arrival, err = ParseTime(get(row, arrTime)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			if st.Departure, err = ParseTime(get(row, depTime)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			f.StopTimes[st.TripID] = append(f.StopTimes[st.TripID], st)
		}
	case "calendar.txt":
		sID := idx("service_id")
		days := [7]int{idx("sunday"), idx("monday"), idx("tuesday"), idx("wednesday"), idx("thursday"), idx("friday"), idx("saturday")}
		start := idx("start_date")
		end := idx("end_date")
		for line, row := range rec[1:] {
			c := &Calendar{ServiceID: get(row, sID)}
			for d, col := range days {
				c.Days[d] = get(row, col) == "1"
			}
			var err error
			if c.Start, err = ParseDate(get(row, start)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			if c.End, err = ParseDate(get(row, end)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			f.Calendars[c.ServiceID] = c
		}
	case "calendar_dates.txt":
		sID := idx("service_id")
		date := idx("date")
		ex := idx("exception_type")
		for line, row := range rec[1:] {
			d, err := ParseDate(get(row, date))
			if err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			f.CalendarDates = append(f.CalendarDates, &CalendarDate{
				ServiceID:     get(row, sID),
				Date:          d,
				ExceptionType: atoi(row, ex, 0),
			})
		}
	case "transfers.txt":
		from := idx("from_stop_id")
		to := idx("to_stop_id")
		typ := idx("transfer_type")
		minT := idx("min_transfer_time")
		for _, row := range rec[1:] {
			f.Transfers = append(f.Transfers, &Transfer{
				FromStopID:      get(row, from),
				ToStopID:        get(row, to),
				Type:            atoi(row, typ, 0),
				MinTransferTime: atoi(row, minT, 0),
			})
		}
	case "frequencies.txt":
		tID := idx("trip_id")
		start := idx("start_time")
		end := idx("end_time")
		hw := idx("headway_secs")
		exact := idx("exact_times")
		for line, row := range rec[1:] {
			fr := &Frequency{
				TripID:      get(row, tID),
				HeadwaySecs: atoi(row, hw, 0),
				ExactTimes:  get(row, exact) == "1",
			}
			var err error
			if fr.StartTime, err = ParseTime(get(row, start)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			if fr.EndTime, err = ParseTime(get(row, end)); err != nil {
				return fmt.Errorf("row %d: %w", line+2, err)
			}
			if fr.HeadwaySecs <= 0 {
				return fmt.Errorf("row %d: trip %s has non-positive headway", line+2, fr.TripID)
			}
			f.Frequencies[fr.TripID] = append(f.Frequencies[fr.TripID], fr)
		}
	case "shapes.txt":
		sh := idx("shape_id")
		latIdx := idx("shape_pt_lat")
		lonIdx := idx("shape_pt_lon")
		seqIdx := idx("shape_pt_sequence")
		dist := idx("shape_dist_traveled")
		if sh < 0 || latIdx < 0 || lonIdx < 0 || seqIdx < 0 {
			return nil
		}
		for _, row := range rec[1:] {
			p := &ShapePoint{
				ShapeID:      get(row, sh),
				Lat:          atof(row, latIdx, 0),
				Lon:          atof(row, lonIdx, 0),
				Sequence:     atoi(row, seqIdx, 0),
				DistTraveled: atof(row, dist, -1),
			}
			f.Shapes[p.ShapeID] = append(f.Shapes[p.ShapeID], p)
		}
	case "fare_attributes.txt":
		fID := idx("fare_id")
		ag := idx("agency_id")
		price := idx("price")
		cur := idx("currency_type")
		pay := idx("payment_method")
		tr := idx("transfers")
		dur := idx("transfer_duration")
		for line, row := range rec[1:] {
			fa := &FareAttribute{
				ID:               get(row, fID),
				AgencyID:         get(row, ag),
				CurrencyType:     get(row, cur),
				PaymentMethod:    atoi(row, pay, 0),
				Transfers:        atoi(row, tr, -1),
				TransferDuration: atoi(row, dur, 0),
			}
			p, err := strconv.ParseFloat(get(row, price), 64)
			if err != nil {
				return fmt.Errorf("row %d: fare %s price: %w", line+2, fa.ID, err)
			}
			fa.Price = p
			f.FareAttributes[fa.ID] = fa
		}
	case "fare_rules.txt":
		fID := idx("fare_id")
		rID := idx("route_id")
		o := idx("origin_id")
		d := idx("destination_id")
		c := idx("contains_id")
		for _, row := range rec[1:] {
			f.FareRules = append(f.FareRules, &FareRule{
				FareID:        get(row, fID),
				RouteID:       get(row, rID),
				OriginID:      get(row, o),
				DestinationID: get(row, d),
				ContainsID:    get(row, c),
			})
		}
	default:
		return fmt.Errorf("unsupported file %s", path.Base(name))
	}
	return nil
}
