package gtfs

import "time"

// MissingTime marks an absent arrival or departure in stop_times.txt
const MissingTime = -1

// Agency is a row of agency.txt
type Agency struct {
	ID       string
	Name     string
	URL      string
	Timezone string
}

// Location types of stops.txt
const (
	LocationStop     = 0
	LocationStation  = 1
	LocationEntrance = 2
)

// Stop is a row of stops.txt
type Stop struct {
	ID                 string
	Name               string
	Lat                float64
	Lon                float64
	ZoneID             string
	LocationType       int
	ParentStation      string
	WheelchairBoarding int // 0 unknown, 1 possible, 2 not possible
}

// Route is a row of routes.txt
type Route struct {
	ID        string
	AgencyID  string
	ShortName string
	LongName  string
	Type      int
}

// Trip is a row of trips.txt
type Trip struct {
	ID                   string
	RouteID              string
	ServiceID            string
	Headsign             string
	DirectionID          string
	BlockID              string
	ShapeID              string
	WheelchairAccessible int // 0 unknown, 1 accessible, 2 not accessible
}

// Pickup and drop off types
const (
	PickupRegular    = 0
	PickupNone       = 1
	PickupPhone      = 2
	PickupCoordinate = 3
)

// StopTime is a row of stop_times.txt
type StopTime struct {
	TripID            string
	StopID            string
	Sequence          int
	Arrival           int // seconds since midnight or MissingTime
	Departure         int
	PickupType        int
	DropOffType       int
	ShapeDistTraveled float64 // negative when absent
}

// Calendar is a row of calendar.txt. Days is indexed by time.Weekday.
type Calendar struct {
	ServiceID string
	Days      [7]bool
	Start     time.Time
	End       time.Time
}

// Exception types of calendar_dates.txt
const (
	ServiceAdded   = 1
	ServiceRemoved = 2
)

// CalendarDate is a row of calendar_dates.txt
type CalendarDate struct {
	ServiceID     string
	Date          time.Time
	ExceptionType int
}

// Transfer is a row of transfers.txt
type Transfer struct {
	FromStopID      string
	ToStopID        string
	Type            int
	MinTransferTime int
}

// Frequency is a row of frequencies.txt
type Frequency struct {
	TripID      string
	StartTime   int
	EndTime     int
	HeadwaySecs int
	ExactTimes  bool
}

// ShapePoint is a row of shapes.txt
type ShapePoint struct {
	ShapeID      string
	Lat          float64
	Lon          float64
	Sequence     int
	DistTraveled float64
}

// FareAttribute is a row of fare_attributes.txt. Transfers is -1 when
// unlimited; TransferDuration is 0 when unset.
type FareAttribute struct {
	ID               string
	AgencyID         string
	Price            float64
	CurrencyType     string
	PaymentMethod    int
	Transfers        int
	TransferDuration int
}

// FareRule is a row of fare_rules.txt
type FareRule struct {
	FareID        string
	RouteID       string
	OriginID      string
	DestinationID string
	ContainsID    string
}
