package config

// RoutingConfig contains the defaults applied to every trip plan request
type RoutingConfig struct {
	WalkSpeed           float64 `yaml:"walkSpeed" validate:"gte=0"`
	BikeSpeed           float64 `yaml:"bikeSpeed" validate:"gte=0"`
	TransferPenalty     float64 `yaml:"transferPenalty" validate:"gte=0"`
	WalkReluctance      float64 `yaml:"walkReluctance" validate:"gte=1"`
	BoardCost           float64 `yaml:"boardCost" validate:"gte=0"`
	MaxWalkDistance     float64 `yaml:"maxWalkDistance" validate:"gte=0"` // meters, 0 means unbounded
	SearchWindowMinutes int     `yaml:"searchWindowMinutes" validate:"gte=0"`
	NumItineraries      int     `yaml:"numItineraries" validate:"gte=0,lte=10"`
	Wheelchair          bool    `yaml:"wheelchair"`
}

// GTFSConfig contains GTFS static feed configuration
type GTFSConfig struct {
	Path     string `yaml:"path" validate:"required"`
	AgencyID string `yaml:"agency_id" validate:"omitempty"`
	Fares    bool   `yaml:"fares"`
}

// GTFSRTConfig contains GTFS-Realtime snapshot configuration
type GTFSRTConfig struct {
	TripUpdatesPath   string `yaml:"tripUpdatesPath" validate:"omitempty"`
	ServiceAlertsPath string `yaml:"serviceAlertsPath" validate:"omitempty"`
}

// LinkingConfig controls how transit stops are attached to the street network
type LinkingConfig struct {
	SnapDistance float64 `yaml:"snapDistance" validate:"gte=0"`
	SearchRadius float64 `yaml:"searchRadius" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error crit"`
	Format string `yaml:"format" validate:"omitempty,oneof=logfmt json terminal"`
}

// Feed represents a single GTFS feed configuration
type Feed struct {
	Name   string       `yaml:"name" validate:"required"`
	GTFS   GTFSConfig   `yaml:"gtfs"`
	GTFSRT GTFSRTConfig `yaml:"gtfsrt"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Routing RoutingConfig `yaml:"routing"`
	Linking LinkingConfig `yaml:"linking"`
	Logging LoggingConfig `yaml:"logging"`
	Feeds   []Feed        `yaml:"feeds" validate:"dive"`
}
