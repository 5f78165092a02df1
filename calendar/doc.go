// Package calendar answers which GTFS services run on a given service day.
//
// A Service combines the weekly patterns of calendar.txt with the added and
// removed dates of calendar_dates.txt. Dates are compared by their civil
// year, month and day in whatever location the caller supplies, so the
// service day of a trip is the local date of the agency.
package calendar
