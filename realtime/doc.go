// Package realtime overlays GTFS-Realtime feeds on searches.
//
// Two effects are supported:
//   - Trip Updates: trips marked CANCELED are skipped at boarding
//   - Service Alerts: routes and trips under a NO_SERVICE alert are banned
//     while the alert is active
//
// The main type is Overlay, built from raw protobuf bytes and applied to the
// traverse options of each search. Client fetches the bytes from a URL or a
// local file.
package realtime
