// Package domain models USGS earthquake summary feed data.
//
// # Data Source
//
// The USGS Earthquake Hazards Program publishes rolling CSV summaries of all
// detected seismic events at
// https://earthquake.usgs.gov/earthquakes/feed/v1.0/csv.php. Four windows are
// used, each a separate file under the same base URL:
//
//	all_month.csv  ->  "Last month"
//	all_week.csv   ->  "Last week"
//	all_day.csv    ->  "Last day"
//	all_hour.csv   ->  "Last hour"
//
// # Feed Conventions
//
// Header row:
//
//	time,latitude,longitude,depth,mag,magType,nst,gap,dmin,rms,net,id,
//	updated,place,type,horizontalError,depthError,magError,magNst,status,
//	locationSource,magSource
//
// Only time, latitude, longitude, depth, mag, place and type are read. Column
// order is not relied on; columns are located by header name.
//
// Time format:
//
//	ISO 8601 in UTC with millisecond precision, e.g. "2024-04-26T15:10:03.210Z".
//
// Event type ("type" column):
//
//	The feed mixes earthquakes with other seismic-network detections:
//	"quarry blast", "explosion", "ice quake", "other event" and so on. Only
//	rows whose type is exactly "earthquake" become Event Records.
//
// Missing values:
//
//	Some rows leave "mag" or "depth" empty. Empty numeric cells are kept as
//	NaN so the row still appears in the table; charts skip non-finite points.
//
// # Normalized Form
//
// An [EventTable] holds the six projected fields under the canonical column
// names TIME, LATITUDE, LONGITUDE, DEPTH, MAG, PLACE, sorted by TIME with the
// most recent event first. A [Snapshot] holds one table per window and is
// never mutated after construction.
package domain
