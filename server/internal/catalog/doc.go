// Package catalog holds the static civic records served by the REST API:
// public meetings, environmental permits, the sensor inventory, curated
// insights, the sustainability score trend and map markers.
//
// Every accessor returns a copy; callers may modify the result freely.
package catalog
