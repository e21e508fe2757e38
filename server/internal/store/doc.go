// Package store holds the DOCRAT snapshot: the latest reading per kind, the
// last 24 air quality points and the 10 most recent insights. The scheduler
// is the only writer; the WebSocket hub and REST handlers read copies.
package store
