// Package reading defines the values DOCRAT tracks and the envelopes that carry
// them to dashboard clients.
//
// A Reading is one immutable, timestamped observation of a Kind:
//
//   - air_quality           AirQuality (AQI, EPA status band, location, pollutants)
//   - news                  News (latest environmental headlines)
//   - sustainability_score  SustainabilityScore (overall score plus category scores)
//   - insight               Insight (short observation derived from other readings)
//   - sensors               Sensors (field sensor values scraped from the agent)
//
// Every message on the WebSocket channel is an Envelope:
//
//	{"type": "<kind>_update", "data": {...}, "timestamp": "RFC3339"}
//
// with "insight" used in place of "insight_update", plus "initial_data"
// (data keyed by kind), "pong" and "echo".
package reading
