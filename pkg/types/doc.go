// Package types defines shared Go types used by both the sensor agent and the
// server. The agent exposes SensorReading values as Prometheus gauges named
// SensorValueMetric; the server scrapes them back into SensorReading values.
package types
