// Package sensors simulates the DOCRAT field sensor network.
//
// Simulator keeps one value per configured sensor and moves each by a bounded
// random step on every Tick, clamped to the sensor's [min, max] range. Run
// ticks on an interval until its context is cancelled; Reconfigure swaps the
// sensor set on config reload, keeping the current value of sensors that
// survive.
//
// Simulator is also the agent's /metrics handler: it serves one
// docrat_sensor_value gauge per sensor, labelled id, type, location and unit,
// in the Prometheus text format the server's sensor source scrapes.
package sensors
