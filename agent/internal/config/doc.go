// Package config loads and watches the sensor agent configuration
// (the `agent:` section of config.yaml).
//
// AgentConfig carries the listen address, tick interval, log level, an
// optional seed and the simulated sensor list. Each Sensor has an id, type,
// location, unit and the [min, max] range its random walk stays in.
//
// Load(path) applies defaults (:9101, 5s tick, the nine-sensor field network)
// and validates ids, ranges and enums. Watch(ctx, path, onChange) uses
// fsnotify to re-load the file on every write.
package config
