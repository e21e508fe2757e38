package types

// SensorValueMetric is the gauge family the agent exposes one sample per
// sensor under.
const SensorValueMetric = "docrat_sensor_value"

// Label names attached to every SensorValueMetric sample.
const (
	LabelID       = "id"
	LabelType     = "type"
	LabelLocation = "location"
	LabelUnit     = "unit"
)

// SensorReading is the current value of one field sensor.
type SensorReading struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	Location string  `json:"location"`
	Unit     string  `json:"unit"`
	Value    float64 `json:"value"`
}
