package insight

import (
	"strconv"
	"strings"

	"github.com/docrat/docrat/server/internal/reading"
)

// evalCondition evaluates a rule condition string against a reading.
//
// Supported expressions (field operator value):
//
//	aqi > 100                     air_quality
//	pm25 >= 35                    air_quality, any pollutant key
//	status == Unhealthy           air_quality
//	overall_score < 60            sustainability_score
//	emissions < 50                sustainability_score, any category
//	state == poor                 sustainability_score
//	article_count < 1             news
//	S003 > 75                     sensors, by sensor id
//	noise > 75                    sensors, by type; first match fires
//
// Returns (fires bool, triggering value). The value is formatted for use in
// the rule message. Returns (false, "") if the expression cannot be parsed or
// the field is unknown for the reading.
func evalCondition(cond string, r reading.Reading) (bool, string) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, ""
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if s, ok := stringField(field, r); ok {
		switch op {
		case "==":
			return strings.EqualFold(s, rhs), s
		case "!=":
			return !strings.EqualFold(s, rhs), s
		}
		return false, ""
	}

	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, ""
	}
	for _, v := range numericFields(field, r) {
		if compareFloat(v, op, threshold) {
			return true, formatValue(v)
		}
	}
	return false, ""
}

// stringField returns the value of a textual field.
func stringField(field string, r reading.Reading) (string, bool) {
	switch v := r.(type) {
	case reading.AirQuality:
		if field == "status" {
			return v.Status, true
		}
	case reading.SustainabilityScore:
		if field == "state" {
			return v.State, true
		}
	}
	return "", false
}

// numericFields returns every value field names in r. Most fields resolve to
// a single value; a sensor type may match several sensors.
func numericFields(field string, r reading.Reading) []float64 {
	switch v := r.(type) {
	case reading.AirQuality:
		if field == "aqi" {
			return []float64{float64(v.AQI)}
		}
		if p, ok := v.Pollutants[field]; ok {
			return []float64{p}
		}
	case reading.SustainabilityScore:
		if field == "overall_score" {
			return []float64{float64(v.OverallScore)}
		}
		if c, ok := v.Categories[field]; ok {
			return []float64{float64(c)}
		}
	case reading.News:
		if field == "article_count" {
			return []float64{float64(len(v.Articles))}
		}
	case reading.Sensors:
		var out []float64
		for _, s := range v.Sensors {
			if s.ID == field || s.Type == field {
				out = append(out, s.Value)
			}
		}
		return out
	}
	return nil
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	case "!=":
		return v != threshold
	default:
		return false
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
