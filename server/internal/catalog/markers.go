package catalog

// Markers returns every map layer.
func Markers() MarkerLayers {
	return MarkerLayers{
		Meetings: []MeetingMarker{
			{ID: 1, Title: "City Council Meeting", Location: "City Hall", Latitude: 40.7128, Longitude: -74.0060, Type: "meeting", Date: "2023-10-10"},
		},
		Permits: []Marker{
			{ID: "P-23418", Title: "Water Discharge Permit", Latitude: 40.7025, Longitude: -73.9875, Type: "permit", Status: "Under Review", ImpactLevel: "High"},
			{ID: "P-23215", Title: "Water Discharge Permit", Latitude: 40.7350, Longitude: -74.0180, Type: "permit", Status: "Active", ImpactLevel: "Medium"},
			{ID: "P-23108", Title: "Air Quality Permit", Latitude: 40.7260, Longitude: -73.9780, Type: "permit", Status: "Active", ImpactLevel: "High"},
		},
		Sensors: []Marker{
			{ID: "S001", Title: "Air Quality Sensor", Latitude: 40.7112, Longitude: -74.0055, Type: "sensor", Status: "Normal"},
			{ID: "S002", Title: "Water Quality Sensor", Latitude: 40.7350, Longitude: -74.0120, Type: "sensor", Status: "Warning"},
			{ID: "S004", Title: "Water Quality Sensor", Latitude: 40.7180, Longitude: -73.9770, Type: "sensor", Status: "Alert"},
			{ID: "S005", Title: "Air Quality Sensor", Latitude: 40.7250, Longitude: -74.0150, Type: "sensor", Status: "Alert"},
		},
		AreasOfInterest: []Area{
			{
				ID: "AOI-1", Title: "East District Wetlands", Type: "area", Status: "Significant Change",
				Polygon: [][2]float64{{40.7180, -73.9720}, {40.7180, -73.9650}, {40.7120, -73.9650}, {40.7120, -73.9720}},
			},
			{
				ID: "AOI-2", Title: "North River Basin", Type: "area", Status: "Stable",
				Polygon: [][2]float64{{40.7380, -74.0120}, {40.7380, -74.0050}, {40.7320, -74.0050}, {40.7320, -74.0120}},
			},
			{
				ID: "AOI-3", Title: "Western Forest Corridor", Type: "area", Status: "Minor Change",
				Polygon: [][2]float64{{40.7150, -74.0220}, {40.7150, -74.0150}, {40.7080, -74.0150}, {40.7080, -74.0220}},
			},
		},
	}
}

func markerByID(ms []Marker, id string) (Marker, bool) {
	for _, m := range ms {
		if m.ID == id {
			return m, true
		}
	}
	return Marker{}, false
}
