package catalog

// Sensors returns the sensor inventory.
func Sensors() []Sensor {
	return []Sensor{
		{ID: "S001", Type: "Air Quality", Location: "Downtown", Status: "Normal", Reading: "AQI 45 - Good", Updated: "2023-10-14T09:32:00"},
		{ID: "S002", Type: "Water Quality", Location: "North River", Status: "Warning", Reading: "pH 8.7 - Above Normal", Updated: "2023-10-14T09:15:00"},
		{ID: "S003", Type: "Noise Level", Location: "Highway Junction", Status: "Normal", Reading: "62 dB - Acceptable", Updated: "2023-10-14T09:30:00"},
		{ID: "S004", Type: "Water Quality", Location: "East River", Status: "Alert", Reading: "DO 3.2 mg/L - Low", Updated: "2023-10-14T08:45:00"},
		{ID: "S005", Type: "Air Quality", Location: "Industrial Zone", Status: "Alert", Reading: "AQI 125 - Unhealthy", Updated: "2023-10-14T09:00:00"},
		{ID: "S006", Type: "Soil Moisture", Location: "City Park", Status: "Normal", Reading: "32% - Optimal", Updated: "2023-10-14T08:30:00"},
		{ID: "S007", Type: "Weather", Location: "City Center", Status: "Normal", Reading: "72°F, 45% humidity", Updated: "2023-10-14T09:25:00"},
		{ID: "S008", Type: "Water Level", Location: "Flood Zone A", Status: "Warning", Reading: "4.2m - Rising", Updated: "2023-10-14T09:20:00"},
		{ID: "S009", Type: "Weather", Location: "Western District", Status: "Inactive", Reading: "No Data", Updated: "2023-10-13T16:45:00"},
	}
}

// SensorByID returns the full record of sensor id.
func SensorByID(id string) (SensorDetail, bool) {
	if id == "S001" {
		return downtownMonitor(), true
	}
	for _, s := range Sensors() {
		if s.ID != id {
			continue
		}
		place := Place{Name: s.Location}
		if m, ok := markerByID(Markers().Sensors, id); ok {
			place.Latitude, place.Longitude = m.Latitude, m.Longitude
		}
		return SensorDetail{
			ID:       s.ID,
			Name:     s.Location + " " + s.Type + " Monitor",
			Type:     s.Type,
			Location: place,
			Status:   s.Status,
			CurrentReading: CurrentReading{
				Timestamp:  s.Updated,
				Assessment: s.Reading,
			},
			Maintenance: Maintenance{
				LastCalibration: "2023-09-01",
				NextScheduled:   "2023-12-01",
				Battery:         "80%",
			},
			InstalledDate: "2022-03-15",
			HistoryURL:    "/api/sensors/" + s.ID + "/history",
		}, true
	}
	return SensorDetail{}, false
}

func downtownMonitor() SensorDetail {
	return SensorDetail{
		ID:   "S001",
		Name: "Downtown Air Quality Monitor",
		Type: "Air Quality",
		Location: Place{
			Name:      "Downtown - City Hall",
			Latitude:  40.7112,
			Longitude: -74.0055,
		},
		Status: "Normal",
		CurrentReading: CurrentReading{
			Timestamp: "2023-10-14T09:32:00",
			Metrics: map[string]float64{
				"aqi":  45,
				"pm25": 10.2,
				"pm10": 18.5,
				"o3":   0.032,
				"no2":  0.015,
				"co":   0.3,
			},
			Assessment: "Good",
		},
		Thresholds: map[string]map[string]float64{
			"warning": {"aqi": 100, "pm25": 35.0, "pm10": 150.0, "o3": 0.07, "no2": 0.1, "co": 9.0},
			"alert":   {"aqi": 150, "pm25": 55.0, "pm10": 250.0, "o3": 0.09, "no2": 0.2, "co": 15.0},
		},
		Maintenance: Maintenance{
			LastCalibration: "2023-09-01",
			NextScheduled:   "2023-12-01",
			Battery:         "95%",
		},
		InstalledDate: "2022-03-15",
		HistoryURL:    "/api/sensors/S001/history",
	}
}
