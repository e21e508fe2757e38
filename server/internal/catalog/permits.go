package catalog

// Permits returns the permit register.
func Permits() []Permit {
	return []Permit{
		{ID: "P-23418", Type: "Water Discharge", Status: "Under Review", Location: "South Waterfront", Expiry: "2024-10-15", ImpactLevel: "High"},
		{ID: "P-23215", Type: "Water Discharge", Status: "Active", Location: "North Industrial Park", Expiry: "2023-11-20", ImpactLevel: "Medium"},
		{ID: "P-23108", Type: "Air Quality", Status: "Active", Location: "East Manufacturing Zone", Expiry: "2023-10-25", ImpactLevel: "High"},
		{ID: "P-23350", Type: "Land Use", Status: "Active", Location: "West District", Expiry: "2023-12-30", ImpactLevel: "Low"},
		{ID: "P-23422", Type: "Waste Management", Status: "Pending Approval", Location: "Central Processing Facility", Expiry: "2024-06-15", ImpactLevel: "Medium"},
	}
}

// PermitByID returns the full record of permit id. Permits without a filed
// assessment get a record built from the register entry.
func PermitByID(id string) (PermitDetail, bool) {
	if id == "P-23418" {
		return southWaterfrontPermit(), true
	}
	for _, p := range Permits() {
		if p.ID != id {
			continue
		}
		place := Place{Name: p.Location}
		if m, ok := markerByID(Markers().Permits, id); ok {
			place.Latitude, place.Longitude = m.Latitude, m.Longitude
		}
		return PermitDetail{
			ID:                  p.ID,
			Title:               p.Type + " Permit",
			Type:                p.Type,
			Status:              p.Status,
			Applicant:           "On file",
			ExpiryDate:          p.Expiry,
			Location:            place,
			ImpactLevel:         p.ImpactLevel,
			MonitoredParameters: []MonitoredParameter{},
			Concerns:            []string{},
			MitigationMeasures:  []string{},
			RelatedPermits:      []string{},
			DocumentsURL:        "/api/permits/" + p.ID + "/documents",
		}, true
	}
	return PermitDetail{}, false
}

func southWaterfrontPermit() PermitDetail {
	return PermitDetail{
		ID:              "P-23418",
		Title:           "Industrial Wastewater Discharge Permit",
		Type:            "Water Discharge",
		Subtype:         "Industrial",
		Status:          "Under Review",
		Applicant:       "South Bay Industrial Corp.",
		ApplicationDate: "2023-09-15",
		ExpiryDate:      "2024-10-15",
		Location: Place{
			Name:      "South Waterfront",
			Address:   "450 Harbor Way",
			Latitude:  40.7025,
			Longitude: -73.9875,
		},
		ImpactLevel: "High",
		ImpactAssessment: map[string]string{
			"water_quality": "High",
			"aquatic_life":  "High",
			"human_health":  "Medium",
			"recreation":    "Medium",
		},
		MonitoredParameters: []MonitoredParameter{
			{Parameter: "pH", Limit: "6.5-8.5", Expected: "7.2"},
			{Parameter: "TSS", Limit: "30 mg/L", Expected: "45 mg/L"},
			{Parameter: "Copper", Limit: "0.5 mg/L", Expected: "0.8 mg/L"},
			{Parameter: "Temperature", Limit: "< 32°C", Expected: "29°C"},
		},
		Concerns: []string{
			"Discharge point is within 500m of protected wetland habitat",
			"Elevated levels of suspended solids exceed permitted limits",
			"Potential for copper bioaccumulation in aquatic organisms",
		},
		MitigationMeasures: []string{
			"Installation of additional filtration system",
			"Weekly monitoring and reporting of discharge quality",
			"Reduction of discharge volume during sensitive ecological periods",
		},
		RelatedPermits: []string{"P-22105", "P-21875"},
		DocumentsURL:   "/api/permits/P-23418/documents",
	}
}
