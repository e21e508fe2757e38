package catalog

// Insights returns the curated findings, newest curation first.
func Insights() []Insight {
	return []Insight{
		{
			ID:      1,
			Title:   "Increasing air quality concerns in Industrial Zone",
			Source:  "Sensor Data",
			Date:    "2023-10-14",
			Content: "Air quality sensors in the Industrial Zone show AQI levels above 120 for the third consecutive day, indicating a potential ongoing issue that requires investigation.",
		},
		{
			ID:      2,
			Title:   "Positive impact of Urban Forestry initiatives",
			Source:  "Meeting Analysis",
			Date:    "2023-10-10",
			Content: "Analysis of Urban Forestry progress shows a 7% increase in tree canopy coverage over the past year, on track to meet the 15% five-year goal set by the City Council.",
		},
		{
			ID:      3,
			Title:   "Water discharge permit concerns require attention",
			Source:  "Permit Review",
			Date:    "2023-09-15",
			Content: "The recently applied South Waterfront discharge permit shows elevated levels of suspended solids and copper that exceed current thresholds, potentially affecting nearby wetland habitat.",
		},
		{
			ID:      4,
			Title:   "Satellite data reveals potential unauthorized clearing",
			Source:  "Satellite Imagery",
			Date:    "2023-10-08",
			Content: "Vegetation index analysis from recent satellite imagery indicates approximately 2 acres of unauthorized clearing in Western Forest Corridor, outside of permitted development zones.",
		},
		{
			ID:      5,
			Title:   "North River water quality showing improvement",
			Source:  "Sensor Data",
			Date:    "2023-10-14",
			Content: "Despite a current pH alert, three-month trend analysis of North River water quality sensors shows 18% overall improvement in dissolved oxygen levels, likely due to recent infrastructure upgrades.",
		},
	}
}

// ScoreTrend returns the monthly sustainability score history, oldest first.
func ScoreTrend() []TrendPoint {
	return []TrendPoint{
		{Date: "2023-04-01", Score: 78},
		{Date: "2023-05-01", Score: 79},
		{Date: "2023-06-01", Score: 80},
		{Date: "2023-07-01", Score: 81},
		{Date: "2023-08-01", Score: 80},
		{Date: "2023-09-01", Score: 82},
		{Date: "2023-10-01", Score: 85},
	}
}
