package catalog

// Meetings returns every meeting, newest record first as published.
func Meetings() []Meeting {
	out := make([]Meeting, 0, len(meetingRecords()))
	for _, d := range meetingRecords() {
		out = append(out, d.Meeting)
	}
	return out
}

// MeetingByID returns the full record of meeting id.
func MeetingByID(id int) (MeetingDetail, bool) {
	for _, d := range meetingRecords() {
		if d.ID == id {
			return d, true
		}
	}
	return MeetingDetail{}, false
}

func meetingRecords() []MeetingDetail {
	return []MeetingDetail{
		{
			Meeting: Meeting{
				ID:          1,
				Title:       "City Council - Environmental Policy Review",
				Date:        "2023-10-10T18:00:00",
				Commitments: 3,
				Score:       85,
				Topics:      []string{"Climate Action", "Water Conservation", "Urban Forestry"},
			},
			Location:     "City Hall - Council Chambers",
			Duration:     120,
			Participants: []string{"Mayor Johnson", "Council Members", "Environmental Director", "Public Attendees"},
			KeyPoints: []string{
				"Discussion of updated Climate Action Plan with new emission targets",
				"Approval of Water Conservation Ordinance amendment",
				"Review of Urban Forestry initiative progress",
			},
			Commitments: []Commitment{
				{ID: 1, Description: "Increase urban tree canopy by 15% within 5 years", ResponsibleParty: "Parks Department", Timeline: "By 2028", Status: "In Progress"},
				{ID: 2, Description: "Implement water-use restrictions for commercial properties", ResponsibleParty: "Utilities Department", Timeline: "Q1 2024", Status: "Not Started"},
				{ID: 3, Description: "Complete city building energy efficiency audits", ResponsibleParty: "Facilities Management", Timeline: "Q4 2023", Status: "On Track"},
			},
			Sentiment:     Sentiment{Overall: "Positive", Details: map[string]int{"positive": 65, "neutral": 30, "negative": 5}},
			TranscriptURL: "/api/meetings/1/transcript",
			VideoURL:      "https://example.com/city-council/2023-10-10",
		},
		{
			Meeting: Meeting{
				ID:          2,
				Title:       "Planning Commission - Zoning Updates",
				Date:        "2023-09-25T14:00:00",
				Commitments: 1,
				Score:       65,
				Topics:      []string{"Urban Development", "Green Spaces"},
			},
			Location:     "City Hall - Room 105",
			Duration:     105,
			Participants: []string{"Planning Director", "Commission Members", "Developers", "Public Attendees"},
			KeyPoints: []string{
				"Downtown zoning changes approved with green space requirements",
				"Oak Street development sent back for traffic impact revision",
			},
			Commitments: []Commitment{
				{ID: 1, Description: "Require 10% green space in new downtown developments", ResponsibleParty: "Planning Department", Timeline: "Q2 2024", Status: "Not Started"},
			},
			Sentiment:     Sentiment{Overall: "Mixed", Details: map[string]int{"positive": 40, "neutral": 35, "negative": 25}},
			TranscriptURL: "/api/meetings/2/transcript",
		},
		{
			Meeting: Meeting{
				ID:          3,
				Title:       "Environmental Board - Quarterly Review",
				Date:        "2023-09-15T10:00:00",
				Commitments: 5,
				Score:       92,
				Topics:      []string{"Air Quality", "Wildlife Protection", "Waste Management"},
			},
			Location:     "Environmental Services Building",
			Duration:     150,
			Participants: []string{"Board Chair", "Board Members", "Environmental Director", "Scientific Advisors"},
			KeyPoints: []string{
				"Industrial Zone air quality readings above target for the quarter",
				"Wetland habitat protection plan adopted",
				"Curbside composting pilot expanded to two districts",
			},
			Commitments: []Commitment{
				{ID: 1, Description: "Install two additional air monitors in the Industrial Zone", ResponsibleParty: "Environmental Services", Timeline: "Q4 2023", Status: "In Progress"},
				{ID: 2, Description: "Publish monthly air quality reports", ResponsibleParty: "Environmental Services", Timeline: "Ongoing", Status: "On Track"},
				{ID: 3, Description: "Restore 5 acres of East District wetland", ResponsibleParty: "Parks Department", Timeline: "By 2025", Status: "Not Started"},
				{ID: 4, Description: "Expand composting pilot to West District", ResponsibleParty: "Sanitation Department", Timeline: "Q1 2024", Status: "On Track"},
				{ID: 5, Description: "Audit landfill diversion rates", ResponsibleParty: "Sanitation Department", Timeline: "Q2 2024", Status: "Not Started"},
			},
			Sentiment:     Sentiment{Overall: "Positive", Details: map[string]int{"positive": 72, "neutral": 23, "negative": 5}},
			TranscriptURL: "/api/meetings/3/transcript",
		},
		{
			Meeting: Meeting{
				ID:          4,
				Title:       "Parks & Recreation - Land Management",
				Date:        "2023-10-05T09:00:00",
				Commitments: 2,
				Score:       78,
				Topics:      []string{"Conservation", "Recreation Access"},
			},
			Location:     "Community Center - Hall B",
			Duration:     90,
			Participants: []string{"Parks Director", "Recreation Committee", "Neighborhood Associations"},
			KeyPoints: []string{
				"Western Forest Corridor clearing reported for investigation",
				"Trail accessibility upgrades prioritized",
			},
			Commitments: []Commitment{
				{ID: 1, Description: "Investigate unauthorized clearing in Western Forest Corridor", ResponsibleParty: "Parks Department", Timeline: "Q4 2023", Status: "In Progress"},
				{ID: 2, Description: "Upgrade three trails to accessible surfaces", ResponsibleParty: "Recreation Division", Timeline: "Q3 2024", Status: "Not Started"},
			},
			Sentiment:     Sentiment{Overall: "Neutral", Details: map[string]int{"positive": 45, "neutral": 45, "negative": 10}},
			TranscriptURL: "/api/meetings/4/transcript",
		},
		{
			Meeting: Meeting{
				ID:          5,
				Title:       "Water Resources Board - Drought Planning",
				Date:        "2023-10-02T13:00:00",
				Commitments: 4,
				Score:       88,
				Topics:      []string{"Water Conservation", "Irrigation", "Infrastructure"},
			},
			Location:     "Utilities Building - Board Room",
			Duration:     135,
			Participants: []string{"Board Chair", "Utilities Director", "Agricultural Representatives", "Public Attendees"},
			KeyPoints: []string{
				"Stage 1 drought response plan approved",
				"Smart irrigation rebate program extended",
				"North River intake upgrade funded",
			},
			Commitments: []Commitment{
				{ID: 1, Description: "Activate stage 1 drought restrictions when reservoir falls below 60%", ResponsibleParty: "Utilities Department", Timeline: "Immediate", Status: "On Track"},
				{ID: 2, Description: "Extend smart irrigation rebates through 2024", ResponsibleParty: "Utilities Department", Timeline: "2024", Status: "In Progress"},
				{ID: 3, Description: "Complete North River intake upgrade", ResponsibleParty: "Public Works", Timeline: "Q3 2024", Status: "Not Started"},
				{ID: 4, Description: "Launch residential leak detection outreach", ResponsibleParty: "Communications Office", Timeline: "Q1 2024", Status: "Not Started"},
			},
			Sentiment:     Sentiment{Overall: "Positive", Details: map[string]int{"positive": 60, "neutral": 32, "negative": 8}},
			TranscriptURL: "/api/meetings/5/transcript",
		},
	}
}
