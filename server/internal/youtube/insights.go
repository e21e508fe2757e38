package youtube

import "strings"

// KeyInsight is one observation with a recommended action.
type KeyInsight struct {
	Insight         string `json:"insight"`
	Priority        string `json:"priority"`
	SuggestedAction string `json:"suggested_action"`
}

// SentimentAnalysis summarizes how a meeting was received.
type SentimentAnalysis struct {
	Overall           string `json:"overall"`
	CommunityReaction string `json:"community_reaction"`
	ControversyLevel  string `json:"controversy_level"`
}

// Timeline groups suggested actions by horizon.
type Timeline struct {
	Immediate  string `json:"immediate"`
	ShortTerm  string `json:"short_term"`
	MediumTerm string `json:"medium_term"`
	LongTerm   string `json:"long_term"`
}

// MeetingInsights is the actionable follow-up bundle for one meeting.
type MeetingInsights struct {
	KeyInsights             []KeyInsight      `json:"key_insights"`
	SentimentAnalysis       SentimentAnalysis `json:"sentiment_analysis"`
	FollowUpRecommendations []string          `json:"follow_up_recommendations"`
	KeyStakeholders         []string          `json:"key_stakeholders"`
	TimelineSuggestions     Timeline          `json:"timeline_suggestions"`
}

// financeCommitteeID is the extraction id of the curated finance recording.
const financeCommitteeID = 53

const maxKeyInsights = 3

// Insights returns the follow-up bundle for meeting id. title and topics come
// from the meeting record; an empty title means the meeting is unknown and a
// generic community bundle is returned.
func Insights(id int, title string, topics []string) MeetingInsights {
	if id == financeCommitteeID {
		return financeInsights()
	}
	if title == "" {
		return communityInsights()
	}

	out := engagementInsights()
	if hasTopic(topics, "budget", "financ") || strings.Contains(strings.ToLower(title), "financial") {
		out.KeyInsights = append(out.KeyInsights, KeyInsight{
			Insight:         "Budget discussions revealed potential funding gaps for next fiscal year",
			Priority:        "High",
			SuggestedAction: "Conduct detailed financial analysis and identify potential funding sources",
		})
	}
	if hasTopic(topics, "infrastructure") || strings.Contains(strings.ToLower(title), "infrastructure") {
		out.KeyInsights = append(out.KeyInsights, KeyInsight{
			Insight:         "Infrastructure maintenance backlogs were identified as a growing concern",
			Priority:        "High",
			SuggestedAction: "Develop comprehensive infrastructure assessment and prioritization plan",
		})
	}
	if len(out.KeyInsights) > maxKeyInsights {
		out.KeyInsights = out.KeyInsights[:maxKeyInsights]
	}
	return out
}

func hasTopic(topics []string, substrs ...string) bool {
	for _, t := range topics {
		lower := strings.ToLower(t)
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
	}
	return false
}

func engagementInsights() MeetingInsights {
	return MeetingInsights{
		KeyInsights: []KeyInsight{
			{
				Insight:         "Community engagement was high during this meeting, indicating strong public interest",
				Priority:        "Medium",
				SuggestedAction: "Create follow-up communication channels to maintain engagement momentum",
			},
			{
				Insight:         "Several actionable items were identified but without clear ownership",
				Priority:        "High",
				SuggestedAction: "Assign specific owners and deadlines to each action item",
			},
		},
		SentimentAnalysis: SentimentAnalysis{
			Overall:           "Neutral to Positive",
			CommunityReaction: "Engaged",
			ControversyLevel:  "3/10",
		},
		FollowUpRecommendations: []string{
			"Schedule a progress update meeting within 30 days",
			"Distribute meeting summary to all stakeholders",
			"Create a public-facing dashboard for tracking action items",
		},
		KeyStakeholders: []string{
			"City Management",
			"Community Representatives",
			"Department Heads",
			"Local Business Leaders",
		},
		TimelineSuggestions: Timeline{
			Immediate:  "Publish meeting minutes and action items within 24 hours",
			ShortTerm:  "Follow up on immediate action items within 2 weeks",
			MediumTerm: "Review progress on all items at 30-day mark",
			LongTerm:   "Schedule quarterly review of ongoing initiatives",
		},
	}
}

func financeInsights() MeetingInsights {
	return MeetingInsights{
		KeyInsights: []KeyInsight{
			{
				Insight:         "Quarterly financial report shows 3% budget surplus due to delayed capital projects",
				Priority:        "High",
				SuggestedAction: "Review capital project timeline and reallocate resources to priority projects",
			},
			{
				Insight:         "Infrastructure maintenance funding gap identified for next fiscal year",
				Priority:        "High",
				SuggestedAction: "Develop infrastructure funding strategy with potential revenue sources",
			},
			{
				Insight:         "Community development projects receiving positive ROI and community feedback",
				Priority:        "Medium",
				SuggestedAction: "Create case studies of successful projects for future planning reference",
			},
		},
		SentimentAnalysis: SentimentAnalysis{
			Overall:           "Positive",
			CommunityReaction: "Supportive",
			ControversyLevel:  "2/10",
		},
		FollowUpRecommendations: []string{
			"Schedule budget planning workshop with department heads within 2 weeks",
			"Request detailed infrastructure maintenance funding analysis",
			"Prepare community development impact report for council presentation",
		},
		KeyStakeholders: []string{
			"City Finance Department",
			"Infrastructure & Engineering Teams",
			"Community Development Office",
			"Budget Advisory Committee",
		},
		TimelineSuggestions: Timeline{
			Immediate:  "Distribute quarterly financial summary to all departments",
			ShortTerm:  "Convene budget planning session for next fiscal year (within 3 weeks)",
			MediumTerm: "Present infrastructure funding strategy at next full council meeting",
			LongTerm:   "Implement revised capital project timelines (within 90 days)",
		},
	}
}

func communityInsights() MeetingInsights {
	return MeetingInsights{
		KeyInsights: []KeyInsight{
			{
				Insight:         "Multiple community members expressed concerns about traffic congestion",
				Priority:        "High",
				SuggestedAction: "Conduct a traffic study and propose mitigation strategies",
			},
			{
				Insight:         "Budget allocation for parks renovation appears insufficient",
				Priority:        "Medium",
				SuggestedAction: "Review cost estimates and consider phased implementation",
			},
			{
				Insight:         "Housing development proposal received positive feedback",
				Priority:        "High",
				SuggestedAction: "Fast-track permit approvals and community engagement",
			},
		},
		SentimentAnalysis: SentimentAnalysis{
			Overall:           "Mixed",
			CommunityReaction: "Divided",
			ControversyLevel:  "5/10",
		},
		FollowUpRecommendations: []string{
			"Schedule a focused community workshop on traffic concerns within 30 days",
			"Prepare a detailed budget analysis for next council meeting",
			"Develop a communication plan to address community questions",
		},
		KeyStakeholders: []string{
			"Neighborhood Associations",
			"Local Business Community",
			"Transportation Department",
			"Environmental Advocacy Groups",
		},
		TimelineSuggestions: Timeline{
			Immediate:  "Address urgent community concerns via official statement",
			ShortTerm:  "Form a multi-stakeholder working group (within 2 weeks)",
			MediumTerm: "Develop preliminary action plan (within 30 days)",
			LongTerm:   "Implement comprehensive solution (within 6 months)",
		},
	}
}
