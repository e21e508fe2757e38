package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a YouTube URL carries no video id.
var ErrInvalidURL = errors.New("youtube: invalid video url")

// IsYouTubeURL reports whether raw points at youtube.com or youtu.be.
func IsYouTubeURL(raw string) bool {
	return strings.Contains(raw, "youtube.com") || strings.Contains(raw, "youtu.be")
}

// ExtractVideoID returns the video id of a watch, short link, shorts or embed
// URL.
//
//	https://www.youtube.com/watch?v=ID
//	https://youtu.be/ID?t=30
//	https://www.youtube.com/shorts/ID
//	https://www.youtube.com/embed/ID
func ExtractVideoID(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch {
	case host == "youtu.be":
		id = firstSegment(u.Path)
	case strings.HasSuffix(host, "youtube.com"):
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/shorts"))
		case strings.HasPrefix(u.Path, "/embed/"):
			id = firstSegment(strings.TrimPrefix(u.Path, "/embed"))
		}
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return id, nil
}

func firstSegment(p string) string {
	p = strings.TrimPrefix(p, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return p
}

// maxTopics caps DetectTopics.
const maxTopics = 5

type keywordSet struct {
	name     string
	keywords []string
}

// topicCategories is ordered; detected topics keep this order.
var topicCategories = []keywordSet{
	{"Infrastructure", []string{"infrastructure", "roads", "bridges", "utilities", "construction", "facilities", "maintenance"}},
	{"Budget", []string{"budget", "funding", "costs", "expenditure", "revenue", "financial", "fiscal", "spending"}},
	{"Housing", []string{"housing", "residential", "apartments", "homes", "affordable", "rental", "development"}},
	{"Environment", []string{"environment", "climate", "sustainable", "recycling", "conservation", "emissions", "pollution"}},
	{"Transportation", []string{"transportation", "transit", "traffic", "roads", "parking", "vehicles", "public transport"}},
	{"Public Safety", []string{"safety", "police", "fire", "emergency", "crime", "enforcement", "protection"}},
	{"Health", []string{"health", "medical", "wellness", "hospital", "clinic", "healthcare", "disease"}},
	{"Education", []string{"education", "schools", "students", "learning", "teachers", "curriculum", "academic"}},
	{"Parks", []string{"parks", "recreation", "open space", "playground", "trails", "community centers"}},
	{"Economic Development", []string{"economic", "business", "commerce", "industry", "jobs", "growth", "employment"}},
}

var meetingTypes = []keywordSet{
	{"Finance", []string{"finance", "financial", "budget", "fiscal", "treasury", "monetary"}},
	{"Planning", []string{"planning", "zoning", "development", "urban", "design"}},
	{"Committee", []string{"committee", "commission", "board", "council", "task force"}},
	{"Public", []string{"public", "community", "town hall", "civic", "citizen"}},
	{"Special", []string{"special", "emergency", "extraordinary", "urgent"}},
	{"Regular", []string{"regular", "scheduled", "routine", "standard"}},
}

// DetectTopics returns up to five topic categories whose keywords appear in
// text. With no match it returns Public Discussion and Community Affairs.
func DetectTopics(text string) []string {
	out := matchSets(strings.ToLower(text), topicCategories)
	if len(out) == 0 {
		return []string{"Public Discussion", "Community Affairs"}
	}
	if len(out) > maxTopics {
		out = out[:maxTopics]
	}
	return out
}

// DetectMeetingTypes returns the meeting types whose keywords appear in text,
// or Public Meeting when none do.
func DetectMeetingTypes(text string) []string {
	out := matchSets(strings.ToLower(text), meetingTypes)
	if len(out) == 0 {
		return []string{"Public Meeting"}
	}
	return out
}

func matchSets(lower string, sets []keywordSet) []string {
	var out []string
	for _, s := range sets {
		if containsAny(lower, s.keywords) {
			out = append(out, s.name)
		}
	}
	return out
}

var (
	meetingKeywords = []string{"meeting", "council", "board", "committee", "commission", "hearing", "session"}
	publicKeywords  = []string{"public", "town hall", "community", "citizen", "residents"}
	govtChannels    = []string{"city of", "county of", "town of", "village of", "department of", "commission", "district"}
)

// IsLikelyPublicMeeting reports whether v looks like a recorded public
// meeting: a meeting keyword in the title or description, and either a public
// keyword there or a government-looking channel name.
func IsLikelyPublicMeeting(v Video) bool {
	text := strings.ToLower(v.Title + "\n" + v.Description)
	channel := strings.ToLower(v.ChannelTitle)

	if !containsAny(text, meetingKeywords) {
		return false
	}
	return containsAny(text, publicKeywords) || containsAny(channel, govtChannels)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
