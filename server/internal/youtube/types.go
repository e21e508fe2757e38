package youtube

import "time"

// Video is the metadata used for extraction and search results.
type Video struct {
	ID           string        `json:"videoId"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	ChannelTitle string        `json:"channelTitle"`
	PublishedAt  time.Time     `json:"publishedAt"`
	ThumbnailURL string        `json:"thumbnailUrl,omitempty"`
	URL          string        `json:"url"`
	Duration     time.Duration `json:"-"`

	// Source is "mock_search" for templated results.
	Source string `json:"source,omitempty"`
}

// Extraction is a meeting record derived from a video or other URL.
type Extraction struct {
	ID                   int      `json:"id"`
	Title                string   `json:"title"`
	Date                 string   `json:"date"`
	Duration             string   `json:"duration"`
	Location             string   `json:"location"`
	Source               string   `json:"source"`
	VideoID              string   `json:"video_id,omitempty"`
	Topics               []string `json:"topics"`
	MeetingType          []string `json:"meeting_type,omitempty"`
	TranscriptSummary    string   `json:"transcript_summary"`
	ExtractionConfidence string   `json:"extraction_confidence"`
	ProcessingTime       string   `json:"processing_time"`
	ExtractionMethod     string   `json:"extraction_method"`
	IsYouTube            bool     `json:"is_youtube"`
}

// SearchQuery narrows a meeting video search.
type SearchQuery struct {
	Keywords     string
	Organization string
	MeetingType  string
	MaxResults   int64
}

// dateLayout is the timestamp format of extraction dates.
const dateLayout = "2006-01-02T15:04:05"
