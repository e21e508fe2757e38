package catalog

// Meeting is the list view of a public meeting.
type Meeting struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Commitments int      `json:"commitments"`
	Score       int      `json:"score"`
	Topics      []string `json:"topics"`
}

// Commitment is an action a body agreed to during a meeting.
type Commitment struct {
	ID               int    `json:"id"`
	Description      string `json:"description"`
	ResponsibleParty string `json:"responsible_party"`
	Timeline         string `json:"timeline"`
	Status           string `json:"status"`
}

// Sentiment is the positive/neutral/negative split of meeting remarks.
type Sentiment struct {
	Overall string         `json:"overall"`
	Details map[string]int `json:"details"`
}

// MeetingDetail is the full record of one meeting.
type MeetingDetail struct {
	Meeting
	Location      string       `json:"location"`
	Duration      int          `json:"duration"` // minutes
	Participants  []string     `json:"participants"`
	KeyPoints     []string     `json:"key_points"`
	Commitments   []Commitment `json:"commitments"`
	Sentiment     Sentiment    `json:"sentiment"`
	TranscriptURL string       `json:"transcript_url"`
	VideoURL      string       `json:"video_url,omitempty"`
}

// Permit is the list view of an environmental permit.
type Permit struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Expiry      string `json:"expiry"`
	ImpactLevel string `json:"impact_level"`
}

// Place is a named location with coordinates.
type Place struct {
	Name      string  `json:"name"`
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MonitoredParameter is a discharge limit and the applicant's expected value.
type MonitoredParameter struct {
	Parameter string `json:"parameter"`
	Limit     string `json:"limit"`
	Expected  string `json:"expected"`
}

// PermitDetail is the full record of one permit.
type PermitDetail struct {
	ID                  string               `json:"id"`
	Title               string               `json:"title"`
	Type                string               `json:"type"`
	Subtype             string               `json:"subtype,omitempty"`
	Status              string               `json:"status"`
	Applicant           string               `json:"applicant"`
	ApplicationDate     string               `json:"application_date"`
	IssueDate           *string              `json:"issue_date"`
	ExpiryDate          string               `json:"expiry_date"`
	Location            Place                `json:"location"`
	ImpactLevel         string               `json:"impact_level"`
	ImpactAssessment    map[string]string    `json:"impact_assessment,omitempty"`
	MonitoredParameters []MonitoredParameter `json:"monitored_parameters"`
	Concerns            []string             `json:"concerns"`
	MitigationMeasures  []string             `json:"mitigation_measures"`
	RelatedPermits      []string             `json:"related_permits"`
	DocumentsURL        string               `json:"documents_url"`
}

// Sensor is the inventory view of a field sensor.
type Sensor struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Status   string `json:"status"`
	Reading  string `json:"reading"`
	Updated  string `json:"updated"`
}

// SensorDetail is the full record of one sensor.
type SensorDetail struct {
	ID             string                        `json:"id"`
	Name           string                        `json:"name"`
	Type           string                        `json:"type"`
	Location       Place                         `json:"location"`
	Status         string                        `json:"status"`
	CurrentReading CurrentReading                `json:"current_reading"`
	Thresholds     map[string]map[string]float64 `json:"thresholds,omitempty"`
	Maintenance    Maintenance                   `json:"maintenance"`
	InstalledDate  string                        `json:"installed_date"`
	HistoryURL     string                        `json:"data_history_url"`
}

// CurrentReading is the most recent measurement of a sensor.
type CurrentReading struct {
	Timestamp  string             `json:"timestamp"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
	Assessment string             `json:"assessment"`
}

// Maintenance is the calibration schedule of a sensor.
type Maintenance struct {
	LastCalibration string `json:"last_calibration"`
	NextScheduled   string `json:"next_scheduled"`
	Battery         string `json:"battery"`
}

// Insight is a curated finding from meetings, permits, sensors or imagery.
type Insight struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Source  string `json:"source"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

// TrendPoint is one monthly sustainability score.
type TrendPoint struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

// MeetingMarker places a meeting on the map.
type MeetingMarker struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Type      string  `json:"type"`
	Date      string  `json:"date"`
}

// Marker places a permit or sensor on the map.
type Marker struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	ImpactLevel string  `json:"impact_level,omitempty"`
}

// Area is a monitored region drawn as a polygon of [lat, lng] pairs.
type Area struct {
	ID      string       `json:"id"`
	Title   string       `json:"title"`
	Type    string       `json:"type"`
	Status  string       `json:"status"`
	Polygon [][2]float64 `json:"polygon"`
}

// MarkerLayers is every map layer.
type MarkerLayers struct {
	Meetings        []MeetingMarker `json:"meetings"`
	Permits         []Marker        `json:"permits"`
	Sensors         []Marker        `json:"sensors"`
	AreasOfInterest []Area          `json:"areas_of_interest"`
}
