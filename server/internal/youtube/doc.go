// Package youtube extracts public meeting records from YouTube videos and
// searches for recent meeting recordings.
//
// With an API key, Client talks to the YouTube Data API v3 through
// google.golang.org/api/youtube/v3, paced by a rate limiter. Without a key,
// or when the API fails, it returns mock extractions and templated search
// results so the dashboard stays usable offline.
//
// Topic and meeting type detection are keyword heuristics over the title and
// description. IsLikelyPublicMeeting filters search results down to videos
// that look like recorded public meetings.
package youtube
