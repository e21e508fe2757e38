// Package summarize writes short meeting summaries with an OpenAI-compatible
// chat completions API. Without a key, or when the API call fails, it returns
// a canned summary chosen by keywords in the video title.
package summarize
