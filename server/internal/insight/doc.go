// Package insight turns fresh readings into insights using configured rules,
// and delivers each fired insight to Slack, Teams or generic HTTP webhooks.
package insight
