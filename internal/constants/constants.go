// Package constants provides a centralized location for all configuration
// values and magic numbers used throughout the migration.
package constants

import "time"

// Migration defaults
const (
	// DefaultSentinelLabel marks every placeholder issue for later bulk lookup.
	DefaultSentinelLabel = "dummy import from bugzilla"

	// SentinelLabelColor is the color of the sentinel label.
	SentinelLabelColor = "efefef"

	// DefaultLabelSeparator joins product and component into a label name.
	DefaultLabelSeparator = "/"

	// DefaultLockReason is the GitHub lock reason for placeholder issues.
	// GitHub only accepts one of: off-topic, too heated, resolved, spam.
	DefaultLockReason = "too heated"

	// ImportedBodyFormat is the body of every placeholder issue. The argument
	// is the show_bug.cgi URL of the source record.
	ImportedBodyFormat = "This issue was imported from Bugzilla %s."

	// UnavailableTitleFormat is the title of a placeholder reserved for a
	// source id that no longer exists or cannot be read.
	UnavailableTitleFormat = "Bugzilla %d (unavailable)"

	// UntitledTitleFormat is the title of a placeholder whose source record
	// has a blank summary.
	UntitledTitleFormat = "Bugzilla %d"
)

// Destination hosts
const (
	HostGitHub = "github"
	HostGitLab = "gitlab"

	// DefaultGitLabURL is used when no GitLab base URL is configured.
	DefaultGitLabURL = "https://gitlab.com"

	// GitHubMaxLabelName is the longest label name GitHub accepts.
	GitHubMaxLabelName = 50
)

// HTTP and paging constants
const (
	// PageSize is the page size for label listings.
	PageSize = 100

	// HTTPTimeout bounds a single request to the source tracker.
	HTTPTimeout = 60 * time.Second

	// RetryMax is the number of retries for failed source tracker requests.
	RetryMax = 4
)

// Rate limiting constants
const (
	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// TUI update and display constants
const (
	// TruncationSuffixWidth is the width of the "..." suffix when truncating strings.
	TruncationSuffixWidth = 3

	// LogThrottlePercent is the interval (in percent) at which import
	// progress is logged when not using the TUI.
	LogThrottlePercent = 5
)
