package robots

import "net/url"

type DecisionReason string

const (
	AllowedByRobots    DecisionReason = "allowed_by_robots"
	DisallowedByRobots DecisionReason = "disallowed_by_robots"
	AllowedNoRules     DecisionReason = "allowed_no_rules"
	AllowedFetchFailed DecisionReason = "allowed_fetch_failed"
)

// Decision is the gate's answer for one URL. Disallow is a normal, terminal
// outcome, not an error.
type Decision struct {
	Url url.URL

	Allowed bool

	// Why this decision was made (for logging/debugging)
	Reason DecisionReason
}
