package logging

// LogEntry represents a structured log record with fields particularly
// relevant to generational search runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Search-specific fields
	Generation  int    // Generation the event belongs to, -1 when outside a generation
	CandidateID string // Candidate being evaluated, if any

	// General structured data
	Fields map[string]interface{}
}
