package model

import "strings"

// JobStatus is the server-reported state of a search job
type JobStatus int

const (
	JobPending JobStatus = iota
	JobRunning
	JobComplete
	JobFailed
)

// String returns the wire representation of the status
func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobComplete:
		return "complete"
	case JobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further status changes are expected
func (s JobStatus) Terminal() bool {
	return s == JobComplete || s == JobFailed
}

// ParseJobStatus converts a wire status. Unrecognised values are treated as
// running so that new intermediate states never abort a poll.
func ParseJobStatus(s string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "queued":
		return JobPending
	case "running", "processing":
		return JobRunning
	case "complete", "completed":
		return JobComplete
	case "failed", "error":
		return JobFailed
	default:
		return JobRunning
	}
}

// JobState is the mutable view of a search job while it is being polled
type JobState struct {
	Status   JobStatus
	Progress int
	Found    int
}
