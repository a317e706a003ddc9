package model

// Job kinds
type JobKind string

const (
	JobKindPreview  JobKind = "preview"
	JobKindGenerate JobKind = "generate"
)

// Job status
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Terminal reports whether a status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Hardware acceleration modes for the video encoder
type HWAccelMode string

const (
	HWAccelNone   HWAccelMode = "none"
	HWAccelNvidia HWAccelMode = "nvidia"
	HWAccelAMD    HWAccelMode = "amd"
	HWAccelIntel  HWAccelMode = "intel"
)

var ValidHWAccelModes = []HWAccelMode{
	HWAccelNone, HWAccelNvidia, HWAccelAMD, HWAccelIntel,
}
