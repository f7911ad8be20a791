package constants

// JobStatus is the lifecycle state of an asynchronous report job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "QUEUED"    // accepted, waiting for a worker
	JobStatusRunning   JobStatus = "RUNNING"   // model call / document build in progress
	JobStatusSucceeded JobStatus = "SUCCEEDED" // report ready for download
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
	JobStatusCanceled  JobStatus = "CANCELED"  // canceled by the caller or shutdown
)

// Busy reports whether the job has not reached a terminal state yet.
func (s JobStatus) Busy() bool {
	return s == JobStatusQueued || s == JobStatusRunning
}

// Terminal reports whether the job will not change state again.
func (s JobStatus) Terminal() bool {
	return !s.Busy()
}
