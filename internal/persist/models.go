package persist

import "time"

// Run is one recorded pipeline run.
type Run struct {
	ID            string
	Flavor        string
	Project       string
	TaskPreview   string
	Degraded      bool
	Turns         int
	ArtifactCount int
	Failure       string
	CreatedAt     time.Time
}

// previewLimit caps how much of the task text is stored with a run.
const previewLimit = 500

// TaskPreviewOf truncates task text for storage.
func TaskPreviewOf(task string) string {
	if len(task) <= previewLimit {
		return task
	}
	return task[:previewLimit] + "..."
}
