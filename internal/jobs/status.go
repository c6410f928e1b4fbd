package jobs

// State is the lifecycle of a background job slot. These values are
// serialized verbatim in status responses.
//
// Centralizing them here avoids scattering string literals like
// "running" or "completed" across packages.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Kind identifies what a job slot is doing.
type Kind string

const (
	KindCrawl Kind = "crawl"
	KindEmbed Kind = "embed"
)
