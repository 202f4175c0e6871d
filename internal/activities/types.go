package activities

// PublishResult contains the result of publishing a verdict
type PublishResult struct {
	Success bool
	Targets int
	Message string
}
