package indexstore

import "time"

// Workflow is one indexed workflow report in the database.
type Workflow struct {
	ID         uint   `gorm:"primaryKey"`
	WorkflowID string `gorm:"not null;uniqueIndex"`

	// Denormalized result stats.
	JobsProcessed int
	TestsTotal    int
	TestsPassed   int
	TestsFailed   int
	FailureCount  int

	ProcessedAt   time.Time
	ReprocessedAt *time.Time
}
