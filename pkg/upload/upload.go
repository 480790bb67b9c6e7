package upload

import "context"

// Uploader uploads a local report outputs directory to remote storage.
type Uploader interface {
	// Preflight verifies that the remote storage is reachable and writable.
	// Writes a small test object to the bucket to fail fast on misconfiguration.
	Preflight(ctx context.Context) error

	// Upload uploads all files in localDir under the configured remote
	// prefix for the given workflow ID.
	Upload(ctx context.Context, localDir, workflowID string) error
}
