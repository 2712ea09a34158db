package uploader

import "context"

// Result identifies a stored binary and where clients can fetch it.
type Result struct {
	URL string
	ID  string
}

// Uploader persists binary content and returns a durable URL. Image-bearing
// pipeline steps treat upload failure as a degradation, not an abort, so
// implementations should fail fast rather than retry internally.
type Uploader interface {
	Upload(ctx context.Context, data []byte, name, folder string) (*Result, error)

	// Remove deletes a previously uploaded object. Used to reclaim assets
	// uploaded under a case id whose final persistence failed.
	Remove(ctx context.Context, id string) error
}
