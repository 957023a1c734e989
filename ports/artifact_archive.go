package ports

import (
	"context"
)

// ArtifactArchive keeps a server-side copy of exported files
type ArtifactArchive interface {
	// Store writes payload under filename and returns where it was written
	Store(ctx context.Context, filename string, payload []byte) (string, error)
}
