package ports

import (
	"context"

	"hpoannotate/domain/annotation"
)

// DatasetReader loads the records presented for annotation
type DatasetReader interface {
	// Path identifies the source file in messages and logs
	Path() string

	// ReadRecords reads and validates every record, in file order
	ReadRecords(ctx context.Context) ([]annotation.Record, error)
}
