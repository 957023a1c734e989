package ports

import (
	"io"

	"hpoannotate/domain/annotation"
)

// TableWriter serializes an annotation table in one file format
type TableWriter interface {
	Format() string
	Extension() string
	ContentType() string
	Write(w io.Writer, rows []annotation.Judgment) error
}
