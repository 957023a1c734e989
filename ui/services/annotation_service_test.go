package services

import (
	"testing"

	"hpoannotate/domain/core"
	"hpoannotate/internal/errors"
	"hpoannotate/internal/export"

	"github.com/stretchr/testify/assert"
)

func TestActionErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{core.ErrUnsupportedAction, errors.CodeUnsupportedAction, 400},
		{core.ErrNoAnnotator, errors.CodeSessionNotActive, 409},
		{core.ErrNoData, errors.CodeSessionNotActive, 409},
		{core.ErrNotFound, errors.CodeInternalError, 500},
	}

	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			err := actionError("next", test.err)
			assert.Equal(t, test.code, errors.GetCode(err))
			assert.Equal(t, test.status, ErrorStatus(err))
			assert.ErrorIs(t, err, test.err)
		})
	}
}

func TestContentDisposition(t *testing.T) {
	a := &export.Artifact{Filename: "hpo_annotations_alice_20240301_094512.csv"}
	assert.Equal(t, `attachment; filename="hpo_annotations_alice_20240301_094512.csv"`, ContentDisposition(a))
}

func TestDownloadLinkNil(t *testing.T) {
	assert.Nil(t, downloadLink(nil))
}
