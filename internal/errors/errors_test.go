package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := DatasetNotFound("./data/missing.csv", stderrors.New("no such file"))
	wrapped := Wrap(fmt.Errorf("load: %w", base), "failed to load dataset")

	assert.Equal(t, CodeDatasetNotFound, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "failed to load dataset")
	assert.Contains(t, wrapped.Error(), "no such file")
}

func TestWrapPlainError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := Wrap(stderrors.New("disk full"), "write failed")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{InvalidInput("bad action"), 400},
		{UnsupportedAction("yes", nil), 400},
		{NotFound("artifact"), 404},
		{SessionNotActive(nil), 409},
		{ExportFailed(stderrors.New("boom")), 500},
		{stderrors.New("plain"), 500},
	}

	for _, test := range tests {
		assert.Equal(t, test.status, HTTPStatus(test.err), test.err.Error())
	}
}
