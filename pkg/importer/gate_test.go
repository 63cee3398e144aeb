package importer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUploadGateAcceptsDocx(t *testing.T) {
	gate := NewUploadGate(0)
	require.NoError(t, gate.Validate("results.docx", 1024))
}

func TestUploadGateExtensionIsCaseInsensitive(t *testing.T) {
	gate := NewUploadGate(0)
	require.NoError(t, gate.Validate("RESULTS.DOCX", 1024))
	require.NoError(t, gate.Validate("Results.Docx", 1024))
}

func TestUploadGateRejectsWrongExtension(t *testing.T) {
	gate := NewUploadGate(0)

	for _, name := range []string{"results.pdf", "results.doc", "results", "docx"} {
		err := gate.Validate(name, 1024)
		require.Error(t, err, name)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
	}
}

func TestUploadGateRejectsEmptyFile(t *testing.T) {
	gate := NewUploadGate(0)
	err := gate.Validate("results.docx", 0)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "file is empty", vErr.Reason)
}

func TestUploadGateRejectsOversizedFile(t *testing.T) {
	gate := NewUploadGate(0)
	require.NoError(t, gate.Validate("results.docx", DefaultMaxFileSize))

	err := gate.Validate("results.docx", DefaultMaxFileSize+1)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Contains(t, vErr.Reason, "10 MB")
}

func TestUploadGateCustomLimit(t *testing.T) {
	gate := NewUploadGate(1024)
	require.NoError(t, gate.Validate("small.docx", 1024))
	require.Error(t, gate.Validate("big.docx", 1025))
}
