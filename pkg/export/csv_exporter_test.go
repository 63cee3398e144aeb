package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"Matric No", "Approved Class"},
		Rows: []map[string]string{
			{"Matric No": "ABC/12/0001", "Approved Class": "Second Class Upper"},
			{"Matric No": "ABC/12/0002"},
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, []string{"Matric No", "Approved Class"}, records[0])
	require.Equal(t, []string{"ABC/12/0001", "Second Class Upper"}, records[1])
	require.Equal(t, []string{"ABC/12/0002", ""}, records[2], "missing cells render empty")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
