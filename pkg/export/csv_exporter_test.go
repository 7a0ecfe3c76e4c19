package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRender(t *testing.T) {
	exporter := NewCSVExporter()

	payload, err := exporter.Render(Dataset{
		Headers: []string{"id", "name"},
		Rows: []map[string]string{
			{"id": "1", "name": "Acme"},
			{"id": "2", "name": "Beta, Inc"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "id,name\n1,Acme\n2,\"Beta, Inc\"\n", string(payload))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVParse(t *testing.T) {
	exporter := NewCSVExporter()

	dataset, err := exporter.Parse([]byte("id,name\n1,Acme\n2,Beta\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, dataset.Headers)
	require.Len(t, dataset.Rows, 2)
	assert.Equal(t, "Acme", dataset.Rows[0]["name"])
	assert.Equal(t, "2", dataset.Rows[1]["id"])
}

func TestCSVParseEmpty(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Parse(nil)
	assert.Error(t, err)
}

func TestCSVRoundTripMissingCells(t *testing.T) {
	exporter := NewCSVExporter()

	dataset, err := exporter.Parse([]byte("id,name,phone\n1,Acme,\n"))
	require.NoError(t, err)
	assert.Equal(t, "", dataset.Rows[0]["phone"])
}
