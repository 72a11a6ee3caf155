package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"course_id", "name"},
		Rows: []map[string]string{
			{"course_id": "CS101", "name": "Algorithms, Part I"},
			{"course_id": "CS102"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "course_id,name\nCS101,\"Algorithms, Part I\"\nCS102,\n", string(out))
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)

	_, err = NewCSVExporter().Render(Dataset{Headers: []string{"a", ""}})
	require.Error(t, err)
}
