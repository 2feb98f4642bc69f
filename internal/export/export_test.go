package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
)

func sampleRecords() []model.HostRecord {
	return []model.HostRecord{
		{
			IP: "203.0.113.1", Domain: "one.herokuapp.com", Provider: "heroku",
			Country: "SA", StatusCode: 200, Title: "Welcome",
			DiscoveredAt: time.Date(2026, 8, 28, 12, 30, 0, 0, time.UTC),
		},
		{
			IP: "203.0.113.2", Provider: "aws", Country: "DE", StatusCode: 0,
		},
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "cloud-hosts-20260828.csv", Filename("csv", now))
	assert.Equal(t, "cloud-hosts-20260828.xlsx", Filename("xlsx", now))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, provider.Default(), sampleRecords()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}),
		"CSV must start with a UTF-8 BOM")

	rows, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, columns, rows[0])

	// Domain identity and registry display name on the first row.
	assert.Equal(t, "one.herokuapp.com", rows[1][0])
	assert.Equal(t, "Heroku", rows[1][2])
	assert.Equal(t, "200", rows[1][4])
	assert.Equal(t, "2026-08-28 12:30", rows[1][6])

	// IP-only host falls back to its address as identity.
	assert.Equal(t, "203.0.113.2", rows[2][0])
	assert.Equal(t, "Amazon AWS", rows[2][2])
	assert.Equal(t, "0", rows[2][4])
}

func TestWriteCSVUnknownProviderKeptVerbatim(t *testing.T) {
	var buf bytes.Buffer
	records := []model.HostRecord{{IP: "198.51.100.1", Provider: "mystery"}}

	require.NoError(t, WriteCSV(&buf, provider.Default(), records))

	content := buf.String()
	assert.True(t, strings.Contains(content, "mystery"))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, provider.Default(), sampleRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Hosts")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, "one.herokuapp.com", rows[1][0])
	assert.Equal(t, "Heroku", rows[1][2])
}
