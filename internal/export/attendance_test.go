package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/bpo-portal/internal/application"
)

func TestWriteAttendance(t *testing.T) {
	t.Parallel()

	manila := time.FixedZone("PHT", 8*60*60)
	timeIn := time.Date(2024, 5, 1, 15, 50, 0, 0, time.UTC)
	timeOut := timeIn.Add(8*time.Hour + 30*time.Minute)
	team := "IT"
	ip := "10.0.0.8"

	entries := []application.AttendanceEntry{
		{
			Username: "maria",
			Team:     &team,
			Record: application.AttendanceRecord{
				ID:        1,
				Date:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
				TimeIn:    timeIn,
				TimeOut:   &timeOut,
				IPAddress: &ip,
			},
		},
		{
			Username: "juan",
			Record: application.AttendanceRecord{
				ID:     2,
				Date:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
				TimeIn: timeIn.Add(24 * time.Hour),
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, entries, manila))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{AttendanceSheet}, f.GetSheetList())

	rows, err := f.GetRows(AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, attendanceHeaders, rows[0])
	require.Equal(t, []string{"maria", "IT", "2024-05-01", "2024-05-01 23:50:00", "2024-05-02 08:20:00", "8.50", "10.0.0.8"}, rows[1])

	require.Equal(t, "juan", rows[2][0])
	require.Equal(t, "", rows[2][1])
	require.Equal(t, "2024-05-02 23:50:00", rows[2][3])
	open, err := f.GetCellValue(AttendanceSheet, "E3")
	require.NoError(t, err)
	require.Empty(t, open)
}

func TestAttendanceFilename(t *testing.T) {
	t.Parallel()

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	require.Equal(t, "attendance_20240501_20240531.xlsx", AttendanceFilename(from, to))
}
