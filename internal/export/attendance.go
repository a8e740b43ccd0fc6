// Package export renders portal data as spreadsheet workbooks.
package export

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/bpo-portal/internal/application"
)

// AttendanceSheet is the worksheet name used for attendance exports.
const AttendanceSheet = "Attendance"

// ContentType is the media type of XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var attendanceHeaders = []string{"Username", "Team", "Date", "Time In", "Time Out", "Hours Worked", "IP Address"}

// AttendanceFilename returns the download name for an export covering from..to.
func AttendanceFilename(from, to time.Time) string {
	return fmt.Sprintf("attendance_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
}

// WriteAttendance writes entries as an XLSX workbook to w. Times are shown in
// location; open sessions leave Time Out and Hours Worked blank.
func WriteAttendance(w io.Writer, entries []application.AttendanceEntry, location *time.Location) error {
	f, err := attendanceWorkbook(entries, location)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	if _, err := io.Copy(w, buf); err != nil {
		return fmt.Errorf("export: copy workbook: %w", err)
	}
	return nil
}

func attendanceWorkbook(entries []application.AttendanceEntry, location *time.Location) (*excelize.File, error) {
	if location == nil {
		location = time.UTC
	}

	f := excelize.NewFile()
	idx, err := f.NewSheet(AttendanceSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("export: drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: header style: %w", err)
	}

	// 0.00
	hoursStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("export: hours style: %w", err)
	}

	for i, header := range attendanceHeaders {
		f.SetCellValue(AttendanceSheet, cell(i+1, 1), header)
	}
	f.SetCellStyle(AttendanceSheet, cell(1, 1), cell(len(attendanceHeaders), 1), headerStyle)
	f.SetColWidth(AttendanceSheet, "A", "B", 16)
	f.SetColWidth(AttendanceSheet, "C", "E", 20)
	f.SetColWidth(AttendanceSheet, "F", "G", 16)

	for i, entry := range entries {
		row := i + 2
		record := entry.Record
		team := ""
		if entry.Team != nil {
			team = *entry.Team
		}
		ip := ""
		if record.IPAddress != nil {
			ip = *record.IPAddress
		}

		f.SetCellValue(AttendanceSheet, cell(1, row), entry.Username)
		f.SetCellValue(AttendanceSheet, cell(2, row), team)
		f.SetCellValue(AttendanceSheet, cell(3, row), record.Date.Format(time.DateOnly))
		f.SetCellValue(AttendanceSheet, cell(4, row), record.TimeIn.In(location).Format(time.DateTime))
		if record.TimeOut != nil {
			f.SetCellValue(AttendanceSheet, cell(5, row), record.TimeOut.In(location).Format(time.DateTime))
			f.SetCellFloat(AttendanceSheet, cell(6, row), record.Worked().Hours(), 2, 64)
			f.SetCellStyle(AttendanceSheet, cell(6, row), cell(6, row), hoursStyle)
		}
		f.SetCellValue(AttendanceSheet, cell(7, row), ip)
	}

	return f, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
