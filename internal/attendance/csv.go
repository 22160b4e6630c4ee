package attendance

import (
	"encoding/csv"
	"io"
	"time"

	"dziennik-obecnosci/internal/models"
)

// WriteCSV streams attendance records as CSV, columns mirroring the record
// fields. Used by the download endpoints.
func WriteCSV(w io.Writer, records []models.AttendanceRecord) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"Student Name", "Student ID", "Session ID", "Marked At"}); err != nil {
		return err
	}

	for _, record := range records {
		row := []string{
			record.StudentName,
			record.StudentID,
			record.SessionID.String(),
			record.MarkedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
