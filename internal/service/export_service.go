package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
	"github.com/moyeo-lab/cohort-api/pkg/export"
)

// ReportFormat enumerates supported roster report outputs.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// RosterReport is a rendered meeting roster ready to stream to the caller.
type RosterReport struct {
	Filename    string
	ContentType string
	Data        []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders per-meeting roster reports for admins. Reports are
// generated synchronously from live data; nothing is stored.
type ExportService struct {
	engagement *EngagementService
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(engagement *EngagementService, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{engagement: engagement, csv: csv, pdf: pdf, logger: logger}
}

var rosterReportHeaders = []string{"Student ID", "Full Name", "Attendance", "Homework"}

// RosterReport renders the meeting's roster with per-student attendance and
// homework state in the requested format.
func (s *ExportService) RosterReport(ctx context.Context, meetingID string, format ReportFormat) (*RosterReport, error) {
	meeting, rows, err := s.engagement.RosterStatus(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{Headers: rosterReportHeaders, Rows: make([]map[string]string, len(rows))}
	for i, row := range rows {
		attendance := row.AttendanceStatus
		if attendance == "" {
			attendance = "-"
		}
		homework := "missing"
		if row.HomeworkSubmitted {
			homework = "submitted"
		}
		dataset.Rows[i] = map[string]string{
			"Student ID": row.StudentID,
			"Full Name":  row.FullName,
			"Attendance": attendance,
			"Homework":   homework,
		}
	}

	base := fmt.Sprintf("roster_%s_%s_%d", strings.ToLower(meeting.Region), strings.ToLower(meeting.Level), meeting.SequenceNo)
	switch format {
	case ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &RosterReport{Filename: base + ".csv", ContentType: "text/csv", Data: data}, nil
	case ReportFormatPDF:
		title := fmt.Sprintf("%s %s #%d roster", meeting.Region, meeting.Level, meeting.SequenceNo)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &RosterReport{Filename: base + ".pdf", ContentType: "application/pdf", Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
