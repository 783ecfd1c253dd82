package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/ruwad-api/internal/dto"
	"github.com/noah-isme/ruwad-api/internal/models"
	appErrors "github.com/noah-isme/ruwad-api/pkg/errors"
	"github.com/noah-isme/ruwad-api/pkg/export"
)

type reportRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

var reportHeaders = []string{"rank", "id", "name", "stage", "class", "points"}

// ReportService builds behavior summary reports and renders them for download.
type ReportService struct {
	repo   statisticsRepository
	cache  *CacheService
	csv    reportRenderer
	pdf    reportRenderer
	logger *zap.Logger
	top    int
	now    func() time.Time
}

// NewReportService constructs a ReportService. Nil renderers fall back to the
// export package defaults.
func NewReportService(repo statisticsRepository, cache *CacheService, logger *zap.Logger, topStudents int, csv, pdf reportRenderer) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if topStudents <= 0 {
		topStudents = 10
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ReportService{repo: repo, cache: cache, csv: csv, pdf: pdf, logger: logger, top: topStudents, now: func() time.Time { return time.Now().UTC() }}
}

func reportCacheKey(stage string) string {
	if stage == "" {
		stage = filterAllStages
	}
	return "stats:report:" + stage
}

const filterAllStages = "all"

// BehaviorReport aggregates students and ledger events, optionally for one stage.
func (s *ReportService) BehaviorReport(ctx context.Context, stage string) (*dto.BehaviorReport, error) {
	stage = strings.TrimSpace(stage)
	if stage == filterAllStages {
		stage = ""
	}

	var cached dto.BehaviorReport
	if hit, err := s.cache.Get(ctx, reportCacheKey(stage), &cached); err == nil && hit {
		return &cached, nil
	}

	summary, err := s.repo.StudentSummary(ctx, stage)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to summarize students")
	}
	counts, err := s.repo.CountBehaviorsByType(ctx, stage)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count behaviors")
	}
	top, err := s.repo.TopStudents(ctx, stage, s.top)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load top students")
	}

	report := &dto.BehaviorReport{
		Stage:         stage,
		TotalStudents: summary.TotalStudents,
		AveragePoints: averagePoints(summary),
		TopStudents:   top,
		GeneratedAt:   s.now(),
	}
	for _, c := range counts {
		switch c.Type {
		case models.BehaviorPositive:
			report.PositiveBehaviors += c.Count
		case models.BehaviorNegative:
			report.NegativeBehaviors += c.Count
		}
	}

	// Only stages that have students get a cache entry.
	if stage == "" || summary.TotalStudents > 0 {
		_ = s.cache.Set(ctx, reportCacheKey(stage), report, 0)
	}
	return report, nil
}

// Render serializes a report as CSV or PDF.
func (s *ReportService) Render(report *dto.BehaviorReport, format dto.ReportFormat) (*dto.RenderedReport, error) {
	dataset := reportDataset(report)
	base := "behavior-report"
	if stage := filenameSafe(report.Stage); stage != "" {
		base += "-" + stage
	}
	base += "-" + report.GeneratedAt.Format("20060102")

	var (
		body        []byte
		err         error
		contentType string
	)
	switch format {
	case dto.ReportFormatCSV:
		body, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case dto.ReportFormatPDF:
		body, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render report")
	}

	return &dto.RenderedReport{
		Filename:    fmt.Sprintf("%s.%s", base, format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func filenameSafe(value string) string {
	return strings.Trim(strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, value), "-")
}

func reportDataset(report *dto.BehaviorReport) export.Dataset {
	stage := report.Stage
	if stage == "" {
		stage = filterAllStages
	}
	rows := make([]map[string]string, 0, len(report.TopStudents))
	for i, st := range report.TopStudents {
		rows = append(rows, map[string]string{
			"rank":   strconv.Itoa(i + 1),
			"id":     st.ID,
			"name":   st.Name,
			"stage":  st.Stage,
			"class":  st.ClassName,
			"points": strconv.Itoa(st.Points),
		})
	}
	return export.Dataset{
		Title: "Behavior report",
		Summary: []export.Field{
			{Label: "Stage", Value: stage},
			{Label: "Total students", Value: strconv.Itoa(report.TotalStudents)},
			{Label: "Positive behaviors", Value: strconv.Itoa(report.PositiveBehaviors)},
			{Label: "Negative behaviors", Value: strconv.Itoa(report.NegativeBehaviors)},
			{Label: "Average points", Value: strconv.FormatFloat(report.AveragePoints, 'f', 2, 64)},
			{Label: "Generated at", Value: report.GeneratedAt.Format(time.RFC3339)},
		},
		Headers: reportHeaders,
		Rows:    rows,
	}
}
