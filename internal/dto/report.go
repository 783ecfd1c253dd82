package dto

// ReportFormat selects the rendering of a report.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ReportQuery binds report filters from the query string.
type ReportQuery struct {
	Stage  string       `form:"stage"`
	Format ReportFormat `form:"format"`
}

// RenderedReport is a report serialized for download.
type RenderedReport struct {
	Filename    string
	ContentType string
	Body        []byte
}
