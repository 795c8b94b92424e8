package models

import "time"

// Report export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether the format is supported.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// Report job lifecycle states.
type ReportJobStatus string

const (
	ReportJobPending   ReportJobStatus = "pending"
	ReportJobCompleted ReportJobStatus = "completed"
	ReportJobFailed    ReportJobStatus = "failed"
)

// ReportJob tracks one asynchronous export request. Jobs live only in
// memory; a restart discards them along with their download tokens.
type ReportJob struct {
	ID          string          `json:"id"`
	ClassCode   string          `json:"class_code"`
	Format      ReportFormat    `json:"format"`
	Status      ReportJobStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	DownloadURL string          `json:"download_url,omitempty"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	RequestedBy string          `json:"requested_by"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ActivityPanorama summarises delivery and grading progress for one
// activity of a class.
type ActivityPanorama struct {
	ActivityID   string   `json:"activity_id"`
	Title        string   `json:"title"`
	DueDate      string   `json:"due_date"`
	Delivered    int      `json:"delivered"`
	Pending      int      `json:"pending"`
	DeliveredPct float64  `json:"delivered_pct"`
	GradeMean    *float64 `json:"grade_mean,omitempty"`
}

// ClassReport is the consolidated class panorama: per-activity delivery
// progress plus the grade distribution of enrolled students.
type ClassReport struct {
	ClassCode     string             `json:"class_code"`
	ClassName     string             `json:"class_name"`
	TotalStudents int                `json:"total_students"`
	Activities    []ActivityPanorama `json:"activities"`

	// GradeHistogram bucket i counts students whose weighted average
	// truncates to i; bucket 10 holds exact tens.
	GradeHistogram [11]int   `json:"grade_histogram"`
	ClassAverage   *float64  `json:"class_average,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
}
