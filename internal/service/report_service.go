package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
	"github.com/pimacad/academico-api/pkg/export"
	"github.com/pimacad/academico-api/pkg/jobs"
)

type reportClassRepository interface {
	Get(ctx context.Context, actor authz.Actor, code string) (*models.Class, error)
}

type reportStudentRepository interface {
	Get(ctx context.Context, actor authz.Actor, ra string) (*models.Student, error)
}

type reportActivityRepository interface {
	ListByClass(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error)
}

type reportFileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Sign(jobID, name string) (string, time.Time, error)
	Verify(token string) (jobID, name string, err error)
}

type tableRenderer interface {
	Render(t export.Table) ([]byte, error)
}

// ReportConfig tunes report generation and export.
type ReportConfig struct {
	APIPrefix         string
	WorkerConcurrency int
	WorkerRetries     int
}

// ReportService builds the class panorama and runs asynchronous CSV/PDF
// exports of it. Export jobs and their download tokens live only in
// memory.
type ReportService struct {
	classes    reportClassRepository
	students   reportStudentRepository
	activities reportActivityRepository
	storage    reportFileStorage
	signer     downloadSigner
	csv        tableRenderer
	pdf        tableRenderer
	logger     *zap.Logger
	cfg        ReportConfig

	queue *jobs.Queue

	mu      sync.RWMutex
	exports map[string]*models.ReportJob
}

type exportPayload struct {
	ClassCode string
	Format    models.ReportFormat
	Actor     authz.Actor
}

// NewReportService constructs a ReportService and its export queue. Call
// Start before requesting exports and Stop on shutdown.
func NewReportService(classes reportClassRepository, students reportStudentRepository, activities reportActivityRepository, storage reportFileStorage, signer downloadSigner, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ReportService{
		classes:    classes,
		students:   students,
		activities: activities,
		storage:    storage,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		logger:     logger,
		cfg:        cfg,
		exports:    map[string]*models.ReportJob{},
	}
	s.queue = jobs.NewQueue("report-exports", s.handleExport, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the export workers.
func (s *ReportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the export workers.
func (s *ReportService) Stop() {
	s.queue.Stop()
}

// BuildClassReport assembles the panorama for one class: per-activity
// delivery progress plus the grade distribution of its students.
func (s *ReportService) BuildClassReport(ctx context.Context, actor authz.Actor, classCode string) (*models.ClassReport, error) {
	if d := authz.Check(actor.Role, authz.ActionReportView); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}

	class, err := s.classes.Get(ctx, actor, classCode)
	if err != nil {
		return nil, err
	}
	activities, err := s.activities.ListByClass(ctx, actor, classCode)
	if err != nil {
		return nil, err
	}

	report := &models.ClassReport{
		ClassCode:     class.Code,
		ClassName:     class.Name,
		TotalStudents: len(class.Students),
		Activities:    make([]models.ActivityPanorama, 0, len(activities)),
		GeneratedAt:   time.Now().UTC(),
	}

	for _, activity := range activities {
		panorama := models.ActivityPanorama{
			ActivityID: activity.ID,
			Title:      activity.Title,
			DueDate:    activity.DueDate,
		}
		gradeSum, graded := 0.0, 0
		for _, ra := range class.Students {
			delivery, ok := activity.Deliveries[ra]
			if !ok {
				panorama.Pending++
				continue
			}
			panorama.Delivered++
			if delivery.Grade != nil {
				gradeSum += *delivery.Grade
				graded++
			}
		}
		if total := panorama.Delivered + panorama.Pending; total > 0 {
			panorama.DeliveredPct = math.Round(float64(panorama.Delivered)/float64(total)*10000) / 100
		}
		if graded > 0 {
			mean := math.Round(gradeSum/float64(graded)*100) / 100
			panorama.GradeMean = &mean
		}
		report.Activities = append(report.Activities, panorama)
	}

	mediaSum, withMedia := 0.0, 0
	for _, ra := range class.Students {
		student, err := s.students.Get(ctx, actor, ra)
		if err != nil {
			s.logger.Warn("skipping unreadable student record", zap.String("ra", ra), zap.Error(err))
			continue
		}
		view := student.Grades()
		if view.Media == nil {
			continue
		}
		bucket := int(*view.Media)
		if bucket > 10 {
			bucket = 10
		}
		if bucket < 0 {
			bucket = 0
		}
		report.GradeHistogram[bucket]++
		mediaSum += *view.Media
		withMedia++
	}
	if withMedia > 0 {
		avg := math.Round(mediaSum/float64(withMedia)*100) / 100
		report.ClassAverage = &avg
	}

	return report, nil
}

// RequestExport queues an asynchronous export of the class report and
// returns the pending job.
func (s *ReportService) RequestExport(ctx context.Context, actor authz.Actor, classCode string, format models.ReportFormat) (*models.ReportJob, error) {
	if d := authz.Check(actor.Role, authz.ActionReportExport); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if _, err := s.classes.Get(ctx, actor, classCode); err != nil {
		return nil, err
	}

	job := &models.ReportJob{
		ID:          uuid.NewString(),
		ClassCode:   classCode,
		Format:      format,
		Status:      models.ReportJobPending,
		RequestedBy: actor.Username,
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.exports[job.ID] = job
	s.mu.Unlock()

	err := s.queue.Enqueue(jobs.Task{
		ID:      job.ID,
		Kind:    "class_report",
		Payload: exportPayload{ClassCode: classCode, Format: format, Actor: actor},
	})
	if err != nil {
		s.failJob(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}

	return s.jobCopy(job.ID), nil
}

// ExportJob returns the current state of an export job.
func (s *ReportService) ExportJob(ctx context.Context, actor authz.Actor, jobID string) (*models.ReportJob, error) {
	if d := authz.Check(actor.Role, authz.ActionReportView); !d.Allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, d.Reason)
	}
	job := s.jobCopy(jobID)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "")
	}
	return job, nil
}

// OpenDownload verifies the signed token and opens the stored file.
func (s *ReportService) OpenDownload(token string) (*os.File, error) {
	_, name, err := s.signer.Verify(token)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download not available")
	}
	f, err := s.storage.Open(name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download not available")
	}
	return f, nil
}

// Cleanup removes stored exports older than the TTL.
func (s *ReportService) Cleanup(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ReportService) handleExport(ctx context.Context, task jobs.Task) error {
	payload, ok := task.Payload.(exportPayload)
	if !ok {
		s.failJob(task.ID, fmt.Errorf("unexpected payload %T", task.Payload))
		return nil
	}

	report, err := s.BuildClassReport(ctx, payload.Actor, payload.ClassCode)
	if err != nil {
		s.failJob(task.ID, err)
		return err
	}

	table := buildReportTable(report)
	var data []byte
	switch payload.Format {
	case models.ReportFormatCSV:
		data, err = s.csv.Render(table)
	case models.ReportFormatPDF:
		data, err = s.pdf.Render(table)
	default:
		err = fmt.Errorf("unsupported format %q", payload.Format)
	}
	if err != nil {
		s.failJob(task.ID, err)
		return err
	}

	name := fmt.Sprintf("panorama_%s_%s.%s",
		sanitizeFileName(payload.ClassCode),
		time.Now().UTC().Format("20060102_150405"),
		payload.Format)
	stored, err := s.storage.Save(name, data)
	if err != nil {
		s.failJob(task.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Sign(task.ID, stored)
	if err != nil {
		s.failJob(task.ID, err)
		return err
	}

	url := fmt.Sprintf("%s/relatorios/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)

	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.exports[task.ID]; ok {
		job.Status = models.ReportJobCompleted
		job.DownloadURL = url
		job.ExpiresAt = &expiresAt
		job.CompletedAt = &now
	}
	s.mu.Unlock()

	s.logger.Info("report export completed",
		zap.String("job_id", task.ID),
		zap.String("class", payload.ClassCode),
		zap.String("format", string(payload.Format)))
	return nil
}

func (s *ReportService) failJob(jobID string, err error) {
	now := time.Now().UTC()
	s.mu.Lock()
	if job, ok := s.exports[jobID]; ok {
		job.Status = models.ReportJobFailed
		job.Error = err.Error()
		job.CompletedAt = &now
	}
	s.mu.Unlock()
}

func (s *ReportService) jobCopy(jobID string) *models.ReportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.exports[jobID]
	if !ok {
		return nil
	}
	cp := *job
	return &cp
}

func buildReportTable(report *models.ClassReport) export.Table {
	summary := []string{
		fmt.Sprintf("Turma: %s (%s)", report.ClassName, report.ClassCode),
		fmt.Sprintf("Total de alunos: %d", report.TotalStudents),
	}
	if report.ClassAverage != nil {
		summary = append(summary, fmt.Sprintf("Média geral: %.2f", *report.ClassAverage))
	}

	rows := make([][]string, 0, len(report.Activities))
	for _, a := range report.Activities {
		mean := "-"
		if a.GradeMean != nil {
			mean = fmt.Sprintf("%.2f", *a.GradeMean)
		}
		rows = append(rows, []string{
			a.Title,
			a.DueDate,
			fmt.Sprintf("%d", a.Delivered),
			fmt.Sprintf("%d", a.Pending),
			fmt.Sprintf("%.1f%%", a.DeliveredPct),
			mean,
		})
	}

	return export.Table{
		Title:   fmt.Sprintf("Panorama da turma %s", report.ClassCode),
		Summary: summary,
		Columns: []string{"Atividade", "Entrega", "Entregues", "Pendentes", "% Entregue", "Média"},
		Rows:    rows,
	}
}

func sanitizeFileName(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	out := replacer.Replace(raw)
	if len(out) > 64 {
		out = out[:64]
	}
	return out
}
