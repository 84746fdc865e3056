package scheduler

import (
	"context"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/service"
	"github.com/foodmarket/provision-backend/internal/storage"
	"github.com/foodmarket/provision-backend/pkg/logger"
	"github.com/foodmarket/provision-backend/pkg/util"
	"github.com/robfig/cron/v3"
)

// HoldSweeper removes held carts saved before cutoff.
type HoldSweeper interface {
	Sweep(ctx context.Context, cutoff time.Time) (int, error)
}

// ReportUploader archives a rendered report.
type ReportUploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// SessionPruner drops in-memory sessions nobody is using.
type SessionPruner interface {
	PruneIdle() int
}

type Options struct {
	HoldSweepSpec string
	ReportSpec    string
	HoldMaxAge    time.Duration
	Location      *time.Location
	// Sessions is pruned by the nightly sweep when set.
	Sessions SessionPruner
}

// ProvisionScheduler 보류 장바구니 정리 및 분기 보고서 보관 스케줄러
type ProvisionScheduler struct {
	cron     *cron.Cron
	holds    HoldSweeper
	reports  service.ReportService
	uploader ReportUploader
	opts     Options
	now      func() time.Time
}

// NewProvisionScheduler builds the scheduler. A nil uploader disables the
// quarterly report job.
func NewProvisionScheduler(holds HoldSweeper, reports service.ReportService, uploader ReportUploader, opts Options) *ProvisionScheduler {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &ProvisionScheduler{
		cron:     cron.New(cron.WithLocation(opts.Location)),
		holds:    holds,
		reports:  reports,
		uploader: uploader,
		opts:     opts,
		now:      time.Now,
	}
}

// Start 스케줄러 시작
func (s *ProvisionScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.opts.HoldSweepSpec, func() {
		s.SweepHolds(context.Background())
	}); err != nil {
		logger.Error("Failed to add cron job for hold sweep", err, map[string]interface{}{
			"spec": s.opts.HoldSweepSpec,
		})
		return err
	}

	if s.uploader != nil {
		if _, err := s.cron.AddFunc(s.opts.ReportSpec, func() {
			s.ArchivePreviousQuarter(context.Background())
		}); err != nil {
			logger.Error("Failed to add cron job for quarter report", err, map[string]interface{}{
				"spec": s.opts.ReportSpec,
			})
			return err
		}
	}

	s.cron.Start()
	logger.Info("Provision scheduler started", map[string]interface{}{
		"hold_sweep":     s.opts.HoldSweepSpec,
		"quarter_report": s.uploader != nil,
		"timezone":       s.opts.Location.String(),
	})
	return nil
}

// Stop 스케줄러 중지
func (s *ProvisionScheduler) Stop() {
	logger.Info("Stopping provision scheduler...", nil)
	<-s.cron.Stop().Done()
	logger.Info("Provision scheduler stopped", nil)
}

// SweepHolds deletes holds older than HoldMaxAge and prunes idle sessions.
func (s *ProvisionScheduler) SweepHolds(ctx context.Context) int {
	if s.opts.Sessions != nil {
		s.opts.Sessions.PruneIdle()
	}

	cutoff := s.now().Add(-s.opts.HoldMaxAge)
	removed, err := s.holds.Sweep(ctx, cutoff)
	if err != nil {
		logger.Error("Scheduled hold sweep failed", err, map[string]interface{}{
			"removed": removed,
		})
		return removed
	}
	logger.Info("Scheduled hold sweep completed", map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff,
	})
	return removed
}

// ArchivePreviousQuarter renders the quarter that just ended and uploads it.
func (s *ProvisionScheduler) ArchivePreviousQuarter(ctx context.Context) (string, error) {
	quarter := util.PreviousQuarterKey(s.now().In(s.opts.Location))

	report, err := s.reports.ExportQuarter(ctx, quarter)
	if err != nil {
		logger.Error("Failed to render quarter report", err, map[string]interface{}{
			"quarter": quarter,
		})
		return "", err
	}

	url, err := s.uploader.Upload(ctx, storage.ReportKey(quarter), report.Data, service.XLSXMimeType)
	if err != nil {
		logger.Error("Failed to archive quarter report", err, map[string]interface{}{
			"quarter": quarter,
		})
		return "", err
	}

	logger.Info("Quarter report archived", map[string]interface{}{
		"quarter": quarter,
		"rows":    report.Rows,
		"url":     url,
	})
	return url, nil
}
