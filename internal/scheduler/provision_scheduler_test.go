package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/foodmarket/provision-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSweeper struct {
	cutoff  time.Time
	removed int
}

func (f *fakeSweeper) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	f.cutoff = cutoff
	return f.removed, nil
}

type fakeReports struct {
	quarter string
	err     error
}

func (f *fakeReports) ExportQuarter(_ context.Context, quarter string) (*service.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.quarter = quarter
	return &service.Report{Quarter: quarter, Rows: 3, Data: []byte("xlsx")}, nil
}

type fakeUploader struct {
	key         string
	contentType string
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	f.key = key
	f.contentType = contentType
	return "https://cdn.example.com/" + key, nil
}

var schedulerNow = time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

type countingPruner struct{ calls int }

func (p *countingPruner) PruneIdle() int {
	p.calls++
	return 0
}

func TestProvisionScheduler_SweepHolds(t *testing.T) {
	sweeper := &fakeSweeper{removed: 2}
	pruner := &countingPruner{}
	s := NewProvisionScheduler(sweeper, &fakeReports{}, nil, Options{HoldMaxAge: 72 * time.Hour, Sessions: pruner})
	s.now = func() time.Time { return schedulerNow }

	assert.Equal(t, 2, s.SweepHolds(context.Background()))
	assert.Equal(t, schedulerNow.Add(-72*time.Hour), sweeper.cutoff)
	assert.Equal(t, 1, pruner.calls)
}

func TestProvisionScheduler_ArchivePreviousQuarter(t *testing.T) {
	reports := &fakeReports{}
	uploader := &fakeUploader{}
	s := NewProvisionScheduler(&fakeSweeper{}, reports, uploader, Options{})
	s.now = func() time.Time { return schedulerNow }

	url, err := s.ArchivePreviousQuarter(context.Background())
	require.NoError(t, err)

	// 6월 1일은 2분기 시작이므로 직전 분기는 1분기
	assert.Equal(t, "2024-Q1", reports.quarter)
	assert.Equal(t, "reports/provisions-2024-Q1.xlsx", uploader.key)
	assert.Equal(t, service.XLSXMimeType, uploader.contentType)
	assert.Equal(t, "https://cdn.example.com/reports/provisions-2024-Q1.xlsx", url)
}

func TestProvisionScheduler_ArchiveRenderFailure(t *testing.T) {
	uploader := &fakeUploader{}
	s := NewProvisionScheduler(&fakeSweeper{}, &fakeReports{err: errors.New("db down")}, uploader, Options{})

	_, err := s.ArchivePreviousQuarter(context.Background())
	assert.Error(t, err)
	assert.Empty(t, uploader.key)
}

func TestProvisionScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewProvisionScheduler(&fakeSweeper{}, &fakeReports{}, nil, Options{HoldSweepSpec: "not a spec"})
	assert.Error(t, s.Start())
}
