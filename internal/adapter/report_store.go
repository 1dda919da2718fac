package adapter

import (
	"context"
	"fmt"
	"log/slog"

	m "gooze.dev/pkg/mutorch/internal/model"
	"gopkg.in/yaml.v3"
)

// ReportFileName is the name of the report written into the reports directory.
const ReportFileName = "report.yaml"

// ReportStore persists and retrieves session reports.
type ReportStore interface {
	SaveReport(ctx context.Context, dir m.Path, report m.SessionReport) error
	LoadReport(ctx context.Context, dir m.Path) (m.SessionReport, error)
}

type reportStore struct {
	fs SourceFSAdapter
}

// NewReportStore constructs a ReportStore backed by the given filesystem adapter.
func NewReportStore(fs SourceFSAdapter) ReportStore {
	return &reportStore{fs: fs}
}

func (rs *reportStore) SaveReport(ctx context.Context, dir m.Path, report m.SessionReport) error {
	if err := rs.fs.MkdirAll(ctx, dir); err != nil {
		slog.Error("Failed to create reports directory", "dir", dir, "error", err)
		return fmt.Errorf("create reports directory: %w", err)
	}

	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	path := rs.fs.JoinPath(string(dir), ReportFileName)
	if err := rs.fs.WriteFile(ctx, path, data, 0o600); err != nil {
		slog.Error("Failed to write report", "path", path, "error", err)
		return fmt.Errorf("write report: %w", err)
	}

	slog.Info("Saved report", "path", path, "results", len(report.Results))

	return nil
}

func (rs *reportStore) LoadReport(ctx context.Context, dir m.Path) (m.SessionReport, error) {
	path := rs.fs.JoinPath(string(dir), ReportFileName)

	data, err := rs.fs.ReadFile(ctx, path)
	if err != nil {
		return m.SessionReport{}, fmt.Errorf("read report: %w", err)
	}

	var report m.SessionReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return m.SessionReport{}, fmt.Errorf("decode report %s: %w", path, err)
	}

	return report, nil
}
