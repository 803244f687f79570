package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"zeladoria/internal/store"
	"zeladoria/internal/triage"
)

// Catalogue is the category storage the job rewrites.
type Catalogue interface {
	ListCategories(ctx context.Context) ([]store.Category, error)
	FindOrCreateCategory(ctx context.Context, name string) (store.Category, error)
	RenameCategory(ctx context.Context, id int64, name string) error
	MergeCategory(ctx context.Context, fromID, intoID int64) (int64, error)
}

type Service struct {
	Store  Catalogue
	DryRun bool
	logger *zap.Logger
}

type Change struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Action   string `json:"action"`
	Requests int64  `json:"requests"`
}

type Report struct {
	Renamed       int      `json:"renamed"`
	Merged        int      `json:"merged"`
	RequestsMoved int64    `json:"requestsMoved"`
	Changes       []Change `json:"changes"`
}

func NewService(st Catalogue, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{Store: st, logger: logger}
}

// Run folds every non canonical category row into its canonical row.
// Rows whose key already matches the canonical one are renamed in place;
// all others are merged and their requests repointed.
func (s *Service) Run(ctx context.Context) (Report, error) {
	report := Report{Changes: []Change{}}
	if s == nil || s.Store == nil {
		return report, nil
	}

	categories, err := s.Store.ListCategories(ctx)
	if err != nil {
		return report, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		canonical := string(triage.ResolveCategory(c.Name))
		if c.Name == canonical {
			continue
		}

		if c.NormalizedName == triage.NormalizeCategoryName(canonical) {
			change := Change{From: c.Name, To: canonical, Action: "rename", Requests: c.RequestCount}
			if !s.DryRun {
				if err := s.Store.RenameCategory(ctx, c.ID, canonical); err != nil {
					return report, fmt.Errorf("rename category %d: %w", c.ID, err)
				}
			}
			report.Renamed++
			report.Changes = append(report.Changes, change)
			s.logger.Info("category renamed", zap.String("from", c.Name), zap.String("to", canonical), zap.Bool("dry_run", s.DryRun))
			continue
		}

		change := Change{From: c.Name, To: canonical, Action: "merge", Requests: c.RequestCount}
		if !s.DryRun {
			target, err := s.Store.FindOrCreateCategory(ctx, canonical)
			if err != nil {
				return report, fmt.Errorf("resolve %q: %w", canonical, err)
			}
			moved, err := s.Store.MergeCategory(ctx, c.ID, target.ID)
			if err != nil {
				return report, fmt.Errorf("merge category %d into %d: %w", c.ID, target.ID, err)
			}
			change.Requests = moved
		}
		report.Merged++
		report.RequestsMoved += change.Requests
		report.Changes = append(report.Changes, change)
		s.logger.Info("category merged",
			zap.String("from", c.Name),
			zap.String("to", canonical),
			zap.Int64("requests", change.Requests),
			zap.Bool("dry_run", s.DryRun))
	}
	return report, nil
}
