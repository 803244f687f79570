package intake

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"zeladoria/internal/store"
	"zeladoria/internal/triage"
)

// Classifier is the triage capability the service depends on.
type Classifier interface {
	ProcessCitizenRequest(ctx context.Context, report triage.Report) (triage.Result, error)
	Provider() string
}

// Locator rewrites citizen location text, falling back to the input.
type Locator interface {
	Normalize(ctx context.Context, locationText string, lat, lng float64) string
}

type Repository interface {
	CreateRequest(ctx context.Context, in store.NewRequest) (store.Request, error)
	GetRequest(ctx context.Context, id string) (store.Request, error)
	ListRequests(ctx context.Context, f store.ListFilter) ([]store.Request, int, error)
	UpdateRequestStatus(ctx context.Context, id string, status store.Status) (store.Request, error)
}

type Observer interface {
	RecordSuccess(provider, category, priority string, latency time.Duration)
	RecordFailure(provider string, status int, detail string, latency time.Duration)
}

type CreateInput struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	LocationText string  `json:"locationText"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Page struct {
	Data       []store.Request `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type Service struct {
	classifier Classifier
	locator    Locator
	repo       Repository
	observer   Observer
	logger     *zap.Logger
}

func NewService(classifier Classifier, locator Locator, repo Repository, observer Observer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		classifier: classifier,
		locator:    locator,
		repo:       repo,
		observer:   observer,
		logger:     logger,
	}
}

// Create geocodes, triages and stores a citizen report. Nothing is written
// when triage fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (store.Request, error) {
	in = normalizeInput(in)
	if err := validateCreate(in); err != nil {
		return store.Request{}, err
	}

	if s.locator != nil {
		in.LocationText = s.locator.Normalize(ctx, in.LocationText, in.Latitude, in.Longitude)
	}

	report := triage.Report{
		Title:        in.Title,
		Description:  in.Description,
		LocationText: in.LocationText,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	}
	provider := s.classifier.Provider()
	start := time.Now()
	result, err := s.classifier.ProcessCitizenRequest(ctx, report)
	latency := time.Since(start)
	if err != nil {
		var cerr *triage.ClassificationError
		if errors.As(err, &cerr) {
			s.recordFailure(provider, cerr.HTTPStatus, cerr.Detail, latency)
		} else {
			s.recordFailure(provider, 0, err.Error(), latency)
		}
		return store.Request{}, err
	}
	s.recordSuccess(provider, string(result.Category), string(result.Priority), latency)

	saved, err := s.repo.CreateRequest(ctx, store.NewRequest{
		Title:            in.Title,
		Description:      in.Description,
		LocationText:     in.LocationText,
		Latitude:         in.Latitude,
		Longitude:        in.Longitude,
		Category:         string(result.Category),
		Priority:         string(result.Priority),
		TechnicalSummary: result.TechnicalSummary,
		Provider:         provider,
	})
	if err != nil {
		return store.Request{}, fmt.Errorf("save request: %w", err)
	}
	s.logger.Info("request created",
		zap.String("id", saved.ID),
		zap.String("category", saved.Category),
		zap.String("priority", saved.Priority))
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (store.Request, error) {
	if err := validateID(id); err != nil {
		return store.Request{}, err
	}
	return s.repo.GetRequest(ctx, id)
}

func (s *Service) List(ctx context.Context, f store.ListFilter) (Page, error) {
	rows, total, err := s.repo.ListRequests(ctx, f)
	if err != nil {
		return Page{}, err
	}
	if rows == nil {
		rows = []store.Request{}
	}
	return Page{
		Data: rows,
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: totalPages(total, f.Limit),
		},
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status store.Status) (store.Request, error) {
	if err := validateID(id); err != nil {
		return store.Request{}, err
	}
	if !status.Valid() {
		verr := newValidationError("invalid status")
		verr.addField("status", "must be one of Pendente, Resolvida, Cancelada")
		return store.Request{}, verr
	}
	updated, err := s.repo.UpdateRequestStatus(ctx, id, status)
	if err != nil {
		return store.Request{}, err
	}
	s.logger.Info("request status updated", zap.String("id", id), zap.String("status", string(status)))
	return updated, nil
}

func (s *Service) recordSuccess(provider, category, priority string, latency time.Duration) {
	if s.observer != nil {
		s.observer.RecordSuccess(provider, category, priority, latency)
	}
}

func (s *Service) recordFailure(provider string, status int, detail string, latency time.Duration) {
	if s.observer != nil {
		s.observer.RecordFailure(provider, status, detail, latency)
	}
}

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// normalizeText replaces invalid UTF-8, composes to NFC and trims.
func normalizeText(s string) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	return strings.TrimSpace(norm.NFC.String(s))
}

func normalizeInput(in CreateInput) CreateInput {
	in.Title = normalizeText(in.Title)
	in.Description = normalizeText(in.Description)
	in.LocationText = normalizeText(in.LocationText)
	return in
}

func validateCreate(in CreateInput) error {
	verr := newValidationError("invalid request data")
	if in.Title == "" {
		verr.addField("title", "title is required")
	}
	if in.Description == "" {
		verr.addField("description", "description is required")
	}
	if in.LocationText == "" {
		verr.addField("locationText", "location text is required")
	}
	if math.IsNaN(in.Latitude) || math.IsInf(in.Latitude, 0) || in.Latitude < -90 || in.Latitude > 90 {
		verr.addField("latitude", "latitude must be between -90 and 90")
	}
	if math.IsNaN(in.Longitude) || math.IsInf(in.Longitude, 0) || in.Longitude < -180 || in.Longitude > 180 {
		verr.addField("longitude", "longitude must be between -180 and 180")
	}
	if verr.empty() {
		return nil
	}
	return verr
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		verr := newValidationError("invalid id")
		verr.addField("id", "id must be a UUID")
		return verr
	}
	return nil
}
