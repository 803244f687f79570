package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"zeladoria/internal/triage"
)

type Status string

const (
	StatusPending   Status = "Pendente"
	StatusResolved  Status = "Resolvida"
	StatusCancelled Status = "Cancelada"
)

var Statuses = []Status{StatusPending, StatusResolved, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Request is a triaged citizen report as stored and served.
type Request struct {
	ID               string    `json:"id"`
	Provider         string    `json:"provider"`
	Status           Status    `json:"status"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	LocationText     string    `json:"locationText"`
	Latitude         float64   `json:"latitude"`
	Longitude        float64   `json:"longitude"`
	Category         string    `json:"category"`
	Priority         string    `json:"priority"`
	TechnicalSummary string    `json:"technicalSummary"`
	CreatedAt        time.Time `json:"createdAt"`
}

type NewRequest struct {
	Title            string
	Description      string
	LocationText     string
	Latitude         float64
	Longitude        float64
	Category         string
	Priority         string
	TechnicalSummary string
	Provider         string
}

type ListFilter struct {
	Category string
	Priority string
	Status   Status
	Search   string
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	Limit    int
}

const requestColumns = `r.id, r.provider, r.status, r.title, r.description, r.location_text,
	r.latitude, r.longitude, COALESCE(c.name, r.category, ''), r.priority, r.technical_summary, r.created_at`

func scanRequest(row interface{ Scan(...any) error }, r *Request) error {
	var status string
	if err := row.Scan(&r.ID, &r.Provider, &status, &r.Title, &r.Description, &r.LocationText,
		&r.Latitude, &r.Longitude, &r.Category, &r.Priority, &r.TechnicalSummary, &r.CreatedAt); err != nil {
		return err
	}
	r.Status = Status(status)
	return nil
}

// CreateRequest resolves the category row and inserts the request in one
// transaction. New requests always start as Pendente.
func (s *Store) CreateRequest(ctx context.Context, in NewRequest) (Request, error) {
	var out Request
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		category, err := findOrCreateCategory(ctx, tx, in.Category)
		if err != nil {
			return fmt.Errorf("category: %w", err)
		}
		id := uuid.NewString()
		var createdAt time.Time
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO requests (
				id, title, description, location_text, latitude, longitude,
				category, category_id, status, priority, technical_summary, provider
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING created_at
		`, id, in.Title, in.Description, in.LocationText, in.Latitude, in.Longitude,
			category.Name, category.ID, string(StatusPending), in.Priority, in.TechnicalSummary, in.Provider,
		).Scan(&createdAt); err != nil {
			return err
		}
		out = Request{
			ID:               id,
			Provider:         in.Provider,
			Status:           StatusPending,
			Title:            in.Title,
			Description:      in.Description,
			LocationText:     in.LocationText,
			Latitude:         in.Latitude,
			Longitude:        in.Longitude,
			Category:         category.Name,
			Priority:         in.Priority,
			TechnicalSummary: in.TechnicalSummary,
			CreatedAt:        createdAt,
		}
		return nil
	})
	return out, err
}

func (s *Store) GetRequest(ctx context.Context, id string) (Request, error) {
	var r Request
	row := s.db.QueryRowContext(ctx, `SELECT `+requestColumns+`
		FROM requests r
		LEFT JOIN categories c ON c.id = r.category_id
		WHERE r.id = $1`, id)
	if err := scanRequest(row, &r); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r, ErrNotFound
		}
		return r, err
	}
	return r, nil
}

// ListRequests returns one page, newest first, and the total match count.
func (s *Store) ListRequests(ctx context.Context, f ListFilter) ([]Request, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if f.Category != "" {
		add("c.normalized_name = $%d", triage.NormalizeCategoryName(f.Category))
	}
	if f.Priority != "" {
		add("r.priority = $%d", f.Priority)
	}
	if f.Status != "" {
		add("r.status = $%d", string(f.Status))
	}
	if f.Search != "" {
		add("r.location_text ILIKE $%d", "%"+escapeLike(f.Search)+"%")
	}
	if f.DateFrom != nil {
		add("r.created_at >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("r.created_at <= $%d", *f.DateTo)
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	from := ` FROM requests r LEFT JOIN categories c ON c.id = r.category_id`

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (f.Page - 1) * f.Limit
	query := `SELECT ` + requestColumns + from + where +
		fmt.Sprintf(" ORDER BY r.created_at DESC, r.id LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		var r Request
		if err := scanRequest(rows, &r); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *Store) UpdateRequestStatus(ctx context.Context, id string, status Status) (Request, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE requests SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return Request{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Request{}, ErrNotFound
	}
	return s.GetRequest(ctx, id)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
