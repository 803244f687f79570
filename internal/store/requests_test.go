package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleRequest(category, location string) NewRequest {
	return NewRequest{
		Title:            "Bueiro entupido",
		Description:      "Água acumulada na esquina",
		LocationText:     location,
		Latitude:         -23.55,
		Longitude:        -46.63,
		Category:         category,
		Priority:         "Alta",
		TechnicalSummary: "Obstrução de drenagem resultando em alagamento. Requer desobstrução.",
		Provider:         "gemini",
	}
}

func TestCreateAndGetRequest(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		created, err := s.CreateRequest(ctx, sampleRequest("Drenagem e Saneamento", "Rua das Flores, 10"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if created.Status != StatusPending {
			t.Fatalf("expected Pendente, got %s", created.Status)
		}
		if _, err := uuid.Parse(created.ID); err != nil {
			t.Fatalf("expected uuid id, got %q", created.ID)
		}
		got, err := s.GetRequest(ctx, created.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Category != "Drenagem e Saneamento" || got.LocationText != "Rua das Flores, 10" || got.Provider != "gemini" {
			t.Fatalf("unexpected request %+v", got)
		}
	})
}

func TestCreateRequestReusesCategoryByNormalizedName(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		before, err := s.ListCategories(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if _, err := s.CreateRequest(ctx, sampleRequest("  outros ", "Rua A")); err != nil {
			t.Fatalf("create: %v", err)
		}
		after, err := s.ListCategories(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(after) != len(before) {
			t.Fatalf("expected no new category row, got %d -> %d", len(before), len(after))
		}
	})
}

func TestGetRequestNotFound(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		if _, err := s.GetRequest(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := s.UpdateRequestStatus(ctx, uuid.NewString(), StatusResolved); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound on update, got %v", err)
		}
	})
}

func TestListRequestsFiltersAndPagination(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		for i := 0; i < 3; i++ {
			if _, err := s.CreateRequest(ctx, sampleRequest("Drenagem e Saneamento", "Avenida Paulista")); err != nil {
				t.Fatalf("create: %v", err)
			}
		}
		other := sampleRequest("Outros", "Rua Augusta")
		other.Priority = "Baixa"
		created, err := s.CreateRequest(ctx, other)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		page, total, err := s.ListRequests(ctx, ListFilter{Page: 1, Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if total != 4 || len(page) != 2 {
			t.Fatalf("expected 2 of 4, got %d of %d", len(page), total)
		}
		if page[0].ID != created.ID {
			t.Fatalf("expected newest first")
		}

		byCategory, total, err := s.ListRequests(ctx, ListFilter{Category: " DRENAGEM E SANEAMENTO", Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("list by category: %v", err)
		}
		if total != 3 || len(byCategory) != 3 {
			t.Fatalf("expected 3 drainage requests, got %d", total)
		}

		_, total, err = s.ListRequests(ctx, ListFilter{Search: "augusta", Priority: "Baixa", Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("list by search: %v", err)
		}
		if total != 1 {
			t.Fatalf("expected 1 match for search, got %d", total)
		}

		_, total, err = s.ListRequests(ctx, ListFilter{Search: "100%", Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("list by literal percent: %v", err)
		}
		if total != 0 {
			t.Fatalf("expected wildcard characters to match literally, got %d", total)
		}

		future := time.Now().Add(time.Hour)
		_, total, err = s.ListRequests(ctx, ListFilter{DateFrom: &future, Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("list by date: %v", err)
		}
		if total != 0 {
			t.Fatalf("expected no requests after now, got %d", total)
		}

		empty, total, err := s.ListRequests(ctx, ListFilter{Page: 5, Limit: 10})
		if err != nil {
			t.Fatalf("list past end: %v", err)
		}
		if total != 4 || len(empty) != 0 || empty == nil {
			t.Fatalf("expected empty non-nil page past the end")
		}
	})
}

func TestUpdateRequestStatus(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		created, err := s.CreateRequest(ctx, sampleRequest("Outros", "Rua B"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		updated, err := s.UpdateRequestStatus(ctx, created.ID, StatusResolved)
		if err != nil {
			t.Fatalf("update: %v", err)
		}
		if updated.Status != StatusResolved {
			t.Fatalf("expected Resolvida, got %s", updated.Status)
		}
		list, total, err := s.ListRequests(ctx, ListFilter{Status: StatusResolved, Page: 1, Limit: 10})
		if err != nil || total != 1 || list[0].ID != created.ID {
			t.Fatalf("expected resolved request in filtered list, err=%v total=%d", err, total)
		}
	})
}

func TestMergeCategoryRepointsRequests(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		legacy, err := s.FindOrCreateCategory(ctx, "Drenagem e saneamento basico")
		if err != nil {
			t.Fatalf("create legacy category: %v", err)
		}
		canonical, err := s.FindOrCreateCategory(ctx, "Drenagem e Saneamento")
		if err != nil {
			t.Fatalf("find canonical: %v", err)
		}
		req, err := s.CreateRequest(ctx, sampleRequest(legacy.Name, "Rua C"))
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		moved, err := s.MergeCategory(ctx, legacy.ID, canonical.ID)
		if err != nil {
			t.Fatalf("merge: %v", err)
		}
		if moved != 1 {
			t.Fatalf("expected 1 moved request, got %d", moved)
		}
		got, err := s.GetRequest(ctx, req.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Category != "Drenagem e Saneamento" {
			t.Fatalf("expected canonical category after merge, got %q", got.Category)
		}
		if _, err := s.MergeCategory(ctx, legacy.ID, canonical.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound merging a removed category, got %v", err)
		}
	})
}

func TestRenameCategory(t *testing.T) {
	withMigratedStore(t, func(ctx context.Context, s *Store) {
		c, err := s.FindOrCreateCategory(ctx, "Iluminacao")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if err := s.RenameCategory(ctx, c.ID, "Iluminação"); err != nil {
			t.Fatalf("rename: %v", err)
		}
		again, err := s.FindOrCreateCategory(ctx, "iluminação")
		if err != nil {
			t.Fatalf("find: %v", err)
		}
		if again.ID != c.ID || again.Name != "Iluminação" {
			t.Fatalf("expected renamed row, got %+v", again)
		}
		if err := s.RenameCategory(ctx, 999999, "x"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		if !s.Valid() {
			t.Fatalf("%s should be valid", s)
		}
	}
	for _, s := range []Status{"", "pendente", "Aberta"} {
		if s.Valid() {
			t.Fatalf("%q should be invalid", s)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`50%_a\b`); got != `50\%\_a\\b` {
		t.Fatalf("unexpected escape %q", got)
	}
}
