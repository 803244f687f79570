package intake

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"zeladoria/internal/store"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// DecodeCreate checks a request body against the create schema and decodes it.
func DecodeCreate(body []byte) (CreateInput, error) {
	verr := newValidationError("invalid request data")
	fields, ok := validateDocument(createSchema, body, verr)
	if !ok {
		return CreateInput{}, verr
	}
	return CreateInput{
		Title:        fields["title"].(string),
		Description:  fields["description"].(string),
		LocationText: fields["locationText"].(string),
		Latitude:     fields["latitude"].(float64),
		Longitude:    fields["longitude"].(float64),
	}, nil
}

// DecodeStatus checks a status update body and returns the new status.
func DecodeStatus(body []byte) (store.Status, error) {
	verr := newValidationError("invalid status")
	fields, ok := validateDocument(statusSchema, body, verr)
	if !ok {
		return "", verr
	}
	return store.Status(fields["status"].(string)), nil
}

// ParseListQuery reads list filters from URL query values, applying
// defaults for page and limit.
func ParseListQuery(q url.Values) (store.ListFilter, error) {
	verr := newValidationError("invalid filters")
	f := store.ListFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Priority: strings.TrimSpace(q.Get("priority")),
		Search:   strings.TrimSpace(q.Get("search")),
		Page:     defaultPage,
		Limit:    defaultLimit,
	}

	if v := q.Get("status"); v != "" {
		status := store.Status(v)
		if !status.Valid() {
			verr.addField("status", "must be one of Pendente, Resolvida, Cancelada")
		}
		f.Status = status
	}
	if v := q.Get("dateFrom"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			verr.addField("dateFrom", "must be an RFC 3339 timestamp")
		} else {
			f.DateFrom = &t
		}
	}
	if v := q.Get("dateTo"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			verr.addField("dateTo", "must be an RFC 3339 timestamp")
		} else {
			f.DateTo = &t
		}
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			verr.addField("page", "must be an integer >= 1")
		} else {
			f.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			verr.addField("limit", "must be an integer between 1 and 100")
		} else {
			f.Limit = n
		}
	}

	if !verr.empty() {
		return store.ListFilter{}, verr
	}
	return f, nil
}
