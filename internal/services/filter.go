package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "ledgerly/internal/errors"
	"ledgerly/internal/models"
)

const dateOnlyLayout = "2006-01-02"

var sortColumns = map[string]string{
	"date":        "date",
	"amount":      "amount",
	"description": "description",
	"created_at":  "created_at",
	"createdAt":   "created_at",
}

// TransactionFilter is the typed predicate for transaction queries. Every
// field is optional; nil means "no constraint".
type TransactionFilter struct {
	SpaceID         *string
	Type            *models.TransactionType
	CategoryID      *string
	PaymentMethodID *string
	From            *time.Time
	To              *time.Time
	MinAmount       *int64
	MaxAmount       *int64
	Tags            []string
	Search          *string
	SortBy          string
	SortOrder       string
}

// Validate rejects contradictory or unsupported constraints.
func (f TransactionFilter) Validate() error {
	if f.Type != nil && !f.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("invalid transaction type %q", *f.Type))
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "start date must not be after end date")
	}
	if f.MinAmount != nil && *f.MinAmount < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum amount must not be negative")
	}
	if f.MinAmount != nil && f.MaxAmount != nil && *f.MinAmount > *f.MaxAmount {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "minimum amount must not exceed maximum amount")
	}
	if f.SortBy != "" {
		if _, ok := sortColumns[f.SortBy]; !ok {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("cannot sort by %q", f.SortBy))
		}
	}
	switch strings.ToLower(f.SortOrder) {
	case "", "asc", "desc":
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "sort order must be asc or desc")
	}
	return nil
}

// apply adds the filter's predicates to q. The caller scopes q by owner.
func (f TransactionFilter) apply(q *gorm.DB) *gorm.DB {
	if f.SpaceID != nil && *f.SpaceID != "" {
		q = q.Where("space_id = ?", *f.SpaceID)
	}
	if f.Type != nil {
		q = q.Where("type = ?", *f.Type)
	}
	if f.CategoryID != nil && *f.CategoryID != "" {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.PaymentMethodID != nil && *f.PaymentMethodID != "" {
		q = q.Where("payment_method_id = ?", *f.PaymentMethodID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("date <= ?", f.To.UTC())
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if tags := cleanTags(f.Tags); len(tags) > 0 {
		clauses := make([]string, 0, len(tags))
		args := make([]interface{}, 0, len(tags))
		for _, tag := range tags {
			encoded, err := models.EncodeJSON(tag)
			if err != nil {
				continue
			}
			clauses = append(clauses, `tags LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(encoded)+"%")
		}
		if len(clauses) > 0 {
			q = q.Where("("+strings.Join(clauses, " OR ")+")", args...)
		}
	}
	if f.Search != nil {
		if term := strings.TrimSpace(*f.Search); term != "" {
			pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
			q = q.Where(`(LOWER(description) LIKE ? ESCAPE '\' OR LOWER(meta_notes) LIKE ? ESCAPE '\' OR `+tagElementMatch(q)+`)`,
				pattern, pattern, pattern)
		}
	}
	return q
}

// order returns the ORDER BY clause, defaulting to newest first.
func (f TransactionFilter) order() string {
	column := "date"
	if c, ok := sortColumns[f.SortBy]; ok {
		column = c
	}
	direction := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s, id %s", column, direction, direction)
}

// tagElementMatch returns a predicate matching the LIKE pattern against each
// decoded tag rather than the stored JSON text, so quotes and separators in
// the encoding never take part in the match.
func tagElementMatch(q *gorm.DB) string {
	if q.Dialector != nil && q.Dialector.Name() == "postgres" {
		return `EXISTS (SELECT 1 FROM jsonb_array_elements_text(COALESCE(NULLIF(tags, ''), '[]')::jsonb) AS t(value) WHERE LOWER(t.value) LIKE ? ESCAPE '\')`
	}
	return `EXISTS (SELECT 1 FROM json_each(COALESCE(NULLIF(tags, ''), '[]')) AS t WHERE LOWER(t.value) LIKE ? ESCAPE '\')`
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ParseDateBound parses an RFC3339 timestamp or a YYYY-MM-DD date. A bare
// date used as an upper bound covers the whole day.
func ParseDateBound(raw string, upper bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(dateOnlyLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", raw)
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
