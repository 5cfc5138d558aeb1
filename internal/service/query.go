package service

import (
	"math"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams are the admin list inputs shared by every paginated endpoint.
type ListParams struct {
	Page   int
	Limit  int
	Status string
	Search string
}

func (p *ListParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	p.Status = strings.TrimSpace(p.Status)
	p.Search = strings.TrimSpace(p.Search)
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.Limit
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Page is one slice of a filtered, ordered result set.
type Page[T any] struct {
	Pagination Pagination
	Data       []T
}

func newPagination(p ListParams, total int64) Pagination {
	return Pagination{
		Page:  p.Page,
		Limit: p.Limit,
		Total: total,
		Pages: int(math.Ceil(float64(total) / float64(p.Limit))),
	}
}

// MatchesAny filters rows where any of the columns contains term, ignoring case.
// An empty term matches everything.
func MatchesAny(columns []string, term string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}

		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// StatusIs filters on the status column when status is set.
func StatusIs(status string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

const newestFirst = "created_at DESC, id DESC"

// paginate counts then fetches one page in the given order. The two queries are not
// run in a transaction, so the total is best-effort under concurrent writes.
func paginate[T any](db *gorm.DB, p ListParams, filters []func(*gorm.DB) *gorm.DB, order string, preload func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	p.normalize()

	var total int64
	if err := db.Model(new(T)).Scopes(filters...).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, p.Limit)
	q := db.Model(new(T)).Scopes(filters...)
	if preload != nil {
		q = preload(q)
	}
	if err := q.Order(order).Offset(p.offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, err
	}

	return &Page[T]{Pagination: newPagination(p, total), Data: items}, nil
}

// selectColumns returns a preload condition limiting the columns of a shallow population.
func selectColumns(columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Select(columns)
	}
}
