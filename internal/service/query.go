package service

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Order is a caller-supplied sort request. It applies only when both fields
// are set, otherwise the listing's default order is used.
type Order struct {
	By  string
	Dir string
}

type Pagination struct {
	CurrentPage uint64 `json:"current_page"`
	PerPage     uint64 `json:"per_page"`
	Total       uint64 `json:"total"`
	LastPage    uint64 `json:"last_page"`
}

func (p Pagination) HasPrev() bool { return p.CurrentPage > 1 }
func (p Pagination) HasNext() bool { return p.CurrentPage < p.LastPage }
func (p Pagination) Prev() uint64  { return p.CurrentPage - 1 }
func (p Pagination) Next() uint64  { return p.CurrentPage + 1 }

var (
	categoryColumns = []string{
		"c.id", "c.user_id", "c.name", "c.description", "c.parent_category", "c.created_at", "c.updated_at",
	}
	categoryOrderable = map[string]string{
		"id":         "c.id",
		"name":       "c.name",
		"created_at": "c.created_at",
		"updated_at": "c.updated_at",
	}

	linkColumns = []string{
		"l.id", "l.user_id", "l.category_id", "l.url", "l.title", "l.description", "l.is_private",
		"l.created_at", "l.updated_at",
	}
	linkOrderable = map[string]string{
		"id":         "l.id",
		"url":        "l.url",
		"title":      "l.title",
		"created_at": "l.created_at",
		"updated_at": "l.updated_at",
	}
)

// clause turns the order into an ORDER BY expression. Column names are looked
// up in allowed and never interpolated from input directly.
func (o Order) clause(allowed map[string]string, def Order) (string, error) {
	if o.By == "" || o.Dir == "" {
		o = def
	}
	column, ok := allowed[strings.ToLower(o.By)]
	if !ok {
		return "", errors.Wrapf(ErrValidation, "cannot order by %q", o.By)
	}
	dir := strings.ToUpper(o.Dir)
	if dir != "ASC" && dir != "DESC" {
		return "", errors.Wrapf(ErrValidation, "invalid order direction %q", o.Dir)
	}
	return fmt.Sprintf("%s %s", column, dir), nil
}

// fetchPage counts the rows matched by base, then scans one page of columns
// into dest.
func fetchPage(conn *gorm.DB, base squirrel.SelectBuilder, columns []string, orderBy string,
	page, perPage uint64, dest interface{}) (Pagination, error) {
	if page == 0 {
		page = 1
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return Pagination{}, errors.Wrap(err, "build count sql")
	}
	var total uint64
	if err := conn.Raw(countSQL, countArgs...).Row().Scan(&total); err != nil {
		return Pagination{}, errors.Wrap(err, "count")
	}

	sql, args, err := base.
		Columns(columns...).
		OrderBy(orderBy).
		Limit(perPage).
		Offset((page - 1) * perPage).
		ToSql()
	if err != nil {
		return Pagination{}, errors.Wrap(err, "build sql")
	}
	if res := conn.Raw(sql, args...).Scan(dest); res.Error != nil {
		return Pagination{}, errors.Wrap(res.Error, "scan")
	}

	lastPage := (total + perPage - 1) / perPage
	if lastPage == 0 {
		lastPage = 1
	}

	return Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}, nil
}
