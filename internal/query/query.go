// Package query is the generic filter/order/range contract used to read tables
// of the data service. A Query is built fluently on the client or parsed from
// PostgREST-style URL parameters on the server, then applied to a gorm chain
// against a per-table column allowlist.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike"
	OpGte   Op = "gte"
	OpLte   Op = "lte"
	OpIn    Op = "in"
)

var ErrInvalid = errors.New("invalid query")

type Filter struct {
	Column string
	Op     Op
	Value  any
}

type Query struct {
	Filters   []Filter
	OrderBy   string
	Ascending bool
	Limit     int
	Offset    int
}

func New() *Query {
	return &Query{}
}

func (q *Query) Eq(column string, v any) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpEq, Value: v})
	return q
}

// ILike matches rows whose column contains s, case-insensitively.
func (q *Query) ILike(column, s string) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpILike, Value: s})
	return q
}

func (q *Query) Gte(column string, v any) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpGte, Value: v})
	return q
}

func (q *Query) Lte(column string, v any) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpLte, Value: v})
	return q
}

func (q *Query) In(column string, vs []string) *Query {
	q.Filters = append(q.Filters, Filter{Column: column, Op: OpIn, Value: vs})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	q.OrderBy = column
	q.Ascending = ascending
	return q
}

// Range selects rows from..to inclusive.
func (q *Query) Range(from, to int) *Query {
	if from < 0 {
		from = 0
	}
	q.Offset = from
	q.Limit = to - from + 1
	if q.Limit < 0 {
		q.Limit = 0
	}
	return q
}

// ilike matches the text literally; wildcards typed by the caller are escaped.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Where applies the filters only, so the result can be counted before paging.
func (q *Query) Where(db *gorm.DB, allowed []string) (*gorm.DB, error) {
	for _, f := range q.Filters {
		if !contains(allowed, f.Column) {
			return nil, fmt.Errorf("%w: unknown column %q", ErrInvalid, f.Column)
		}
		col := pq.QuoteIdentifier(f.Column)

		switch f.Op {
		case OpEq:
			db = db.Where(col+" = ?", f.Value)
		case OpILike:
			pattern := "%" + likeEscaper.Replace(strings.ToLower(fmt.Sprint(f.Value))) + "%"
			db = db.Where("LOWER("+col+`) LIKE ? ESCAPE '\'`, pattern)
		case OpGte:
			db = db.Where(col+" >= ?", f.Value)
		case OpLte:
			db = db.Where(col+" <= ?", f.Value)
		case OpIn:
			db = db.Where(col+" IN ?", f.Value)
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalid, f.Op)
		}
	}
	return db, nil
}

// Page applies ordering and the row range.
func (q *Query) Page(db *gorm.DB, allowed []string, defaultOrder string) (*gorm.DB, error) {
	switch {
	case q.OrderBy == "":
		if defaultOrder != "" {
			db = db.Order(defaultOrder)
		}
	case !contains(allowed, q.OrderBy):
		return nil, fmt.Errorf("%w: cannot order by %q", ErrInvalid, q.OrderBy)
	case q.Ascending:
		db = db.Order(pq.QuoteIdentifier(q.OrderBy) + " ASC")
	default:
		db = db.Order(pq.QuoteIdentifier(q.OrderBy) + " DESC")
	}

	if q.Offset > 0 {
		db = db.Offset(q.Offset)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
