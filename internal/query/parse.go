package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Skotchmaster/pcshop/internal/util"
)

var reserved = map[string]bool{
	"order":  true,
	"limit":  true,
	"offset": true,
	"page":   true,
	"size":   true,
}

// Parse reads filters of the form column=op.value, plus order=column.asc|desc
// and either limit/offset or page/size.
func Parse(values url.Values) (*Query, error) {
	q := New()

	for key, vals := range values {
		if reserved[key] {
			continue
		}
		for _, raw := range vals {
			op, val, ok := strings.Cut(raw, ".")
			if !ok {
				return nil, fmt.Errorf("%w: %s=%s, expected op.value", ErrInvalid, key, raw)
			}
			switch Op(op) {
			case OpEq:
				q.Eq(key, val)
			case OpILike:
				q.ILike(key, strings.Trim(val, "*%"))
			case OpGte:
				q.Gte(key, number(val))
			case OpLte:
				q.Lte(key, number(val))
			case OpIn:
				q.In(key, splitList(val))
			default:
				return nil, fmt.Errorf("%w: unknown operator %q", ErrInvalid, op)
			}
		}
	}

	if order := values.Get("order"); order != "" {
		col, dir, _ := strings.Cut(order, ".")
		switch strings.ToLower(dir) {
		case "", "asc":
			q.Order(col, true)
		case "desc":
			q.Order(col, false)
		default:
			return nil, fmt.Errorf("%w: order direction %q", ErrInvalid, dir)
		}
	}

	if values.Has("page") || values.Has("size") {
		page := util.ParseIntDefault(values.Get("page"), 1)
		size := util.ParseIntDefault(values.Get("size"), util.DefaultPageSize)
		q.Offset, q.Limit = util.Calculate(page, size)
		return q, nil
	}

	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: limit %q", ErrInvalid, v)
		}
		q.Limit = min(n, util.MaxPageSize)
	}
	if v := values.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: offset %q", ErrInvalid, v)
		}
		q.Offset = n
	}
	return q, nil
}

func splitList(v string) []string {
	v = strings.TrimSuffix(strings.TrimPrefix(v, "("), ")")
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// number lets range filters compare numerically on every driver.
func number(v string) any {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
