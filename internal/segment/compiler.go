// internal/segment/compiler.go
package segment

import (
    "fmt"
    "sort"
    "strconv"
    "strings"

    sq "github.com/Masterminds/squirrel"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
)

type op int

const (
    opEq op = iota
    opGt
    opLt
    opRange
)

type predicate struct {
    attr string
    op   op
    str  string // equality operand
    n    int    // gt/lt operand
    lo   int    // range bounds, inclusive
    hi   int
}

// Filter is a compiled conjunction of attribute predicates. The zero filter
// (no predicates) matches every recipient.
type Filter struct {
    preds []predicate
}

// Compile classifies each entry of a segment query:
//
//	">N"  greater-than on the attribute cast to int
//	"<N"  less-than
//	"A-B" inclusive range, both sides integers
//	else  string equality
//
// A ">" or "<" expression whose operand is not an integer fails with
// ErrInvalidFilter. Predicates are ordered by attribute name so compilation
// is deterministic.
func Compile(query model.SegmentQuery) (*Filter, error) {
    f := &Filter{}
    if len(query) == 0 {
        return f, nil
    }

    attrs := make([]string, 0, len(query))
    for attr := range query {
        attrs = append(attrs, attr)
    }
    sort.Strings(attrs)

    for _, attr := range attrs {
        expr := strings.TrimSpace(query[attr])
        p, err := classify(attr, expr)
        if err != nil {
            return nil, err
        }
        f.preds = append(f.preds, p)
    }
    return f, nil
}

func classify(attr, expr string) (predicate, error) {
    switch {
    case strings.HasPrefix(expr, ">"):
        n, err := strconv.Atoi(strings.TrimSpace(expr[1:]))
        if err != nil {
            return predicate{}, fmt.Errorf("%w: attribute %q: %q is not an integer", appErrors.ErrInvalidFilter, attr, expr)
        }
        return predicate{attr: attr, op: opGt, n: n}, nil
    case strings.HasPrefix(expr, "<"):
        n, err := strconv.Atoi(strings.TrimSpace(expr[1:]))
        if err != nil {
            return predicate{}, fmt.Errorf("%w: attribute %q: %q is not an integer", appErrors.ErrInvalidFilter, attr, expr)
        }
        return predicate{attr: attr, op: opLt, n: n}, nil
    }

    if lo, hi, ok := parseRange(expr); ok {
        return predicate{attr: attr, op: opRange, lo: lo, hi: hi}, nil
    }
    return predicate{attr: attr, op: opEq, str: expr}, nil
}

// parseRange recognizes "A-B" with two integers. Anything else (including a
// leading minus sign) is not a range.
func parseRange(expr string) (lo, hi int, ok bool) {
    i := strings.Index(expr, "-")
    if i <= 0 || i == len(expr)-1 {
        return 0, 0, false
    }
    lo, err := strconv.Atoi(strings.TrimSpace(expr[:i]))
    if err != nil {
        return 0, 0, false
    }
    hi, err = strconv.Atoi(strings.TrimSpace(expr[i+1:]))
    if err != nil {
        return 0, 0, false
    }
    return lo, hi, true
}

func (f *Filter) Empty() bool {
    return f == nil || len(f.preds) == 0
}

// Sqlizer translates the filter into a squirrel conjunction over the users
// table's jsonb attribute bag. Numeric comparators cast the text value.
func (f *Filter) Sqlizer() sq.Sqlizer {
    conds := make(sq.And, 0, len(f.preds))
    for _, p := range f.preds {
        switch p.op {
        case opGt:
            conds = append(conds, sq.Expr("(u.attributes->>?)::int > ?", p.attr, p.n))
        case opLt:
            conds = append(conds, sq.Expr("(u.attributes->>?)::int < ?", p.attr, p.n))
        case opRange:
            conds = append(conds, sq.Expr("(u.attributes->>?)::int BETWEEN ? AND ?", p.attr, p.lo, p.hi))
        default:
            conds = append(conds, sq.Expr("u.attributes->>? = ?", p.attr, p.str))
        }
    }
    return conds
}

// Matches evaluates the filter against an in-memory attribute bag. Missing
// attributes never match; numeric comparators accept int, float64 (JSON
// numbers) and numeric strings.
func (f *Filter) Matches(attrs map[string]any) bool {
    for _, p := range f.preds {
        v, ok := attrs[p.attr]
        if !ok {
            return false
        }
        switch p.op {
        case opGt:
            n, ok := asInt(v)
            if !ok || n <= p.n {
                return false
            }
        case opLt:
            n, ok := asInt(v)
            if !ok || n >= p.n {
                return false
            }
        case opRange:
            n, ok := asInt(v)
            if !ok || n < p.lo || n > p.hi {
                return false
            }
        default:
            if fmt.Sprintf("%v", v) != p.str {
                return false
            }
        }
    }
    return true
}

func asInt(v any) (int, bool) {
    switch n := v.(type) {
    case int:
        return n, true
    case int64:
        return int(n), true
    case float64:
        return int(n), true
    case string:
        i, err := strconv.Atoi(n)
        return i, err == nil
    }
    return 0, false
}
