package db

import (
	"errors"
	"strconv"
	"strings"
)

// Operator is the SQL pattern-matching operator used by a predicate.
type Operator string

const (
	// OperatorLike is LIKE. SQLite folds ASCII letters only; other scripts,
	// including accented Latin, compare exactly. Khmer has no case.
	OperatorLike Operator = "LIKE"
	// OperatorILike is ILIKE (PostgreSQL).
	OperatorILike Operator = "ILIKE"
)

// DefaultNormalizeFunc is the SQL function applied to both sides of a comparison.
const DefaultNormalizeFunc = "normalize_khmer_search"

// DefaultPublishedColumn gates results to published rows.
const DefaultPublishedColumn = "published_at"

// likeEscape is the escape character declared in the ESCAPE clause.
const likeEscape = `\`

// Clause is a parameterised WHERE fragment. Args line up with the placeholders in SQL.
type Clause struct {
	SQL  string
	Args []any
}

// PredicateDefinition describes a search predicate before it is rendered.
type PredicateDefinition struct {
	Fields          []string
	Terms           []string
	NormalizeFunc   string
	PublishedColumn string
	Operator        Operator
}

// Validate checks that the predicate definition is well-formed.
func (p *PredicateDefinition) Validate() error {
	if len(p.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	if len(p.Terms) == 0 {
		return errors.New("at least one term is required")
	}
	seen := make(map[string]bool, len(p.Fields))
	for i, f := range p.Fields {
		if !IsValidIdentifier(f) {
			return errors.New("field " + strconv.Itoa(i) + " contains invalid characters")
		}
		if seen[f] {
			return errors.New("duplicate field name: " + f)
		}
		seen[f] = true
	}
	for i, t := range p.Terms {
		if t == "" {
			return errors.New("term is empty at index " + strconv.Itoa(i))
		}
	}
	if !IsValidIdentifier(p.NormalizeFunc) {
		return errors.New("normalize function contains invalid characters")
	}
	if p.PublishedColumn != "" && !IsValidIdentifier(p.PublishedColumn) {
		return errors.New("published column contains invalid characters")
	}
	switch p.Operator {
	case OperatorLike, OperatorILike:
	default:
		return errors.New("unsupported operator: " + string(p.Operator))
	}
	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z_][a-zA-Z0-9_.]*.
// Identifiers are interpolated into SQL; values never are.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		isSpecial := r == '_' || r == '.'
		if i == 0 && !isAlpha && r != '_' {
			return false
		}
		if !isAlpha && !isDigit && !isSpecial {
			return false
		}
	}
	return true
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	if !strings.ContainsAny(s, `%_\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			b.WriteString(likeEscape)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Render produces the WHERE fragment: terms AND-ed, each matching any field.
func (p *PredicateDefinition) Render() Clause {
	args := make([]any, 0, len(p.Terms)*len(p.Fields))
	groups := make([]string, 0, len(p.Terms)+1)

	for _, term := range p.Terms {
		pattern := "%" + EscapeLike(term) + "%"
		alts := make([]string, 0, len(p.Fields))
		for _, f := range p.Fields {
			alts = append(alts, p.NormalizeFunc+"("+f+") "+string(p.Operator)+" "+
				p.NormalizeFunc+"(?) ESCAPE '"+likeEscape+"'")
			args = append(args, pattern)
		}
		groups = append(groups, "("+strings.Join(alts, " OR ")+")")
	}
	if p.PublishedColumn != "" {
		groups = append(groups, p.PublishedColumn+" IS NOT NULL")
	}
	return Clause{SQL: strings.Join(groups, " AND "), Args: args}
}
