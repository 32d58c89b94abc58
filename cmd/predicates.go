package cmd

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cube2222/octorest/datasources/rest"
	"github.com/cube2222/octorest/octosql"
	"github.com/cube2222/octorest/physical"
)

var predicateRegexp = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|!=|=|<|>|(?i:in)\s)\s*(.*?)\s*$`)

// ParsePredicates parses predicates like "updated_at >= 2024-01-01" into a constraint set.
// All predicates have to hold.
func ParsePredicates(schema physical.Schema, predicates []string) (physical.ConstraintSet, error) {
	out := physical.ConstraintsAll()
	for _, predicate := range predicates {
		column, domain, err := ParsePredicate(schema, predicate)
		if err != nil {
			return physical.ConstraintSet{}, err
		}
		out = out.WithDomain(column, domain)
		if out.IsNone() {
			return out, nil
		}
	}
	return out, nil
}

func ParsePredicate(schema physical.Schema, predicate string) (string, physical.Domain, error) {
	matches := predicateRegexp.FindStringSubmatch(predicate)
	if matches == nil {
		return "", physical.Domain{}, errors.Errorf("invalid predicate, expected <column> <operator> <value>: %s", predicate)
	}
	column, operator, literal := matches[1], strings.ToLower(strings.TrimSpace(matches[2])), matches[3]

	field, ok := schema.Field(column)
	if !ok {
		return "", physical.Domain{}, errors.Errorf("unknown column %s", column)
	}
	t := field.Type.Primitive()

	if operator == "in" {
		if !strings.HasPrefix(literal, "(") || !strings.HasSuffix(literal, ")") {
			return "", physical.Domain{}, errors.Errorf("expected parenthesized value list after in: %s", predicate)
		}
		parts, err := splitList(literal[1 : len(literal)-1])
		if err != nil {
			return "", physical.Domain{}, errors.Wrapf(err, "invalid value list in %s", predicate)
		}
		values := make([]octosql.Value, len(parts))
		for i := range parts {
			values[i], err = ParseLiteral(t, parts[i])
			if err != nil {
				return "", physical.Domain{}, errors.Wrapf(err, "invalid value for column %s", column)
			}
		}
		return column, physical.DomainMultipleValues(t, values...), nil
	}

	value, err := ParseLiteral(t, literal)
	if err != nil {
		return "", physical.Domain{}, errors.Wrapf(err, "invalid value for column %s", column)
	}

	var domain physical.Domain
	switch operator {
	case "=":
		domain = physical.DomainSingleValue(t, value)
	case "!=":
		domain = physical.DomainFromRanges(t, physical.LessThanRange(value), physical.GreaterThanRange(value))
	case "<":
		domain = physical.DomainFromRanges(t, physical.LessThanRange(value))
	case "<=":
		domain = physical.DomainFromRanges(t, physical.LessThanOrEqualRange(value))
	case ">":
		domain = physical.DomainFromRanges(t, physical.GreaterThanRange(value))
	case ">=":
		domain = physical.DomainFromRanges(t, physical.GreaterThanOrEqualRange(value))
	default:
		panic("unexhaustive operator match")
	}
	return column, domain, nil
}

// ParseLiteral parses a value of the given type. Strings may be wrapped in single or double quotes.
func ParseLiteral(t octosql.Type, literal string) (octosql.Value, error) {
	literal = strings.TrimSpace(literal)
	if literal == "" {
		return octosql.Value{}, errors.New("empty value")
	}
	unquoted, quoted := unquote(literal)

	switch t.TypeID {
	case octosql.TypeIDString:
		return octosql.NewString(unquoted), nil
	case octosql.TypeIDInt:
		if quoted {
			break
		}
		v, err := strconv.Atoi(literal)
		if err != nil {
			return octosql.Value{}, errors.Wrapf(err, "invalid integer %s", literal)
		}
		return octosql.NewInt(v), nil
	case octosql.TypeIDFloat:
		if quoted {
			break
		}
		v, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return octosql.Value{}, errors.Wrapf(err, "invalid float %s", literal)
		}
		return octosql.NewFloat(v), nil
	case octosql.TypeIDBoolean:
		if quoted {
			break
		}
		v, err := strconv.ParseBool(literal)
		if err != nil {
			return octosql.Value{}, errors.Wrapf(err, "invalid boolean %s", literal)
		}
		return octosql.NewBoolean(v), nil
	case octosql.TypeIDTime:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if v, err := time.Parse(layout, unquoted); err == nil {
				return octosql.NewTime(v.UTC()), nil
			}
		}
		// Slack style message timestamps.
		if v, err := rest.ParseEpoch(unquoted); err == nil {
			return octosql.NewTime(v), nil
		}
		return octosql.Value{}, errors.Errorf("invalid time %s, expected RFC3339, YYYY-MM-DD or seconds since the epoch", literal)
	}
	return octosql.Value{}, errors.Errorf("can't filter on values of type %s with %s", t, literal)
}

func unquote(literal string) (string, bool) {
	if len(literal) >= 2 {
		first, last := literal[0], literal[len(literal)-1]
		if (first == '\'' || first == '"') && first == last {
			return literal[1 : len(literal)-1], true
		}
	}
	return literal, false
}

// splitList splits a comma separated list, ignoring commas inside quotes.
func splitList(list string) ([]string, error) {
	var out []string
	var current strings.Builder
	var quote byte
	for i := 0; i < len(list); i++ {
		c := list[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
			current.WriteByte(c)
		case c == '\'' || c == '"':
			quote = c
			current.WriteByte(c)
		case c == ',':
			out = append(out, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, errors.New("unterminated quote")
	}
	out = append(out, strings.TrimSpace(current.String()))
	for i := range out {
		if out[i] == "" {
			return nil, errors.New("empty list element")
		}
	}
	return out, nil
}
