package filterexpr

import (
	"errors"
	"fmt"
	"strings"
)

// maxOrderKeys caps the number of caller-supplied ordering keys.
const maxOrderKeys = 2

// OrderSchema whitelists the ordering keys of a resource. Columns maps each
// public key to its SQL expression. Tiebreak is always appended last so
// paging stays stable.
type OrderSchema struct {
	Default  []OrderTerm
	Columns  map[string]string
	Tiebreak OrderTerm
}

// OrderTerm is one resolved ORDER BY element.
type OrderTerm struct {
	Key    string
	Column string
	Desc   bool
}

func (t OrderTerm) String() string {
	if t.Desc {
		return t.Key + " desc"
	}
	return t.Key + " asc"
}

// ParseOrderBy validates raw ("created_at desc, id") against schema.
func ParseOrderBy(raw string, schema OrderSchema) ([]OrderTerm, error) {
	if schema.Tiebreak.Key == "" {
		return nil, errors.New("order schema needs a tiebreak key")
	}

	var terms []OrderTerm
	seen := map[string]bool{}
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 {
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}
		key := parts[0]
		column, ok := schema.Columns[key]
		if !ok {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate order key %q", key)
		}
		seen[key] = true

		term := OrderTerm{Key: key, Column: column}
		if len(parts) == 2 {
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				term.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key)
			}
		}
		terms = append(terms, term)
	}
	if len(terms) > maxOrderKeys {
		return nil, fmt.Errorf("order_by supports at most %d keys", maxOrderKeys)
	}

	if len(terms) == 0 {
		terms = append(terms, schema.Default...)
		for _, t := range terms {
			seen[t.Key] = true
		}
	}
	if !seen[schema.Tiebreak.Key] {
		terms = append(terms, schema.Tiebreak)
	}
	return terms, nil
}
