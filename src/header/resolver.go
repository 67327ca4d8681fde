// Package header resolves the first logical line (or, when no header is
// present, the shape of the first data row) into a stable list of named,
// ordered columns: duplicate-name policy, include/exclude filters, and
// default naming all live here.
//
// Grounded on kokes-smda's column/schema.go column-naming pass, generalised
// from "always trust the header row verbatim" to the spec's duplicate-name
// and filter policies.
package header

import (
	"errors"
	"fmt"
	"strings"

	"github.com/streamrow/csvcore/src/fieldsplit"
)

// DuplicatePolicy selects how repeated column names are resolved.
type DuplicatePolicy uint8

const (
	// ThrowException makes any repeated name fatal at resolution time.
	ThrowException DuplicatePolicy = iota
	// Rename suffixes the k-th occurrence (k>=2) as name_k, re-resolving on
	// collision with an existing name.
	Rename
	// UseFirstOccurrence drops every later duplicate; its source slot is
	// skipped on every row.
	UseFirstOccurrence
	// UseLastOccurrence renames earlier duplicates out of the way so the
	// last occurrence keeps the bare name.
	UseLastOccurrence
)

// TrimPolicy controls which raw field values get whitespace-trimmed before
// naming/conversion, honouring each field's was_quoted provenance.
type TrimPolicy uint8

const (
	TrimNone TrimPolicy = iota
	TrimUnquotedOnly
	TrimQuotedOnly
	TrimAll
)

func trim(v string, wasQuoted bool, policy TrimPolicy) string {
	switch policy {
	case TrimAll:
		return strings.TrimSpace(v)
	case TrimUnquotedOnly:
		if !wasQuoted {
			return strings.TrimSpace(v)
		}
	case TrimQuotedOnly:
		if wasQuoted {
			return strings.TrimSpace(v)
		}
	}
	return v
}

// ErrDuplicateHeader is returned under ThrowException when a column name
// repeats.
var ErrDuplicateHeader = errors.New("header: duplicate column name")

// Column describes one resolved, visible column.
type Column struct {
	Name        string
	Ordinal     int
	SourceIndex int
}

// Options configures a Resolver.
type Options struct {
	HasHeader       bool
	TrimPolicy      TrimPolicy
	DefaultPrefix   string // default "Column"
	DuplicatePolicy DuplicatePolicy
	IncludeColumns  []string // case-insensitive; empty means "all"
	ExcludeColumns  []string // case-insensitive; applied after include
}

func (o Options) defaultPrefix() string {
	if strings.TrimSpace(o.DefaultPrefix) == "" {
		return "Column"
	}
	return o.DefaultPrefix
}

// Resolver turns one split header row (or a synthetic one, for
// has_header=false) into the ordered, filtered Column list.
type Resolver struct {
	opts Options
}

// New returns a ready Resolver.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// ResolveHeaderRow resolves columns from an actual header row's split
// fields.
func (r *Resolver) ResolveHeaderRow(fields []fieldsplit.Field) ([]Column, error) {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = trim(f.Value, f.WasQuoted, r.opts.TrimPolicy)
	}
	return r.resolve(names)
}

// ResolveFromFirstDataRow synthesises Column0..ColumnN-1 names for
// has_header=false, where width is the first data row's field count.
func (r *Resolver) ResolveFromFirstDataRow(width int) ([]Column, error) {
	names := make([]string, width)
	prefix := r.opts.defaultPrefix()
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return r.resolve(names)
}

func (r *Resolver) resolve(names []string) ([]Column, error) {
	prefix := r.opts.defaultPrefix()
	resolved := make([]string, len(names))
	dropped := make([]bool, len(names))

	for i, n := range names {
		if strings.TrimSpace(n) == "" {
			n = fmt.Sprintf("%s%d", prefix, i)
		}
		resolved[i] = n
	}

	seen := make(map[string]int, len(resolved)) // lowercase name -> first index
	occurrence := make(map[string]int)           // lowercase name -> count so far

	for i, n := range resolved {
		key := strings.ToLower(n)
		occurrence[key]++
		k := occurrence[key]
		if k == 1 {
			seen[key] = i
			continue
		}

		switch r.opts.DuplicatePolicy {
		case ThrowException:
			return nil, fmt.Errorf("%w: %q", ErrDuplicateHeader, n)
		case UseFirstOccurrence:
			dropped[i] = true
		case UseLastOccurrence:
			first := seen[key]
			renamed, err := r.renameAway(resolved, first)
			if err != nil {
				return nil, err
			}
			resolved[first] = renamed
			seen[key] = i
		case Rename:
			renamed, err := r.synthesizeSuffixed(resolved, n, k)
			if err != nil {
				return nil, err
			}
			resolved[i] = renamed
		default:
			return nil, fmt.Errorf("header: unknown duplicate policy %v", r.opts.DuplicatePolicy)
		}
	}

	includeSet := lowerSet(r.opts.IncludeColumns)
	excludeSet := lowerSet(r.opts.ExcludeColumns)

	var cols []Column
	ordinal := 0
	for i, n := range resolved {
		if dropped[i] {
			continue
		}
		key := strings.ToLower(n)
		if len(includeSet) > 0 {
			if _, ok := includeSet[key]; !ok {
				continue
			}
		}
		if _, ok := excludeSet[key]; ok {
			continue
		}
		cols = append(cols, Column{Name: n, Ordinal: ordinal, SourceIndex: i})
		ordinal++
	}
	return cols, nil
}

// renameAway finds a name_k suffix for resolved[idx] that collides with
// nothing currently in resolved, used when UseLastOccurrence needs to move
// an earlier occurrence out of the way.
func (r *Resolver) renameAway(resolved []string, idx int) (string, error) {
	base := resolved[idx]
	for k := 2; k < 10000; k++ {
		candidate := fmt.Sprintf("%s_%d", base, k)
		if !containsFold(resolved, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("header: could not resolve a unique name for %q", base)
}

// synthesizeSuffixed builds name_k, bumping k further if that also
// collides with an existing name (Rename policy's "collision
// re-resolution").
func (r *Resolver) synthesizeSuffixed(resolved []string, base string, k int) (string, error) {
	for ; k < 10000; k++ {
		candidate := fmt.Sprintf("%s_%d", base, k)
		if !containsFold(resolved, candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("header: could not resolve a unique name for %q", base)
}

func containsFold(names []string, candidate string) bool {
	key := strings.ToLower(candidate)
	for _, n := range names {
		if strings.ToLower(n) == key {
			return true
		}
	}
	return false
}

func lowerSet(names []string) map[string]struct{} {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	return set
}
