package form

import (
	"fmt"
	"strings"
)

// Leaf is one data-bearing column of a form: an input field together with
// the submission-data key it writes to and the grouping labels above it.
type Leaf struct {
	Key         string
	Field       FieldSchema
	Category    string // label of the first-level sub-header, "" for top-level fields
	SubCategory string // label of the second-level sub-header, "" unless nested
}

// Leaves flattens a field schema into its data-bearing columns in render
// order. Top-level plain fields keep their field_name as key; fields under
// sub-headers get a synthesized path key
// field_<parent>_<subheader>_<leaf>[_<nested subheader>_<leaf>].
func Leaves(fields []FieldSchema) []Leaf {
	var out []Leaf
	for _, f := range fields {
		if !f.IsGroup() {
			out = append(out, Leaf{Key: f.FieldName, Field: f})
			continue
		}
		for _, sh := range f.SubHeaders {
			for _, inner := range sh.Fields {
				if !inner.IsGroup() {
					out = append(out, Leaf{
						Key:      pathKey(f.FieldName, sh.Name, inner.FieldName),
						Field:    inner,
						Category: sh.Label,
					})
					continue
				}
				for _, nsh := range inner.SubHeaders {
					for _, deep := range nsh.Fields {
						out = append(out, Leaf{
							Key:         pathKey(f.FieldName, sh.Name, inner.FieldName, nsh.Name, deep.FieldName),
							Field:       deep,
							Category:    sh.Label,
							SubCategory: nsh.Label,
						})
					}
				}
			}
		}
	}
	return out
}

func pathKey(parts ...string) string {
	return "field_" + strings.Join(parts, "_")
}

// Normalize regenerates every technical name from its label and renumbers
// field_order at each level. Client-supplied names are never trusted; the
// same labels always produce the same keys.
func Normalize(fields []FieldSchema) {
	normalizeLevel(fields)
}

func normalizeLevel(fields []FieldSchema) {
	for i := range fields {
		fields[i].FieldName = GenerateFieldName(fields[i].FieldLabel)
		fields[i].FieldOrder = i
		for j := range fields[i].SubHeaders {
			sh := &fields[i].SubHeaders[j]
			sh.Name = GenerateFieldName(sh.Label)
			normalizeLevel(sh.Fields)
		}
	}
}

// ValidationError collects every problem found in a submitted schema so the
// builder UI can surface them all at once.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "invalid form schema: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// ValidateSchema checks a normalized field schema. banks holds the names of
// existing data banks for select/radio reference checks.
func ValidateSchema(fields []FieldSchema, banks map[string]bool) error {
	verr := &ValidationError{}
	validateLevel(fields, banks, verr, "", 0)

	primaries := 0
	for _, f := range fields {
		if f.IsPrimaryColumn {
			primaries++
		}
	}
	if primaries > 1 {
		verr.add("at most one field may be the primary column, got %d", primaries)
	}

	if len(verr.Issues) > 0 {
		return verr
	}
	return nil
}

func validateLevel(fields []FieldSchema, banks map[string]bool, verr *ValidationError, scope string, depth int) {
	seen := make(map[string]bool, len(fields))
	numbers := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.FieldType == FieldNumber {
			numbers[f.FieldName] = true
		}
	}

	for _, f := range fields {
		where := f.FieldLabel
		if scope != "" {
			where = scope + " > " + f.FieldLabel
		}

		if strings.TrimSpace(f.FieldLabel) == "" {
			verr.add("field label must not be empty%s", scopeSuffix(scope))
			continue
		}
		if f.FieldName == "" {
			verr.add("label %q produces an empty field name", f.FieldLabel)
			continue
		}
		if seen[f.FieldName] {
			verr.add("duplicate field name %q%s", f.FieldName, scopeSuffix(scope))
		}
		seen[f.FieldName] = true

		if !ValidFieldType(f.FieldType) {
			verr.add("%s: unknown field type %q", where, f.FieldType)
		}

		switch f.FieldType {
		case FieldSelect, FieldRadio:
			if f.ReferenceDataName == nil || *f.ReferenceDataName == "" {
				verr.add("%s: %s fields require a reference data bank", where, f.FieldType)
			} else if !banks[*f.ReferenceDataName] {
				verr.add("%s: data bank %q does not exist", where, *f.ReferenceDataName)
			}
		case FieldAggregate:
			if len(f.AggregateFields) == 0 {
				verr.add("%s: aggregate fields must reference at least one source field", where)
			}
			for _, src := range f.AggregateFields {
				if !numbers[src] {
					verr.add("%s: aggregate source %q is not a sibling number field", where, src)
				}
			}
		}

		if f.IsSecondaryColumn && depth > 0 {
			verr.add("%s: only top-level fields can be secondary columns", where)
		}
		if f.IsPrimaryColumn && depth > 0 {
			verr.add("%s: only a top-level field can be the primary column", where)
		}

		if len(f.SubHeaders) > 0 {
			if depth >= 2 {
				verr.add("%s: sub-headers may nest at most two levels deep", where)
				continue
			}
			if depth == 0 && !f.IsSecondaryColumn {
				verr.add("%s: only secondary-column fields may carry sub-headers", where)
			}
			shSeen := make(map[string]bool, len(f.SubHeaders))
			for _, sh := range f.SubHeaders {
				if strings.TrimSpace(sh.Label) == "" || sh.Name == "" {
					verr.add("%s: sub-header labels must not be empty", where)
					continue
				}
				if shSeen[sh.Name] {
					verr.add("%s: duplicate sub-header %q", where, sh.Name)
				}
				shSeen[sh.Name] = true
				validateLevel(sh.Fields, banks, verr, where+" > "+sh.Label, depth+1)
			}
		}
	}
}

func scopeSuffix(scope string) string {
	if scope == "" {
		return ""
	}
	return " under " + scope
}
