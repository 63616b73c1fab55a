package form

import (
	"fmt"
	"strconv"
)

// Column is one leaf column of a rendered report table.
type Column struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Type  FieldType `json:"type"`
}

// SubCategory is a second-level header group within a category.
type SubCategory struct {
	Label   string   `json:"label"`
	Columns []Column `json:"columns"`
}

// Category is a first-level header group. Columns holds leaves that sit
// directly under the category; SubCategories holds the nested groups. Leaf
// order within a category is own columns first, then sub-category columns.
type Category struct {
	Label         string        `json:"label"`
	Columns       []Column      `json:"columns"`
	SubCategories []SubCategory `json:"sub_categories,omitempty"`
}

// ColSpan is the number of leaf columns the category header spans.
func (c Category) ColSpan() int {
	n := len(c.Columns)
	for _, sc := range c.SubCategories {
		n += len(sc.Columns)
	}
	return n
}

// TableStructure is the three-row grouped header layout derived from a form
// schema. It is the single source of truth for every report renderer: the
// JSON table endpoint, the CSV exporter and the PDF exporter all consume it
// so the column order can never drift between formats.
type TableStructure struct {
	Primary    *Column    `json:"primary,omitempty"`
	Standalone []Column   `json:"standalone"`
	Categories []Category `json:"categories"`
}

// DeriveTableStructure computes the grouped layout for a schema. Categories
// with the same label are merged across secondary-column fields, preserving
// first-appearance order; the same applies to sub-categories within a
// category.
func DeriveTableStructure(fields []FieldSchema) TableStructure {
	var t TableStructure
	catIdx := make(map[string]int)

	for _, leaf := range Leaves(fields) {
		col := Column{Key: leaf.Key, Label: leaf.Field.FieldLabel, Type: leaf.Field.FieldType}

		if leaf.Category == "" {
			if leaf.Field.IsPrimaryColumn && t.Primary == nil {
				c := col
				t.Primary = &c
			} else {
				t.Standalone = append(t.Standalone, col)
			}
			continue
		}

		i, ok := catIdx[leaf.Category]
		if !ok {
			i = len(t.Categories)
			catIdx[leaf.Category] = i
			t.Categories = append(t.Categories, Category{Label: leaf.Category})
		}
		cat := &t.Categories[i]

		if leaf.SubCategory == "" {
			cat.Columns = append(cat.Columns, col)
			continue
		}
		j := -1
		for k := range cat.SubCategories {
			if cat.SubCategories[k].Label == leaf.SubCategory {
				j = k
				break
			}
		}
		if j < 0 {
			j = len(cat.SubCategories)
			cat.SubCategories = append(cat.SubCategories, SubCategory{Label: leaf.SubCategory})
		}
		cat.SubCategories[j].Columns = append(cat.SubCategories[j].Columns, col)
	}
	return t
}

// LeafColumns returns every leaf column in render order: primary column,
// standalone fields, then each category's own columns followed by its
// sub-category columns.
func (t TableStructure) LeafColumns() []Column {
	var out []Column
	if t.Primary != nil {
		out = append(out, *t.Primary)
	}
	out = append(out, t.Standalone...)
	for _, c := range t.Categories {
		out = append(out, c.Columns...)
		for _, sc := range c.SubCategories {
			out = append(out, sc.Columns...)
		}
	}
	return out
}

// SubRowLabels returns the middle header row for category leaf columns:
// empty strings for columns directly under a category, the sub-category
// label for nested ones.
func (t TableStructure) SubRowLabels() []string {
	var out []string
	for _, c := range t.Categories {
		for range c.Columns {
			out = append(out, "")
		}
		for _, sc := range c.SubCategories {
			for range sc.Columns {
				out = append(out, sc.Label)
			}
		}
	}
	return out
}

// ProjectRow maps one submission's data onto the leaf column order,
// formatting every cell for display.
func (t TableStructure) ProjectRow(data map[string]any) []string {
	cols := t.LeafColumns()
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = CellString(data[c.Key])
	}
	return row
}

// CellString renders a submission value for tabular output. Missing values
// become empty cells, never "0" or "null".
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
