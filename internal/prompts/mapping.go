package prompts

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/query"
	"github.com/JaimeStill/gallery/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "prompts", "p").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Desc").
	Project("prompt", "Prompt").
	Project("category", "Category").
	Project("complexity", "Complexity").
	Project("type", "Type").
	Project("is_custom", "IsCustom").
	Project("tags", "Tags").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// sortable maps client sort keys to projection fields.
var sortable = map[string]string{
	"title":     "Title",
	"createdAt": "CreatedAt",
	"updatedAt": "UpdatedAt",
	"category":  "Category",
}

// Filters narrows prompt searches. Nil fields are ignored.
type Filters struct {
	Category   *Category           `json:"category,omitempty"`
	Complexity *catalog.Complexity `json:"complexity,omitempty"`
	IsCustom   *bool               `json:"isCustom,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("Complexity", f.Complexity).
		WhereEquals("IsCustom", f.IsCustom)
}

// FiltersFromQuery reads category, complexity and isCustom from URL query values.
// The pseudo category "all" means no category filter.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" && c != "all" {
		category := Category(c)
		f.Category = &category
	}

	if c := values.Get("complexity"); c != "" {
		complexity := catalog.Complexity(c)
		f.Complexity = &complexity
	}

	if v := values.Get("isCustom"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsCustom = &b
		}
	}

	return f
}

func sortFields(fields []query.SortField) []query.SortField {
	mapped := make([]query.SortField, 0, len(fields))
	for _, f := range fields {
		if name, ok := sortable[f.Field]; ok {
			mapped = append(mapped, query.SortField{Field: name, Descending: f.Descending})
		}
	}
	return mapped
}

func scanPrompt(s repository.Scanner) (Prompt, error) {
	var (
		p    Prompt
		desc *string
		tags []byte
	)

	err := s.Scan(
		&p.ID,
		&p.Title,
		&desc,
		&p.Prompt,
		&p.Category,
		&p.Complexity,
		&p.Type,
		&p.IsCustom,
		&tags,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if desc != nil {
		p.Desc = *desc
	}
	p.Tags = decodeTags(tags)

	return p, nil
}

// decodeTags treats an unreadable tag column as no tags.
func decodeTags(data []byte) []catalog.Tag {
	if len(data) == 0 {
		return nil
	}

	var tags []catalog.Tag
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil
	}
	return tags
}

func encodeTags(tags []catalog.Tag) ([]byte, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	return json.Marshal(tags)
}
