package workflows

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/pkg/query"
	"github.com/JaimeStill/gallery/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "workflows", "w").
	Project("id", "ID").
	Project("title", "Title").
	Project("description", "Description").
	Project("detail", "Detail").
	Project("category", "Category").
	Project("complexity", "Complexity").
	Project("images", "Images").
	Project("workflow_json", "WorkflowJSON").
	Project("download_url", "DownloadURL").
	Project("is_custom", "IsCustom").
	Project("author_name", "AuthorName").
	Project("author_is_admin", "AuthorIsAdmin").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Join("public", "workflow_stats", "s", "LEFT JOIN", "s.workflow_id = w.id::text").
	ProjectExpr("COALESCE(s.views, 0)", "Views").
	ProjectExpr("COALESCE(s.downloads, 0)", "Downloads")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

var sortable = map[string]string{
	"title":     "Title",
	"createdAt": "CreatedAt",
	"updatedAt": "UpdatedAt",
	"views":     "Views",
	"downloads": "Downloads",
}

// Filters narrows workflow searches. Nil fields are ignored.
type Filters struct {
	Category   *Category           `json:"category,omitempty"`
	Complexity *catalog.Complexity `json:"complexity,omitempty"`
	IsCustom   *bool               `json:"isCustom,omitempty"`
}

func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Category", f.Category).
		WhereEquals("Complexity", f.Complexity).
		WhereEquals("IsCustom", f.IsCustom)
}

// FiltersFromQuery reads category, complexity and isCustom from URL query
// values. The pseudo categories "all" and "favorites" are not filters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" && c != "all" && c != "favorites" {
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

func scanWorkflow(s repository.Scanner) (Workflow, error) {
	var (
		w             Workflow
		detail        *string
		images        []byte
		payload       *string
		downloadURL   *string
		authorName    *string
		authorIsAdmin bool
	)

	err := s.Scan(
		&w.ID,
		&w.Title,
		&w.Description,
		&detail,
		&w.Category,
		&w.Complexity,
		&images,
		&payload,
		&downloadURL,
		&w.IsCustom,
		&authorName,
		&authorIsAdmin,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.Views,
		&w.Downloads,
	)
	if err != nil {
		return w, err
	}

	w.Detail = deref(detail)
	w.WorkflowJSON = deref(payload)
	w.DownloadURL = deref(downloadURL)
	w.Images = decodeImages(images)

	if authorName != nil {
		w.Author = &Author{Name: *authorName, IsAdmin: authorIsAdmin}
	}

	return w, nil
}

// decodeImages treats an unreadable image column as an empty list.
func decodeImages(data []byte) []string {
	images := []string{}
	if len(data) == 0 {
		return images
	}
	if err := json.Unmarshal(data, &images); err != nil || images == nil {
		return []string{}
	}
	return images
}

func encodeImages(images []string) ([]byte, error) {
	if images == nil {
		images = []string{}
	}
	return json.Marshal(images)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
