// Package workflows implements the workflow collection: shareable n8n,
// ComfyUI and Dify templates with preview images, an optional JSON payload
// and view/download counters.
package workflows

import (
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
)

// Category names the automation tool a workflow targets.
type Category string

const (
	N8N     Category = "n8n"
	ComfyUI Category = "comfyui"
	Dify    Category = "dify"
	Other   Category = "other"
)

func Categories() []Category {
	return []Category{N8N, ComfyUI, Dify, Other}
}

// MaxImages bounds the preview images on a workflow.
const MaxImages = 4

type Author struct {
	Name    string `json:"name"`
	IsAdmin bool   `json:"isAdmin,omitempty"`
}

// Workflow is a catalog entry for an automation template. Views and
// Downloads always reflect the stats table.
type Workflow struct {
	ID           catalog.ID         `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Detail       string             `json:"detail,omitempty"`
	Category     Category           `json:"category"`
	Complexity   catalog.Complexity `json:"complexity"`
	Images       []string           `json:"images"`
	WorkflowJSON string             `json:"workflowJson,omitempty"`
	DownloadURL  string             `json:"downloadUrl,omitempty"`
	IsCustom     bool               `json:"isCustom"`
	Author       *Author            `json:"author,omitempty"`
	Views        int64              `json:"views"`
	Downloads    int64              `json:"downloads"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Stats holds the counters for one workflow id.
type Stats struct {
	Views     int64 `json:"views"`
	Downloads int64 `json:"downloads"`
}

// Counter selects which stat an increment applies to.
type Counter string

const (
	View     Counter = "view"
	Download Counter = "download"
)

// CreateCommand carries a new workflow. Complexity defaults to beginner,
// Images to an empty list and IsCustom to true.
type CreateCommand struct {
	Title        string             `json:"title" validate:"required"`
	Description  string             `json:"description" validate:"required"`
	Category     Category           `json:"category" validate:"required,oneof=n8n comfyui dify other"`
	Detail       string             `json:"detail,omitempty"`
	Complexity   catalog.Complexity `json:"complexity,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Images       []string           `json:"images,omitempty" validate:"max=4"`
	WorkflowJSON string             `json:"workflowJson,omitempty"`
	DownloadURL  string             `json:"downloadUrl,omitempty" validate:"omitempty,url"`
	IsCustom     *bool              `json:"isCustom,omitempty"`
	Author       *Author            `json:"author,omitempty"`
	UserID       catalog.ID         `json:"userId,omitempty"`
}

// Build returns the workflow cmd describes with zeroed counters. Used by
// stores that do not generate rows in SQL.
func (c CreateCommand) Build(id catalog.ID, now time.Time) Workflow {
	isCustom := true
	if c.IsCustom != nil {
		isCustom = *c.IsCustom
	}

	return Workflow{
		ID:           id,
		Title:        c.Title,
		Description:  c.Description,
		Detail:       c.Detail,
		Category:     c.Category,
		Complexity:   c.Complexity.OrDefault(),
		Images:       imagesOrEmpty(c.Images),
		WorkflowJSON: c.WorkflowJSON,
		DownloadURL:  c.DownloadURL,
		IsCustom:     isCustom,
		Author:       c.Author,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// UpdateCommand is a partial update. Nil fields are left unchanged.
type UpdateCommand struct {
	Title        *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Description  *string             `json:"description,omitempty" validate:"omitempty,min=1"`
	Category     *Category           `json:"category,omitempty" validate:"omitempty,oneof=n8n comfyui dify other"`
	Detail       *string             `json:"detail,omitempty"`
	Complexity   *catalog.Complexity `json:"complexity,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Images       *[]string           `json:"images,omitempty" validate:"omitempty,max=4"`
	WorkflowJSON *string             `json:"workflowJson,omitempty"`
	DownloadURL  *string             `json:"downloadUrl,omitempty"`
	IsCustom     *bool               `json:"isCustom,omitempty"`
	Author       *Author             `json:"author,omitempty"`
}

func (c UpdateCommand) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Category == nil && c.Detail == nil &&
		c.Complexity == nil && c.Images == nil && c.WorkflowJSON == nil &&
		c.DownloadURL == nil && c.IsCustom == nil && c.Author == nil
}

// Apply copies the set fields of c onto w.
func (c UpdateCommand) Apply(w *Workflow) {
	if c.Title != nil {
		w.Title = *c.Title
	}
	if c.Description != nil {
		w.Description = *c.Description
	}
	if c.Category != nil {
		w.Category = *c.Category
	}
	if c.Detail != nil {
		w.Detail = *c.Detail
	}
	if c.Complexity != nil {
		w.Complexity = *c.Complexity
	}
	if c.Images != nil {
		w.Images = imagesOrEmpty(*c.Images)
	}
	if c.WorkflowJSON != nil {
		w.WorkflowJSON = *c.WorkflowJSON
	}
	if c.DownloadURL != nil {
		w.DownloadURL = *c.DownloadURL
	}
	if c.IsCustom != nil {
		w.IsCustom = *c.IsCustom
	}
	if c.Author != nil {
		author := *c.Author
		w.Author = &author
	}
}

func imagesOrEmpty(images []string) []string {
	if images == nil {
		return []string{}
	}
	return images
}
