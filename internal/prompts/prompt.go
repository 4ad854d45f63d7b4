// Package prompts implements the prompt collection: reusable text prompts
// grouped by category, with optional colored tags.
package prompts

import (
	"time"

	"github.com/JaimeStill/gallery/internal/catalog"
)

// Category groups prompts by the tool or task they target.
type Category string

const (
	Code     Category = "code"
	MJ       Category = "mj"
	Writing  Category = "writing"
	Roleplay Category = "roleplay"
	Business Category = "business"
	Custom   Category = "custom"
)

// Categories lists every storable category in display order.
func Categories() []Category {
	return []Category{Code, MJ, Writing, Roleplay, Business, Custom}
}

// TypeText is the only prompt type the catalog stores.
const TypeText = "text"

// Prompt is a catalog entry holding reusable prompt text.
type Prompt struct {
	ID         catalog.ID         `json:"id"`
	Title      string             `json:"title"`
	Desc       string             `json:"desc,omitempty"`
	Prompt     string             `json:"prompt"`
	Category   Category           `json:"category"`
	Complexity catalog.Complexity `json:"complexity"`
	Type       string             `json:"type"`
	IsCustom   bool               `json:"isCustom"`
	Tags       []catalog.Tag      `json:"tags,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

// CreateCommand carries a new prompt. Complexity defaults to beginner and
// IsCustom to true.
type CreateCommand struct {
	Title      string             `json:"title" validate:"required"`
	Desc       string             `json:"desc,omitempty"`
	Prompt     string             `json:"prompt" validate:"required"`
	Category   Category           `json:"category" validate:"required,oneof=code mj writing roleplay business custom"`
	Complexity catalog.Complexity `json:"complexity,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags       []catalog.Tag      `json:"tags,omitempty" validate:"max=4,dive"`
	IsCustom   *bool              `json:"isCustom,omitempty"`
	UserID     catalog.ID         `json:"userId,omitempty"`
}

// UpdateCommand is a partial update. Nil fields are left unchanged.
type UpdateCommand struct {
	Title      *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Desc       *string             `json:"desc,omitempty"`
	Prompt     *string             `json:"prompt,omitempty" validate:"omitempty,min=1"`
	Category   *Category           `json:"category,omitempty" validate:"omitempty,oneof=code mj writing roleplay business custom"`
	Complexity *catalog.Complexity `json:"complexity,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags       *[]catalog.Tag      `json:"tags,omitempty" validate:"omitempty,max=4,dive"`
	IsCustom   *bool               `json:"isCustom,omitempty"`
}

// Empty reports whether the command changes nothing.
func (c UpdateCommand) Empty() bool {
	return c.Title == nil && c.Desc == nil && c.Prompt == nil && c.Category == nil &&
		c.Complexity == nil && c.Tags == nil && c.IsCustom == nil
}

// Apply copies the set fields of c onto p.
func (c UpdateCommand) Apply(p *Prompt) {
	if c.Title != nil {
		p.Title = *c.Title
	}
	if c.Desc != nil {
		p.Desc = *c.Desc
	}
	if c.Prompt != nil {
		p.Prompt = *c.Prompt
	}
	if c.Category != nil {
		p.Category = *c.Category
	}
	if c.Complexity != nil {
		p.Complexity = *c.Complexity
	}
	if c.Tags != nil {
		p.Tags = *c.Tags
	}
	if c.IsCustom != nil {
		p.IsCustom = *c.IsCustom
	}
}

// Build returns the prompt cmd describes, with id and timestamps assigned
// by the caller. Used by stores that do not generate rows in SQL.
func (c CreateCommand) Build(id catalog.ID, now time.Time) Prompt {
	isCustom := true
	if c.IsCustom != nil {
		isCustom = *c.IsCustom
	}

	return Prompt{
		ID:         id,
		Title:      c.Title,
		Desc:       c.Desc,
		Prompt:     c.Prompt,
		Category:   c.Category,
		Complexity: c.Complexity.OrDefault(),
		Type:       TypeText,
		IsCustom:   isCustom,
		Tags:       c.Tags,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
