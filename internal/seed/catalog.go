// Package seed holds the built-in catalog and loads it into empty stores.
package seed

import (
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/prompts"
	"github.com/JaimeStill/gallery/internal/workflows"
)

//go:embed data/catalog.yaml
var catalogYAML []byte

type TagEntry struct {
	Text  string `yaml:"text"`
	Color string `yaml:"color"`
}

type PromptEntry struct {
	ID         int64      `yaml:"id"`
	Title      string     `yaml:"title"`
	Desc       string     `yaml:"desc"`
	Prompt     string     `yaml:"prompt"`
	Category   string     `yaml:"category"`
	Complexity string     `yaml:"complexity"`
	Tags       []TagEntry `yaml:"tags"`
}

type WorkflowEntry struct {
	ID          int64    `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Detail      string   `yaml:"detail"`
	Category    string   `yaml:"category"`
	Complexity  string   `yaml:"complexity"`
	Images      []string `yaml:"images"`
	AgeDays     int      `yaml:"age_days"`
	Views       int64    `yaml:"views"`
	Downloads   int64    `yaml:"downloads"`
}

// Catalog is the decoded built-in data set.
type Catalog struct {
	Prompts   []PromptEntry   `yaml:"prompts"`
	Workflows []WorkflowEntry `yaml:"workflows"`
}

// Load decodes the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse seed catalog: %w", err)
	}
	return &c, nil
}

// PromptCommands returns create commands for the built-in prompts. Seeded
// items are not custom.
func (c *Catalog) PromptCommands() []prompts.CreateCommand {
	isCustom := false
	cmds := make([]prompts.CreateCommand, 0, len(c.Prompts))
	for _, e := range c.Prompts {
		cmds = append(cmds, prompts.CreateCommand{
			Title:      e.Title,
			Desc:       e.Desc,
			Prompt:     e.Prompt,
			Category:   prompts.Category(e.Category),
			Complexity: catalog.Complexity(e.Complexity),
			Tags:       e.tags(),
			IsCustom:   &isCustom,
		})
	}
	return cmds
}

// WorkflowCommands returns create commands for the built-in workflows.
func (c *Catalog) WorkflowCommands() []workflows.CreateCommand {
	isCustom := false
	cmds := make([]workflows.CreateCommand, 0, len(c.Workflows))
	for _, e := range c.Workflows {
		cmds = append(cmds, e.command(&isCustom))
	}
	return cmds
}

// LocalPrompts returns the built-in prompts as stored items with their fixed
// ids, in catalog order, for seeding an empty local store.
func (c *Catalog) LocalPrompts(now time.Time) []prompts.Prompt {
	items := make([]prompts.Prompt, 0, len(c.Prompts))
	for i, cmd := range c.PromptCommands() {
		items = append(items, cmd.Build(entryID(c.Prompts[i].ID), now))
	}
	return items
}

// LocalWorkflows returns the built-in workflows with their fixed ids, ages
// and counters.
func (c *Catalog) LocalWorkflows(now time.Time) []workflows.Workflow {
	isCustom := false
	items := make([]workflows.Workflow, 0, len(c.Workflows))
	for _, e := range c.Workflows {
		created := now.Add(-time.Duration(e.AgeDays) * 24 * time.Hour)
		w := e.command(&isCustom).Build(entryID(e.ID), created)
		w.Views = e.Views
		w.Downloads = e.Downloads
		items = append(items, w)
	}
	return items
}

func (e PromptEntry) tags() []catalog.Tag {
	if len(e.Tags) == 0 {
		return nil
	}
	tags := make([]catalog.Tag, len(e.Tags))
	for i, t := range e.Tags {
		tags[i] = catalog.Tag{Text: t.Text, Color: t.Color}
	}
	return tags
}

func (e WorkflowEntry) command(isCustom *bool) workflows.CreateCommand {
	return workflows.CreateCommand{
		Title:       e.Title,
		Description: e.Description,
		Detail:      e.Detail,
		Category:    workflows.Category(e.Category),
		Complexity:  catalog.Complexity(e.Complexity),
		Images:      e.Images,
		IsCustom:    isCustom,
	}
}

func entryID(n int64) catalog.ID {
	return catalog.ID(strconv.FormatInt(n, 10))
}
