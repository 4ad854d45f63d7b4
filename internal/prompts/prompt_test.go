package prompts_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/gallery/internal/catalog"
	"github.com/JaimeStill/gallery/internal/prompts"
)

func ptr[T any](v T) *T { return &v }

func TestCreateCommandBuild(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got := prompts.CreateCommand{Title: "T", Prompt: "P", Category: prompts.MJ}.Build("1-2", now)

	want := prompts.Prompt{
		ID:         "1-2",
		Title:      "T",
		Prompt:     "P",
		Category:   prompts.MJ,
		Complexity: catalog.Beginner,
		Type:       prompts.TypeText,
		IsCustom:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}

	preset := prompts.CreateCommand{Title: "T", Prompt: "P", Category: prompts.MJ, IsCustom: ptr(false)}.Build("2", now)
	if preset.IsCustom {
		t.Error("explicit isCustom=false must be kept")
	}
}

func TestUpdateCommand(t *testing.T) {
	if !(prompts.UpdateCommand{}).Empty() {
		t.Error("zero command should be empty")
	}

	p := samplePrompt()
	before := p

	cmd := prompts.UpdateCommand{
		Desc: ptr(""),
		Tags: ptr([]catalog.Tag{}),
	}
	if cmd.Empty() {
		t.Fatal("command with fields should not be empty")
	}
	cmd.Apply(&p)

	if p.Desc != "" || len(p.Tags) != 0 {
		t.Errorf("Apply() did not clear fields: %+v", p)
	}
	if p.Title != before.Title || p.Prompt != before.Prompt {
		t.Errorf("Apply() changed unset fields")
	}
}

func TestFiltersFromQuery(t *testing.T) {
	tests := []struct {
		name   string
		values url.Values
		want   prompts.Filters
	}{
		{"empty", url.Values{}, prompts.Filters{}},
		{"all category is ignored", url.Values{"category": {"all"}}, prompts.Filters{}},
		{
			"every filter",
			url.Values{"category": {"roleplay"}, "complexity": {"advanced"}, "isCustom": {"false"}},
			prompts.Filters{
				Category:   ptr(prompts.Roleplay),
				Complexity: ptr(catalog.Advanced),
				IsCustom:   ptr(false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, prompts.FiltersFromQuery(tt.values)); diff != "" {
				t.Errorf("FiltersFromQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
