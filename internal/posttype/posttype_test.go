package posttype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubFilters struct {
	labels     func(Input) Input
	args       func(Args) Args
	taxonomies []string
}

func (s stubFilters) FilterLabels(_ context.Context, in Input) Input {
	if s.labels == nil {
		return in
	}
	return s.labels(in)
}

func (s stubFilters) FilterPostTypeArgs(_ context.Context, args Args) Args {
	if s.args == nil {
		return args
	}
	return s.args(args)
}

func (s stubFilters) FilterTaxonomies(_ context.Context, taxonomies []string) []string {
	return append(taxonomies, s.taxonomies...)
}

func TestDefine_Defaults(t *testing.T) {
	def := Define(context.Background(), nil, DefaultInput(), nil)

	assert.Equal(t, Name, def.Name)
	assert.Equal(t, "Sections", def.Args.Labels["name"])
	assert.Equal(t, "Add New Section", def.Args.Labels["add_new_item"])
	assert.Equal(t, "Insert into section", def.Args.Labels["insert_into_item"])
	assert.Empty(t, def.Args.Taxonomies)
	assert.True(t, def.Args.Public)
}

func TestDefine_TitleCasesAndFillsInput(t *testing.T) {
	def := Define(context.Background(), nil, Input{Singular: "content block"}, nil)

	assert.Equal(t, "Content Block", def.Args.Labels["singular_name"])
	assert.Equal(t, "Sections", def.Args.Labels["name"])
}

func TestDefine_Filters(t *testing.T) {
	filters := stubFilters{
		labels: func(in Input) Input {
			in.Plural = "blocks"
			return in
		},
		args: func(a Args) Args {
			a.HasArchive = true
			return a
		},
		taxonomies: []string{"category", "unknown", "post_tag", "category"},
	}

	def := Define(context.Background(), filters, DefaultInput(), []string{"post_tag", "category"})

	assert.Equal(t, "Blocks", def.Args.Labels["name"])
	assert.Equal(t, "Filter blocks list", def.Args.Labels["filter_items_list"])
	assert.True(t, def.Args.HasArchive)
	assert.Equal(t, []string{"category", "post_tag"}, def.Args.Taxonomies)
}
