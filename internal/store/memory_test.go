package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
)

func seedMemory(t *testing.T, opts ...MemoryOption) *Memory {
	t.Helper()
	mem := NewMemory(opts...)
	records := []*section.Record{
		{ID: 1, Kind: section.KindSection, Slug: "welcome", Title: "Welcome", Body: "<p>Hi</p>", Tags: []string{"intro"}},
		{ID: 2, Kind: section.KindSection, Slug: "news", Title: "News", Tags: []string{"intro", "feed"}},
		{ID: 3, Kind: section.KindPage, Slug: "home", Title: "Home"},
	}
	for _, r := range records {
		_, err := mem.Put(r)
		require.NoError(t, err)
	}
	return mem
}

func TestMemory_Query(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query section.Query
		slugs []string
	}{
		{"by kind", section.Query{Kind: section.KindSection}, []string{"welcome", "news"}},
		{"by slug", section.Query{Kind: section.KindSection, Name: "news"}, []string{"news"}},
		{"slug of other kind", section.Query{Kind: section.KindSection, Name: "home"}, nil},
		{"by id", section.Query{ID: 3}, []string{"home"}},
		{"by tag", section.Query{Tag: "intro"}, []string{"welcome", "news"}},
		{"limit", section.Query{Kind: section.KindSection, Limit: 1}, []string{"welcome"}},
		{"no match", section.Query{Tag: "missing"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := mem.Query(ctx, tt.query)
			require.NoError(t, err)

			var slugs []string
			for _, r := range records {
				slugs = append(slugs, r.Slug)
			}
			assert.Equal(t, tt.slugs, slugs)
		})
	}
}

func TestMemory_RandomUsesInjectedSource(t *testing.T) {
	// Always swapping with index 0 reverses a two element slice.
	mem := seedMemory(t, WithRandom(func(n int) int { return 0 }))

	records, err := mem.Query(context.Background(), section.Query{Tag: "intro", Random: true, Limit: 1})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "news", records[0].Slug)
}

func TestMemory_ReturnsCopies(t *testing.T) {
	mem := seedMemory(t)

	records, err := mem.Query(context.Background(), section.Query{Name: "welcome"})
	require.NoError(t, err)
	records[0].Body = "mutated"
	records[0].Tags[0] = "mutated"

	again, err := mem.Query(context.Background(), section.Query{Name: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hi</p>", again[0].Body)
	assert.Equal(t, []string{"intro"}, again[0].Tags)
}

func TestMemory_PutRules(t *testing.T) {
	mem := seedMemory(t)

	stored, err := mem.Put(&section.Record{Kind: section.KindSection, Slug: "footer"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), stored.ID)

	_, err = mem.Put(&section.Record{Kind: section.KindSection, Slug: "welcome"})
	assert.Error(t, err, "duplicate slug within a kind")

	_, err = mem.Put(&section.Record{Kind: section.KindPage, Slug: "welcome"})
	assert.NoError(t, err, "same slug in another kind")

	_, err = mem.Put(&section.Record{Kind: section.KindPage})
	assert.Error(t, err)
}

func TestMemory_SetMeta(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	require.NoError(t, mem.SetMeta(ctx, 1, section.MetaStylesheet, "40"))
	require.NoError(t, mem.SetMeta(ctx, 1, section.MetaJavaScript, "41"))

	records, err := mem.Query(ctx, section.Query{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(40), records[0].StylesheetID)
	assert.Equal(t, int64(41), records[0].ScriptID)

	require.NoError(t, mem.SetMeta(ctx, 1, section.MetaStylesheet, ""))
	records, _ = mem.Query(ctx, section.Query{ID: 1})
	assert.Zero(t, records[0].StylesheetID)

	assert.True(t, errors.IsNotFound(mem.SetMeta(ctx, 99, section.MetaStylesheet, "1")))
	assert.Error(t, mem.SetMeta(ctx, 1, "other_key", "1"))
	assert.Error(t, mem.SetMeta(ctx, 1, section.MetaStylesheet, "abc"))
}

func TestMemory_Attachment(t *testing.T) {
	mem := NewMemory()
	mem.PutAttachment(&section.Attachment{ID: 40, Path: "css/welcome.css", MimeType: "text/css"})

	a, err := mem.Attachment(context.Background(), 40)
	require.NoError(t, err)
	assert.Equal(t, "css/welcome.css", a.Path)

	_, err = mem.Attachment(context.Background(), 41)
	assert.True(t, errors.IsNotFound(err))
}

func TestReloadable_Swap(t *testing.T) {
	first := seedMemory(t)
	second := NewMemory()
	r := NewReloadable(first)
	ctx := context.Background()

	records, err := r.Query(ctx, section.Query{Kind: section.KindSection})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	prev := r.Swap(second)
	assert.Same(t, first, prev)

	records, err = r.Query(ctx, section.Query{Kind: section.KindSection})
	require.NoError(t, err)
	assert.Empty(t, records)
}
