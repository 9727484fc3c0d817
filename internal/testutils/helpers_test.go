package testutils

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
)

func TestNewMemoryStore(t *testing.T) {
	mem := NewMemoryStore(t, Section(1, "a", "x"), Page(2, "home", "y"))

	records, err := mem.Query(context.Background(), section.Query{Kind: section.KindSection})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].Slug)
}

func TestWriteFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	WriteFile(t, fsys, "/uploads/2024/a.css", "body{}")

	data, err := afero.ReadFile(fsys, "/uploads/2024/a.css")
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(data))
}

func TestFailingStore(t *testing.T) {
	var s section.Store = FailingStore{}

	_, err := s.Query(context.Background(), section.Query{})
	assert.True(t, errors.IsStore(err))
	assert.Error(t, s.SetMeta(context.Background(), 1, "k", "v"))
}
