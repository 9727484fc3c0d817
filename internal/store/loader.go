package store

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ucf/section/internal/errors"
	"github.com/ucf/section/internal/section"
)

// AttachmentsFile lists the attachments of a content directory.
const AttachmentsFile = "attachments.yml"

// SectionsDir is the top-level directory whose files default to the
// section kind. Files anywhere else default to pages.
const SectionsDir = "sections"

var frontMatterDelim = []byte("---")

// frontMatter is the YAML header of a content file.
type frontMatter struct {
	ID         int64    `yaml:"id"`
	Kind       string   `yaml:"kind"`
	Slug       string   `yaml:"slug"`
	Title      string   `yaml:"title"`
	Tags       []string `yaml:"tags"`
	Stylesheet int64    `yaml:"stylesheet"`
	JavaScript int64    `yaml:"javascript"`
}

// IsContentFile reports whether name is loaded by LoadDir.
func IsContentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".html", ".htm":
		return true
	}
	return filepath.Base(name) == AttachmentsFile
}

// LoadDir reads a content directory into a new Memory store.
//
// Layout:
//
//	attachments.yml        list of {id, path, mime_type}
//	sections/welcome.html  front matter + body, kind ucf_section
//	home.md                front matter + body, kind page
//
// Records without an id are numbered after the highest explicit id, in
// lexical path order, so ids are stable between loads of the same tree.
func LoadDir(fsys afero.Fs, root string, opts ...MemoryOption) (*Memory, error) {
	mem := NewMemory(opts...)

	var files []string
	err := afero.Walk(fsys, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if p != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsContentFile(p) && filepath.Base(p) != AttachmentsFile {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking content directory %s: %w", root, err)
	}
	sort.Strings(files)

	if err := loadAttachments(fsys, root, mem); err != nil {
		return nil, err
	}

	var pending []*section.Record
	for _, file := range files {
		rec, err := loadContentFile(fsys, root, file)
		if err != nil {
			return nil, err
		}
		if rec.ID == 0 {
			pending = append(pending, rec)
			continue
		}
		if _, err := mem.Put(rec); err != nil {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	for _, rec := range pending {
		if _, err := mem.Put(rec); err != nil {
			return nil, fmt.Errorf("loading %s: %w", rec.Slug, err)
		}
	}

	return mem, nil
}

func loadAttachments(fsys afero.Fs, root string, mem *Memory) error {
	p := filepath.Join(root, AttachmentsFile)
	data, err := afero.ReadFile(fsys, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", p, err)
	}

	var attachments []section.Attachment
	if err := yaml.Unmarshal(data, &attachments); err != nil {
		return errors.NewValidationError(errors.ErrCodeFrontMatter, "invalid attachments file").
			WithContext("path", p)
	}
	for i := range attachments {
		if attachments[i].ID <= 0 || attachments[i].Path == "" {
			return errors.NewValidationError(errors.ErrCodeFrontMatter, "attachment needs an id and a path").
				WithContext("index", i)
		}
		mem.PutAttachment(&attachments[i])
	}
	return nil
}

func loadContentFile(fsys afero.Fs, root, file string) (*section.Record, error) {
	data, err := afero.ReadFile(fsys, file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	header, body, err := splitFrontMatter(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	var fm frontMatter
	if len(header) > 0 {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return nil, errors.NewValidationError(errors.ErrCodeFrontMatter, "invalid front matter").
				WithContext("path", file).
				WithContext("cause", err.Error())
		}
	}

	rel, err := filepath.Rel(root, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)

	rec := &section.Record{
		ID:           fm.ID,
		Kind:         fm.Kind,
		Slug:         fm.Slug,
		Title:        fm.Title,
		Body:         string(body),
		Tags:         fm.Tags,
		StylesheetID: fm.Stylesheet,
		ScriptID:     fm.JavaScript,
	}
	if rec.Kind == "" {
		rec.Kind = section.KindPage
		if strings.HasPrefix(rel, SectionsDir+"/") {
			rec.Kind = section.KindSection
		}
	}
	if rec.Slug == "" {
		base := path.Base(rel)
		rec.Slug = strings.TrimSuffix(base, path.Ext(base))
	}
	if rec.Title == "" {
		rec.Title = rec.Slug
	}
	return rec, nil
}

// splitFrontMatter separates a leading "---" delimited YAML header from the
// body. Files without a header are all body.
func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(data, append(append([]byte{}, frontMatterDelim...), '\n')) {
		return nil, data, nil
	}

	rest := data[len(frontMatterDelim)+1:]
	end := bytes.Index(rest, []byte("\n---\n"))
	switch {
	case end >= 0:
		return rest[:end], rest[end+len("\n---\n"):], nil
	case bytes.HasSuffix(rest, []byte("\n---")):
		return rest[:len(rest)-len("\n---")], nil, nil
	case bytes.HasPrefix(rest, []byte("---\n")):
		return nil, rest[len("---\n"):], nil
	default:
		return nil, nil, errors.NewValidationError(errors.ErrCodeFrontMatter, "unterminated front matter")
	}
}
