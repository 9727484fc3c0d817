// Package posttype describes the section content type: its labels, its
// registration arguments and the taxonomies associated with it. Each of the
// three passes through an extension point before the definition is final.
package posttype

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Name is the content type name of sections.
const Name = "ucf_section"

// Input is the seed the labels are generated from.
type Input struct {
	Singular   string `json:"singular" yaml:"singular"`
	Plural     string `json:"plural" yaml:"plural"`
	TextDomain string `json:"text_domain" yaml:"text_domain"`
}

// DefaultInput returns the stock label seed.
func DefaultInput() Input {
	return Input{Singular: "Section", Plural: "Sections", TextDomain: Name}
}

// Args are the registration arguments of the content type.
type Args struct {
	Label             string            `json:"label" yaml:"label"`
	Description       string            `json:"description" yaml:"description"`
	Labels            map[string]string `json:"labels" yaml:"labels"`
	Supports          []string          `json:"supports" yaml:"supports"`
	Taxonomies        []string          `json:"taxonomies" yaml:"taxonomies"`
	Hierarchical      bool              `json:"hierarchical" yaml:"hierarchical"`
	Public            bool              `json:"public" yaml:"public"`
	ShowUI            bool              `json:"show_ui" yaml:"show_ui"`
	ShowInMenu        bool              `json:"show_in_menu" yaml:"show_in_menu"`
	MenuPosition      int               `json:"menu_position" yaml:"menu_position"`
	MenuIcon          string            `json:"menu_icon" yaml:"menu_icon"`
	ShowInAdminBar    bool              `json:"show_in_admin_bar" yaml:"show_in_admin_bar"`
	ShowInNavMenus    bool              `json:"show_in_nav_menus" yaml:"show_in_nav_menus"`
	CanExport         bool              `json:"can_export" yaml:"can_export"`
	HasArchive        bool              `json:"has_archive" yaml:"has_archive"`
	ExcludeFromSearch bool              `json:"exclude_from_search" yaml:"exclude_from_search"`
	PubliclyQueryable bool              `json:"publicly_queryable" yaml:"publicly_queryable"`
	CapabilityType    string            `json:"capability_type" yaml:"capability_type"`
}

// Definition is the registered content type.
type Definition struct {
	Name string `json:"name" yaml:"name"`
	Args Args   `json:"args" yaml:"args"`
}

// Filters are the extension points consulted while building a Definition.
type Filters interface {
	FilterLabels(ctx context.Context, in Input) Input
	FilterPostTypeArgs(ctx context.Context, args Args) Args
	FilterTaxonomies(ctx context.Context, taxonomies []string) []string
}

// Define builds the section content type. Taxonomies returned by the
// taxonomies filter that are not in known are dropped.
func Define(ctx context.Context, filters Filters, in Input, known []string) Definition {
	in = normalize(in)
	if filters != nil {
		in = normalize(filters.FilterLabels(ctx, in))
	}

	args := Args{
		Label:             "Section",
		Description:       "Sections",
		Labels:            Labels(in),
		Supports:          []string{"title", "editor", "thumbnail", "revisions"},
		Taxonomies:        taxonomies(ctx, filters, known),
		Public:            true,
		ShowUI:            true,
		ShowInMenu:        true,
		MenuPosition:      5,
		MenuIcon:          "dashicons-welcome-widgets-menus",
		ShowInAdminBar:    true,
		ShowInNavMenus:    true,
		CanExport:         true,
		PubliclyQueryable: true,
		CapabilityType:    "post",
	}
	if filters != nil {
		args = filters.FilterPostTypeArgs(ctx, args)
	}

	return Definition{Name: Name, Args: args}
}

// Labels expands a label seed into the full label set.
func Labels(in Input) map[string]string {
	s, p := in.Singular, in.Plural
	lower := cases.Lower(language.English)
	return map[string]string{
		"name":                  p,
		"singular_name":         s,
		"menu_name":             p,
		"name_admin_bar":        s,
		"archives":              p + " Archives",
		"parent_item_colon":     "Parent " + s + ":",
		"all_items":             "All " + p,
		"add_new_item":          "Add New " + s,
		"add_new":               "Add New",
		"new_item":              "New " + s,
		"edit_item":             "Edit " + s,
		"update_item":           "Update " + s,
		"view_item":             "View " + s,
		"search_items":          "Search " + p,
		"not_found":             "Not found",
		"not_found_in_trash":    "Not found in Trash",
		"featured_image":        "Featured Image",
		"set_featured_image":    "Set featured image",
		"remove_featured_image": "Remove featured image",
		"use_featured_image":    "Use as featured image",
		"insert_into_item":      "Insert into " + lower.String(s),
		"uploaded_to_this_item": "Uploaded to this " + lower.String(s),
		"items_list":            p + " list",
		"items_list_navigation": p + " list navigation",
		"filter_items_list":     "Filter " + lower.String(p) + " list",
	}
}

func taxonomies(ctx context.Context, filters Filters, known []string) []string {
	var requested []string
	if filters != nil {
		requested = filters.FilterTaxonomies(ctx, nil)
	}

	exists := make(map[string]bool, len(known))
	for _, k := range known {
		exists[k] = true
	}

	result := make([]string, 0, len(requested))
	seen := make(map[string]bool, len(requested))
	for _, t := range requested {
		if exists[t] && !seen[t] {
			seen[t] = true
			result = append(result, t)
		}
	}
	return result
}

// normalize fills missing label seeds and title-cases them.
func normalize(in Input) Input {
	def := DefaultInput()
	title := cases.Title(language.English)
	if strings.TrimSpace(in.Singular) == "" {
		in.Singular = def.Singular
	}
	if strings.TrimSpace(in.Plural) == "" {
		in.Plural = def.Plural
	}
	if in.TextDomain == "" {
		in.TextDomain = def.TextDomain
	}
	in.Singular = title.String(strings.TrimSpace(in.Singular))
	in.Plural = title.String(strings.TrimSpace(in.Plural))
	return in
}
