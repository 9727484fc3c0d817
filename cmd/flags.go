package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// formatValue is a pflag.Value restricted to a fixed set of formats.
type formatValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*formatValue)(nil)

func newFormatValue(def string, allowed ...string) *formatValue {
	return &formatValue{value: def, allowed: allowed}
}

func (f *formatValue) String() string {
	return f.value
}

func (f *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range f.allowed {
		if s == a {
			f.value = s
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q (supported: %s)", s, strings.Join(f.allowed, ", "))
}

func (f *formatValue) Type() string {
	return "format"
}

// addOutputFlag registers -o/--output on cmd.
func addOutputFlag(cmd *cobra.Command, def string, allowed ...string) *formatValue {
	v := newFormatValue(def, allowed...)
	cmd.Flags().VarP(v, "output", "o", fmt.Sprintf("Output format (%s)", strings.Join(allowed, "|")))
	return v
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
