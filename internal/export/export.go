// Package export renders doc trees as JSON, YAML or aligned text.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/jward/doctree/internal/model"
)

// Formats lists the accepted output formats.
var Formats = []string{"json", "text", "yaml"}

// TagView is a serializable tag.
type TagView struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
}

// ParamView is a serializable parameter.
type ParamView struct {
	Name        string   `json:"name" yaml:"name"`
	DataType    []string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Optional    bool     `json:"optional,omitempty" yaml:"optional,omitempty"`
	Default     string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// ReturnView is a serializable return value.
type ReturnView struct {
	DataType    []string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// DocView is the serializable form of a doc and, down to the requested
// depth, its subtree.
type DocView struct {
	Name        string       `json:"name" yaml:"name"`
	Path        string       `json:"path" yaml:"path"`
	Kind        string       `json:"kind" yaml:"kind"`
	Brief       string       `json:"brief,omitempty" yaml:"brief,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Visibility  string       `json:"visibility" yaml:"visibility"`
	Version     string       `json:"version" yaml:"version"`
	Scope       string       `json:"scope,omitempty" yaml:"scope,omitempty"`
	Object      string       `json:"object,omitempty" yaml:"object,omitempty"`
	DataType    []string     `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Alias       string       `json:"alias,omitempty" yaml:"alias,omitempty"`
	Org         string       `json:"org,omitempty" yaml:"org,omitempty"`
	Params      []ParamView  `json:"params,omitempty" yaml:"params,omitempty"`
	Returns     []ReturnView `json:"returns,omitempty" yaml:"returns,omitempty"`
	Extends     []string     `json:"extends,omitempty" yaml:"extends,omitempty"`
	Fires       []string     `json:"fires,omitempty" yaml:"fires,omitempty"`
	Tags        []TagView    `json:"tags,omitempty" yaml:"tags,omitempty"`
	File        string       `json:"file,omitempty" yaml:"file,omitempty"`
	Line        int          `json:"line,omitempty" yaml:"line,omitempty"`
	Children    []DocView    `json:"children,omitempty" yaml:"children,omitempty"`
}

// View converts d and its descendants down to depth levels. Depth 0 omits
// children; a negative depth is unlimited.
func View(t *model.Tree, d *model.Doc, depth int) DocView {
	v := DocView{
		Name:        d.Name,
		Path:        d.Path,
		Kind:        d.Kind.String(),
		Brief:       d.Brief,
		Description: d.Description,
		Visibility:  string(d.Visibility),
		Version:     string(d.Version),
		Fires:       d.Fires,
		File:        d.Loc.File,
		Line:        d.Loc.Line,
	}
	for _, tag := range d.Tags {
		v.Tags = append(v.Tags, TagView{Name: tag.Name, Value: tag.Value})
	}

	switch det := d.Detail.(type) {
	case *model.ClassDetail:
		v.Params = paramViews(det.Params)
		v.Extends = det.Extends
	case *model.FunctionDetail:
		v.Params = paramViews(det.Params)
		v.Scope = string(det.Scope)
		for _, r := range det.Returns {
			v.Returns = append(v.Returns, ReturnView{DataType: r.DataType, Description: r.Description})
		}
	case *model.PropertyDetail:
		v.Scope = string(det.Scope)
		v.Object = det.Object
		v.DataType = det.DataType
	case *model.TypedefDetail:
		v.Alias = det.Alias
		v.DataType = det.DataType
		if org := t.Get(det.Org); org != nil {
			v.Org = org.Path
		}
	}

	if depth != 0 {
		for _, c := range t.Children(d) {
			v.Children = append(v.Children, View(t, c, depth-1))
		}
	}
	return v
}

// Views converts every top-level doc of t with unlimited depth.
func Views(t *model.Tree) []DocView {
	out := []DocView{}
	for _, c := range t.Children(t.Root()) {
		out = append(out, View(t, c, -1))
	}
	return out
}

func paramViews(params []model.Param) []ParamView {
	var out []ParamView
	for _, p := range params {
		out = append(out, ParamView{
			Name:        p.Name,
			DataType:    p.DataType,
			Description: p.Description,
			Optional:    p.Optional,
			Default:     p.Default,
		})
	}
	return out
}

// ValidateFormat checks that format is one of Formats.
func ValidateFormat(format string) error {
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("export: unknown format %q (valid: %s)", format, strings.Join(Formats, ", "))
}

// Write renders views in format.
func Write(w io.Writer, format string, views []DocView) error {
	switch format {
	case "json":
		return WriteJSON(w, views)
	case "yaml":
		return WriteYAML(w, views)
	case "text":
		return WriteText(w, views)
	default:
		return ValidateFormat(format)
	}
}

// WriteJSON writes views as indented JSON.
func WriteJSON(w io.Writer, views []DocView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("export: json: %w", err)
	}
	return nil
}

// WriteYAML writes views as a YAML sequence.
func WriteYAML(w io.Writer, views []DocView) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("export: yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: yaml: %w", err)
	}
	return nil
}

// WriteText writes one aligned row per doc, indenting names by depth.
func WriteText(w io.Writer, views []DocView) error {
	if len(views) == 0 {
		_, err := fmt.Fprintln(w, "No docs.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tKIND\tVISIBILITY\tLOCATION\tBRIEF")
	var row func(v DocView, depth int)
	row = func(v DocView, depth int) {
		loc := ""
		if v.File != "" {
			loc = fmt.Sprintf("%s:%d", v.File, v.Line)
		}
		fmt.Fprintf(tw, "%s%s\t%s\t%s\t%s\t%s\n",
			strings.Repeat("  ", depth), v.Name, v.Kind, v.Visibility, loc, v.Brief)
		for _, c := range v.Children {
			row(c, depth+1)
		}
	}
	for _, v := range views {
		row(v, 0)
	}
	return tw.Flush()
}
