/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/suparena/docstore/attributes"
	storeerrors "github.com/suparena/docstore/errors"
	"github.com/suparena/docstore/records"
	"github.com/suparena/docstore/schema"
	"github.com/suparena/docstore/validation"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Definition is one attribute definition in a document.
type Definition struct {
	Key      string              `yaml:"key" json:"key"`
	DataType attributes.DataType `yaml:"dataType,omitempty" json:"dataType,omitempty"`
	Type     attributes.Type     `yaml:"type,omitempty" json:"type,omitempty"`
}

// Classification is a named classification schema. ID is optional; Apply
// lets the store assign one when it is empty.
type Classification struct {
	ID     string         `yaml:"id,omitempty" json:"id,omitempty"`
	Name   string         `yaml:"name" json:"name"`
	Schema *schema.Schema `yaml:"schema" json:"schema"`
}

// Document is the root of a schema file.
type Document struct {
	Definitions     []Definition     `yaml:"definitions" json:"definitions"`
	Sites           *schema.Schema   `yaml:"sites,omitempty" json:"sites,omitempty"`
	Classifications []Classification `yaml:"classifications,omitempty" json:"classifications,omitempty"`
}

// FormatOf picks the format from a file extension. Anything that is not
// .json is read as YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(b, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	return &doc, nil
}

// Attributes returns the definitions as records with defaults applied.
func (d *Document) Attributes() map[string]*records.Attribute {
	out := make(map[string]*records.Attribute, len(d.Definitions))
	for _, def := range d.Definitions {
		out[def.Key] = records.NewAttribute(def.Key, def.DataType, def.Type)
	}
	return out
}

// Finding is the set of problems found in one part of a document.
type Finding struct {
	// Section is "definitions", "sites" or "classification <name>".
	Section string
	Errors  storeerrors.ValidationErrors
}

// Report lists the findings of Check. It is empty for a valid document.
type Report []Finding

// Valid reports whether Check found nothing.
func (r Report) Valid() bool { return len(r) == 0 }

// Lines renders the findings as "section: message" lines.
func (r Report) Lines() []string {
	var out []string
	for _, f := range r {
		for _, m := range f.Errors.Messages() {
			out = append(out, f.Section+": "+m)
		}
	}
	return out
}

// Check validates the document offline. Definitions are checked with
// elevated access, so protected types are accepted.
func Check(doc *Document) Report {
	var report Report
	access := attributes.Access{Op: attributes.OpCreate, Elevated: true}

	var errs storeerrors.ValidationErrors
	seen := map[string]bool{}
	for _, def := range doc.Definitions {
		if def.Key != "" && seen[def.Key] {
			errs.Add(def.Key, fmt.Sprintf("duplicate definition '%s'", def.Key))
			continue
		}
		seen[def.Key] = true
		errs.Append(validation.Definition(records.NewAttribute(def.Key, def.DataType, def.Type), false, access))
	}
	if len(errs) > 0 {
		report = append(report, Finding{Section: "definitions", Errors: errs})
	}

	defs := doc.Attributes()
	if doc.Sites != nil {
		if errs := schema.ValidateDefinition(sitesName(doc.Sites), doc.Sites, nil, defs); len(errs) > 0 {
			report = append(report, Finding{Section: "sites", Errors: errs})
		}
	}

	names := map[string]bool{}
	for _, c := range doc.Classifications {
		section := "classification " + c.Name
		errs := schema.ValidateDefinition(c.Name, c.Schema, doc.Sites, defs)
		if c.Name != "" && names[c.Name] {
			errs.Add("name", "'name' is already used")
		}
		names[c.Name] = true
		if len(errs) > 0 {
			report = append(report, Finding{Section: section, Errors: errs})
		}
	}

	return report
}

// sitesName is the stored name of the sites schema, "sites" when unnamed.
func sitesName(s *schema.Schema) string {
	if s.Name == "" {
		return "sites"
	}
	return s.Name
}
