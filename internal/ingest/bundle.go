// Package ingest loads catalog bundles from the blob store into a record
// store and writes snapshots of a record store back out as bundles.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"modcurves/pkg/domain"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Bundle is the on-disk form of a catalog extract.
type Bundle struct {
	Curves []domain.CurveRecord   `json:"curves"`
	ECQ    []domain.ECRecord      `json:"ec_q"`
	ECNF   []domain.NFCurveRecord `json:"ec_nf"`
}

// Format is a bundle serialization.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from the content type, then the key extension.
// JSON is the default.
func FormatFor(key, contentType string) Format {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "yaml") {
		return FormatYAML
	}
	if strings.Contains(ct, "json") {
		return FormatJSON
	}
	switch strings.ToLower(path.Ext(key)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// ContentType returns the MIME type written for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Decode reads a bundle. YAML documents are converted to JSON first so that
// both formats share the records' JSON field names.
func Decode(r io.Reader, f Format) (Bundle, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Bundle{}, fmt.Errorf("read bundle: %w", err)
	}
	if f == FormatYAML {
		var tree any
		if err := yaml.Unmarshal(raw, &tree); err != nil {
			return Bundle{}, fmt.Errorf("decode yaml bundle: %w", err)
		}
		if raw, err = json.Marshal(tree); err != nil {
			return Bundle{}, fmt.Errorf("convert yaml bundle: %w", err)
		}
	}
	var b Bundle
	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}

// Encode writes b in format f.
func Encode(w io.Writer, b Bundle, f Format) error {
	if f == FormatYAML {
		return WriteYAML(w, b)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// WriteYAML writes v as YAML under its JSON field names. Integers keep their
// full 64-bit value.
func WriteYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return err
	}
	tree, err = resolveNumbers(tree)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tree); err != nil {
		return err
	}
	return enc.Close()
}

func resolveNumbers(v any) (any, error) {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %q: %w", t.String(), err)
		}
		return f, nil
	case map[string]any:
		for k, e := range t {
			r, err := resolveNumbers(e)
			if err != nil {
				return nil, err
			}
			t[k] = r
		}
	case []any:
		for i, e := range t {
			r, err := resolveNumbers(e)
			if err != nil {
				return nil, err
			}
			t[i] = r
		}
	}
	return v, nil
}
