package load

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoSchema is returned when the given paths contain no schema file.
var ErrNoSchema = errors.New("load: no schema files found")

// Load reads the schema files found at the given paths. A path may be a
// file or a directory, in which case every .yaml, .yml and .json file under
// it is loaded in lexical order.
func Load(paths ...string) ([]*Schema, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isSchemaFile(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load: walk %s: %w", p, err)
		}
	}
	if len(files) == 0 {
		return nil, ErrNoSchema
	}
	var schemas []*Schema
	for _, name := range files {
		buf, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
		doc, err := Parse(name, buf)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, doc.Entities...)
	}
	return schemas, nil
}

// Parse decodes a schema document. The format is selected by the file
// extension of name; JSON is also detected from the content.
func Parse(name string, buf []byte) (*Document, error) {
	doc := &Document{}
	if isJSON(name, buf) {
		dec := json.NewDecoder(bytes.NewReader(buf))
		dec.DisallowUnknownFields()
		if err := dec.Decode(doc); err != nil {
			return nil, fmt.Errorf("load: parse %s: %w", name, err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(buf))
		dec.KnownFields(true)
		if err := dec.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("load: parse %s: %w", name, err)
		}
	}
	var errs []error
	for _, s := range doc.Entities {
		s.Pos = name
		if s.Namespace == "" {
			s.Namespace = doc.Namespace
		}
		if err := s.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return doc, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func isJSON(name string, buf []byte) bool {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return true
	}
	b := bytes.TrimSpace(buf)
	return len(b) > 0 && b[0] == '{'
}
