package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/okian/folio/internal/domain/model"
)

// ReadDocuments decodes a YAML or JSON document file. The file is either a
// list of documents that each carry _type, or a mapping from type tag to a
// list of documents. Documents keep their file order within a tag.
func ReadDocuments(r io.Reader) (map[model.TypeTag][]Document, error) {
	var raw any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return map[model.TypeTag][]Document{}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	out := make(map[model.TypeTag][]Document)
	add := func(item any, fallback model.TypeTag) error {
		body, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		}
		doc, err := NewDocument(body, fallback)
		if err != nil {
			return err
		}
		if fallback != "" && doc.Type != fallback {
			return fmt.Errorf("%w: %s is %q under %q", ErrTypeMismatch, doc.ID, doc.Type, fallback)
		}
		out[doc.Type] = append(out[doc.Type], doc)
		return nil
	}

	switch v := raw.(type) {
	case nil:
	case []any:
		for _, item := range v {
			if err := add(item, ""); err != nil {
				return nil, err
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			if !model.TypeTag(key).Valid() {
				return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidDocument, key)
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			list, ok := v[key].([]any)
			if !ok && v[key] != nil {
				return nil, fmt.Errorf("%w: %q is not a list", ErrInvalidDocument, key)
			}
			out[model.TypeTag(key)] = []Document{}
			for _, item := range list {
				if err := add(item, model.TypeTag(key)); err != nil {
					return nil, err
				}
			}
		}
	default:
		return nil, fmt.Errorf("%w: expected a list or a mapping of documents", ErrInvalidDocument)
	}
	return out, nil
}

// WriteDocuments writes docs as an indented JSON object keyed by type tag.
// The output is accepted by ReadDocuments.
func WriteDocuments(w io.Writer, docs map[model.TypeTag][]json.RawMessage) error {
	out := make(map[string][]json.RawMessage, len(docs))
	for tag, list := range docs {
		if list == nil {
			list = []json.RawMessage{}
		}
		out[tag.String()] = list
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}
