// Package repository stores content documents locally, in memory or in
// SQLite, and serves them through the content.Source query interface.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// Document is one stored record: its type tag plus the raw JSON body.
type Document struct {
	ID   string
	Type model.TypeTag
	Body json.RawMessage
}

// Store is a writable content store.
type Store interface {
	content.Source

	// Put inserts documents or replaces them by id. New documents are
	// appended after the existing ones of their type; replaced documents keep
	// their position.
	Put(ctx context.Context, docs ...Document) error

	// Replace drops every document of tag and stores docs in their place.
	Replace(ctx context.Context, tag model.TypeTag, docs ...Document) error

	// Count returns the number of documents stored for tag.
	Count(ctx context.Context, tag model.TypeTag) (int, error)

	Close() error
}

type header struct {
	ID   string `json:"_id"`
	Type string `json:"_type"`
}

// documentIDs is the name space of ids derived from document content.
var documentIDs = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://folio/documents"))

// NewDocument builds a document from a JSON body. The id and type come from
// the body's _id and _type fields; fallbackType is used when _type is absent.
// A body without _id gets a name-based uuid of its type and compacted
// content, written back into the body, so importing the same record twice
// updates it in place.
func NewDocument(body []byte, fallbackType model.TypeTag) (Document, error) {
	var h header
	if err := json.Unmarshal(body, &h); err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	tag := model.TypeTag(strings.TrimSpace(h.Type))
	if tag == "" {
		tag = fallbackType
	}
	doc := Document{ID: strings.TrimSpace(h.ID), Type: tag, Body: json.RawMessage(body)}
	if doc.ID == "" {
		var err error
		if doc.ID, doc.Body, err = assignID(tag, body); err != nil {
			return Document{}, err
		}
	}
	return doc, doc.validate()
}

func assignID(tag model.TypeTag, body []byte) (string, json.RawMessage, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, body); err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(compact.Bytes(), &fields); err != nil || fields == nil {
		return "", nil, fmt.Errorf("%w: body is not an object", ErrInvalidDocument)
	}

	id := uuid.NewSHA1(documentIDs, append([]byte(tag.String()+"\n"), compact.Bytes()...)).String()
	fields["_id"], _ = json.Marshal(id)
	out, err := json.Marshal(fields)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return id, out, nil
}

func (d Document) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDocument)
	}
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q: %w", ErrInvalidDocument, d.Type, content.ErrUnknownTag)
	}
	if !json.Valid(d.Body) {
		return fmt.Errorf("%w: %s: body is not JSON", ErrInvalidDocument, d.ID)
	}
	return nil
}

func validateAll(docs []Document) error {
	for _, d := range docs {
		if err := d.validate(); err != nil {
			return err
		}
	}
	return nil
}
