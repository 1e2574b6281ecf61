package repository

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/okian/folio/internal/domain/model"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// FieldError is one schema violation inside a document.
type FieldError struct {
	Field   string
	Message string
}

// SchemaError lists the schema violations of one document.
type SchemaError struct {
	ID     string
	Type   model.TypeTag
	Errors []FieldError
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s does not match its schema:", e.Type, e.ID)
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, " %s: %s;", fe.Field, fe.Message)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Unwrap lets callers match ErrInvalidDocument.
func (e *SchemaError) Unwrap() error { return ErrInvalidDocument }

var (
	schemasOnce sync.Once
	schemas     map[model.TypeTag]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[model.TypeTag]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		out := make(map[model.TypeTag]*gojsonschema.Schema, len(model.Tags()))
		for _, tag := range model.Tags() {
			b, err := schemaFS.ReadFile("schemas/" + tag.String() + ".schema.json")
			if err != nil {
				schemasErr = fmt.Errorf("schema %s: %w", tag, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
			if err != nil {
				schemasErr = fmt.Errorf("schema %s: %w", tag, err)
				return
			}
			out[tag] = s
		}
		schemas = out
	})
	return schemas, schemasErr
}

// CheckSchema validates the body of d against the JSON schema of its type.
// Unknown fields are allowed; known fields must have the shape the sections
// decode.
func CheckSchema(d Document) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	s, ok := all[d.Type]
	if !ok {
		return fmt.Errorf("%w: no schema for %q", ErrInvalidDocument, d.Type)
	}
	result, err := s.Validate(gojsonschema.NewBytesLoader(d.Body))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, d.ID, err)
	}
	if result.Valid() {
		return nil
	}

	serr := &SchemaError{ID: d.ID, Type: d.Type, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		serr.Errors = append(serr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return serr
}
