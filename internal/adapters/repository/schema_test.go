package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/folio/internal/domain/model"
)

func TestCheckSchema(t *testing.T) {
	valid := map[string]string{
		"experience": `{"_id":"e1","_type":"experiences","date":"2020","works":[{"name":"Engineer","companyImgUrl":{"_type":"image","asset":{"_ref":"image-abc-10x10-png"}}}]}`,
		"skill":      `{"_id":"s1","_type":"skills","name":"Go","icon":"https://img/go.svg"}`,
		"work":       `{"_id":"w1","_type":"works","title":"folio","tags":["go",{"name":"sql","color":"green-text-gradient"}],"imgUrl":null,"extra":1}`,
	}
	for name, body := range valid {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, CheckSchema(mustDoc(t, body, "")))
		})
	}

	invalid := map[string]string{
		"experience works not a list": `{"_id":"e1","_type":"experiences","works":{"name":"x"}}`,
		"skill name not a string":     `{"_id":"s1","_type":"skills","name":42}`,
		"work tag not a name":         `{"_id":"w1","_type":"works","tags":[7]}`,
		"work image a number":         `{"_id":"w1","_type":"works","imgUrl":3}`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			err := CheckSchema(mustDoc(t, body, ""))
			var serr *SchemaError
			require.True(t, errors.As(err, &serr), "expected a schema error, got %v", err)
			assert.NotEmpty(t, serr.Errors)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestCheckSchemaAcceptsEmptyDocuments(t *testing.T) {
	for _, tag := range model.Tags() {
		assert.NoError(t, CheckSchema(Document{ID: "x", Type: tag, Body: []byte(`{}`)}), "empty %s document", tag)
	}
}
