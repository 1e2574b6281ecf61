package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okian/folio/internal/domain/excerpt"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/internal/domain/section"
)

func TestReadDocumentsList(t *testing.T) {
	in := `
- _id: s1
  _type: skills
  name: Go
- _type: works
  title: folio
  tags:
    - name: go
      color: blue-text-gradient
- {"_id": "s2", "_type": "skills", "name": "SQL"}
`
	docs, err := ReadDocuments(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, docs[model.TagSkills], 2)
	require.Len(t, docs[model.TagWorks], 1)
	assert.Equal(t, "s1", docs[model.TagSkills][0].ID)
	assert.Equal(t, "s2", docs[model.TagSkills][1].ID)
	assert.NotEmpty(t, docs[model.TagWorks][0].ID, "missing id was not assigned")

	var w model.Work
	require.NoError(t, json.Unmarshal(docs[model.TagWorks][0].Body, &w))
	assert.Equal(t, "folio", w.Title)
	require.Len(t, w.Tags, 1)
	assert.Equal(t, "go", w.Tags[0].Name)
}

func TestReadDocumentsMapping(t *testing.T) {
	in := `{
  "experiences": [{"_id": "e1", "date": "2020 - 2022", "works": [{"name": "Engineer"}]}],
  "skills": [],
  "works": [{"_id": "w1", "title": "a"}, {"_id": "w2", "title": "b"}]
}`
	docs, err := ReadDocuments(strings.NewReader(in))
	require.NoError(t, err)
	assert.Len(t, docs[model.TagExperiences], 1)
	assert.Len(t, docs[model.TagWorks], 2)

	skills, ok := docs[model.TagSkills]
	assert.True(t, ok, "an empty list should still name its tag")
	assert.Empty(t, skills)
	assert.Equal(t, model.TagExperiences, docs[model.TagExperiences][0].Type)
}

func TestReadDocumentsRejects(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"unknown key":     {in: "projects: []", want: ErrInvalidDocument},
		"missing type":    {in: "- name: Go", want: ErrInvalidDocument},
		"type mismatch":   {in: "skills:\n  - _type: works\n    title: x", want: ErrTypeMismatch},
		"scalar":          {in: "42", want: ErrInvalidDocument},
		"not a list":      {in: "skills: Go", want: ErrInvalidDocument},
		"malformed input": {in: "- [", want: ErrInvalidDocument},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadDocuments(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestReadDocumentsEmpty(t *testing.T) {
	docs, err := ReadDocuments(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWriteDocumentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := NewMemoryStore(ctx, WithMetricsUpdateInterval(0))
	t.Cleanup(func() { _ = src.Close() })
	require.NoError(t, src.Put(ctx,
		mustDoc(t, `{"_id":"s1","_type":"skills","name":"Go"}`, ""),
		mustDoc(t, `{"_id":"s2","_type":"skills","name":"SQL"}`, ""),
	))

	raw := make(map[model.TypeTag][]json.RawMessage)
	for _, tag := range model.Tags() {
		docs, err := src.FetchAll(ctx, tag)
		require.NoError(t, err)
		raw[tag] = docs
	}

	var buf bytes.Buffer
	require.NoError(t, WriteDocuments(&buf, raw))
	docs, err := ReadDocuments(&buf)
	require.NoError(t, err)

	dst := NewMemoryStore(ctx, WithMetricsUpdateInterval(0))
	t.Cleanup(func() { _ = dst.Close() })
	for tag, list := range docs {
		require.NoError(t, dst.Replace(ctx, tag, list...))
	}
	assert.Equal(t, []string{"Go", "SQL"}, names(t, dst, model.TagSkills))
}

const idlessWorks = `
works:
  - title: folio
    description: Portfolio server
  - title: tracker
    description: Habit tracker
`

func TestReadDocumentsAssignsStableIDs(t *testing.T) {
	first, err := ReadDocuments(strings.NewReader(idlessWorks))
	require.NoError(t, err)
	second, err := ReadDocuments(strings.NewReader(idlessWorks))
	require.NoError(t, err)

	require.Len(t, first[model.TagWorks], 2)
	for i, d := range first[model.TagWorks] {
		assert.Equal(t, d.ID, second[model.TagWorks][i].ID, "same record, same id")

		var w model.Work
		require.NoError(t, json.Unmarshal(d.Body, &w))
		assert.Equal(t, d.ID, w.ID, "id is written into the body")
	}
	assert.NotEqual(t, first[model.TagWorks][0].ID, first[model.TagWorks][1].ID)
}

func TestMergeSameFileTwice(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for range 2 {
				docs, err := ReadDocuments(strings.NewReader(idlessWorks))
				require.NoError(t, err)
				require.NoError(t, s.Put(ctx, docs[model.TagWorks]...))
			}
			assert.Equal(t, 2, count(t, s, model.TagWorks))

			// a snapshot of the store merges back onto itself
			raw, err := s.FetchAll(ctx, model.TagWorks)
			require.NoError(t, err)
			var buf bytes.Buffer
			require.NoError(t, WriteDocuments(&buf, map[model.TypeTag][]json.RawMessage{model.TagWorks: raw}))
			docs, err := ReadDocuments(&buf)
			require.NoError(t, err)
			require.NoError(t, s.Put(ctx, docs[model.TagWorks]...))
			assert.Equal(t, 2, count(t, s, model.TagWorks))
		})
	}
}

func TestImportedWorksKeyByItem(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(ctx, WithMetricsUpdateInterval(0))
	t.Cleanup(func() { _ = s.Close() })
	docs, err := ReadDocuments(strings.NewReader(idlessWorks))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, docs[model.TagWorks]...))

	works := section.NewWorks(section.WithKeyMode(excerpt.KeyByItem))
	works.Load(ctx, s)
	cards := works.Cards()
	require.Len(t, cards, 2)
	for i, c := range cards {
		assert.Equal(t, docs[model.TagWorks][i].ID, c.Work.ID)
		assert.Equal(t, excerpt.KeyByItem.Key(i, c.Work.ID), c.Key)
		assert.NotEqual(t, "0", c.Key)
	}
}
