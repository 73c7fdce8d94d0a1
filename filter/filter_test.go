package filter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/bgmbot/bangumi"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `HasTag("百合")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `HasTag("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown field",
			expression: `popularity > 3`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `score + 1`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `score >= 8 and year > 2000 and (HasTag("anime") or NameContains("clannad"))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			if tt.wantErr {
				var compErr *CompilationError
				require.True(t, errors.As(err, &compErr), "got %v", err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, f)
		})
	}
}

func TestFilter_Match(t *testing.T) {
	subject := bangumi.NewEntity([]byte(`{
		"id": 51,
		"name": "CLANNAD",
		"name_cn": "团子大家族",
		"type": 2,
		"date": "2007-10-04",
		"rating": {"score": 8.6, "total": 12345, "rank": 42},
		"tags": [{"name": "Anime"}, {"name": "Key"}]
	}`))
	person := bangumi.NewEntity([]byte(`{"id": 3, "type": 1, "career": ["seiyu", "artist"]}`))

	tests := []struct {
		name       string
		expression string
		entity     bangumi.Entity
		want       bool
	}{
		{"score threshold", `score >= 8`, subject, true},
		{"score too low", `score > 9`, subject, false},
		{"rank", `rank > 0 and rank <= 100`, subject, true},
		{"votes", `votes > 10000`, subject, true},
		{"year from date", `year == 2007`, subject, true},
		{"tag ignores case", `HasTag("anime")`, subject, true},
		{"missing tag", `HasTag("horror")`, subject, false},
		{"tags membership", `"Key" in tags`, subject, true},
		{"chinese name contains", `NameContains("大家族")`, subject, true},
		{"type", `type == 2`, subject, true},
		{"career", `HasCareer("Seiyu")`, person, true},
		{"missing fields are zero", `score == 0 and name == ""`, person, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)

			got, err := f.Match(tt.entity)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_Apply(t *testing.T) {
	page := &bangumi.Page{
		Data: []bangumi.Entity{
			bangumi.NewEntity([]byte(`{"id": 1, "rating": {"score": 9.1}}`)),
			bangumi.NewEntity([]byte(`{"id": 2, "rating": {"score": 5.0}}`)),
			bangumi.NewEntity([]byte(`{"id": 3, "rating": {"score": 7.5}}`)),
		},
		Total: 40,
	}

	f, err := Compile(`score >= 7`)
	require.NoError(t, err)

	out := f.Apply(page)
	require.Len(t, out.Data, 2)
	assert.Equal(t, int64(1), out.Data[0].ID())
	assert.Equal(t, int64(3), out.Data[1].ID())
	assert.Equal(t, 40, out.Total)
	assert.Len(t, page.Data, 3, "input page must not change")

	assert.True(t, f.Apply(nil).IsEmpty())
}

func TestCompile_ErrorLocation(t *testing.T) {
	_, err := Compile(`score > 1 and popularity > 3`)

	var compErr *CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, 1, compErr.Line)
	assert.Equal(t, 15, compErr.Column)
	assert.Contains(t, compErr.Reason, "popularity")
	assert.Contains(t, err.Error(), "line 1, column 15")

	_, err = Compile("")
	require.ErrorAs(t, err, &compErr)
	assert.Zero(t, compErr.Line)
	assert.Equal(t, `filter "": empty expression`, err.Error())
}

func TestFilter_MatchEvaluationError(t *testing.T) {
	f, err := Compile(`tags[5] == "x"`)
	require.NoError(t, err)

	e := bangumi.NewEntity([]byte(`{"id": 42, "name": "CLANNAD", "tags": []}`))
	ok, err := f.Match(e)
	assert.False(t, ok)

	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, int64(42), evalErr.EntityID)
	assert.Equal(t, "CLANNAD", evalErr.EntityName)
	assert.Contains(t, err.Error(), `filter "tags[5] == \"x\"" failed on CLANNAD (id 42)`)

	assert.True(t, f.Apply(&bangumi.Page{Data: []bangumi.Entity{e}, Total: 1}).IsEmpty())
}

func TestCompiler_Cache(t *testing.T) {
	c := NewCompiler(WithCache(2))

	f1, err := c.Compile(`score > 1`)
	require.NoError(t, err)
	f2, err := c.Compile(` score > 1 `)
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = c.Compile(`score > 2`)
	require.NoError(t, err)
	_, err = c.Compile(`score > 3`)
	require.NoError(t, err)
	assert.Equal(t, 2, c.CacheSize())

	_, err = c.Compile(`bad syntax (`)
	require.Error(t, err)
	assert.Equal(t, 2, c.CacheSize(), "failures are not cached")

	assert.Equal(t, 0, NewCompiler().CacheSize())
}

func TestNewEnv(t *testing.T) {
	env := NewEnv(bangumi.NewEntity([]byte(`{"id": 9, "date": "20xx", "rank": 12, "tags": [{"name": ""}, {"name": "a"}]}`)))

	assert.Equal(t, int64(9), env.ID)
	assert.Equal(t, 0, env.Year)
	assert.Equal(t, int64(12), env.Rank)
	assert.Equal(t, []string{"a"}, env.Tags)
}
