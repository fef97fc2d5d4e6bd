package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idfbuilder/internal/domain"
	"idfbuilder/internal/domain/models/idf"
)

func TestExtract_Scalar(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "trims surrounding space", raw: "  A short title \n", want: "A short title"},
		{name: "keeps prose verbatim", raw: "Here is the title: X", want: "Here is the title: X"},
		{name: "empty input", raw: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Extract(tt.raw, Scalar)
			assert.Equal(t, Scalar, v.Kind)
			assert.Equal(t, tt.want, v.Text)
		})
	}
}

func TestExtract_CommaList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "simple", raw: "sensor, battery ,  wearable", want: []string{"sensor", "battery", "wearable"}},
		{name: "drops empty pieces", raw: "a,, ,b,", want: []string{"a", "b"}},
		{name: "empty input", raw: "", want: []string{}},
		{name: "single value", raw: "  graphene ", want: []string{"graphene"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Extract(tt.raw, CommaList)
			assert.Equal(t, CommaList, v.Kind)
			assert.Equal(t, tt.want, []string(v.Items))
			for _, item := range v.Items {
				assert.NotEmpty(t, strings.TrimSpace(item))
			}
		})
	}
}

func TestExtract_CommaListRoundTrip(t *testing.T) {
	inputs := []string{
		"alpha, beta, gamma",
		" x ,y,,z ",
		"one",
		"",
	}

	for _, in := range inputs {
		first := Extract(in, CommaList)
		second := Extract(first.String(), CommaList)
		assert.Equal(t, first.Items, second.Items, "input %q", in)
	}
}

func TestRecordArrayText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "drops trailing note",
			raw:  `[{"title":"A"}] some note`,
			want: `[{"title":"A"}]`,
		},
		{
			name: "single quotes become double quotes",
			raw:  `[{'title':'A'}]`,
			want: `[{"title":"A"}]`,
		},
		{
			name: "nested arrays are balanced",
			raw:  `[{"title":"A","tags":["x",["y"]]},{"title":"B"}] trailing [ignored]`,
			want: `[{"title":"A","tags":["x",["y"]]},{"title":"B"}]`,
		},
		{
			name: "leading prose is dropped",
			raw:  "Here are the results:\n[{\"title\":\"A\"}]\nHope this helps.",
			want: `[{"title":"A"}]`,
		},
		{
			name: "no bracket keeps whole text",
			raw:  "  no data found  ",
			want: "no data found",
		},
		{
			name: "unbalanced keeps the rest",
			raw:  `[{"title":"A"}`,
			want: `[{"title":"A"}`,
		},
		{
			name: "empty input",
			raw:  "",
			want: "",
		},
		{
			name: "bracket inside a value ends early",
			raw:  `[{"title":"a ] b"}]`,
			want: `[{"title":"a ]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecordArrayText(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "'")
		})
	}
}

func TestRecordArrayText_IgnoresAnyTrailingContent(t *testing.T) {
	array := `[{"title":"A","authors":"B"},{"title":"C"}]`
	trailers := []string{"", " ok", "\n\nSources: [1] [2]", "]]]", " {\"x\":1}"}

	for _, trailer := range trailers {
		assert.Equal(t, array, RecordArrayText(array+trailer), "trailer %q", trailer)
	}
}

func TestDecodeRecords(t *testing.T) {
	t.Run("decodes model output", func(t *testing.T) {
		raw := "[{'title':'Smart Glove','authors':'Lee, K.','published':'journal','PublicationDate':'2021'}]\n\nThese are the most relevant works."
		var rows []idf.PriorArtItem
		require.NoError(t, DecodeRecords(raw, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "Smart Glove", rows[0].Title)
		assert.Equal(t, "2021", rows[0].PublicationDate)
	})

	t.Run("empty input is malformed", func(t *testing.T) {
		var rows []idf.PriorArtItem
		err := DecodeRecords("", &rows)
		assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
	})

	t.Run("null is malformed", func(t *testing.T) {
		rows := []idf.PublicationPlan{}
		for _, raw := range []string{"null", " NULL\n"} {
			err := DecodeRecords(raw, &rows)
			assert.True(t, errors.Is(err, domain.ErrMalformedResponse), raw)
		}
	})

	t.Run("empty array clears", func(t *testing.T) {
		rows := []idf.PriorArtItem{{Title: "old"}}
		require.NoError(t, DecodeRecords("[]", &rows))
		assert.Empty(t, rows)
	})

	t.Run("prose only is malformed", func(t *testing.T) {
		var rows []idf.DisclosureItem
		err := DecodeRecords("I could not find any disclosures.", &rows)
		assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
		assert.Nil(t, rows)
	})
}

func TestObjectText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare object", raw: `{"title":"X"}`, want: `{"title":"X"}`},
		{name: "fenced", raw: "```json\n{\"title\":\"X\"}\n```", want: `{"title":"X"}`},
		{name: "with prose", raw: "Sure! {\"a\":{\"b\":1}} Let me know.", want: `{"a":{"b":1}}`},
		{name: "no braces", raw: " nothing ", want: "nothing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ObjectText(tt.raw)
			assert.Equal(t, tt.want, got)
			if strings.HasPrefix(tt.want, "{") {
				assert.True(t, json.Valid([]byte(got)))
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{Scalar, CommaList, RecordArray} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("matrix")
	assert.Error(t, err)
}
