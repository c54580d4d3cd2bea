package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/sjson"
)

func TestNumber(t *testing.T) {
	doc := MustParse(`{
		"int": 3000000,
		"float": 120.5,
		"neg": -2.25,
		"single": [50.0],
		"multi": [7, 8, 9],
		"empty": [],
		"nested_seq": [[1]],
		"seq_of_map": [{"v":1}],
		"numeric_string": " 12.5 ",
		"word": "none",
		"nan_string": "NaN",
		"inf_string": "+Inf",
		"yes": true,
		"no": false,
		"null": null,
		"map": {"value": 1}
	}`)

	tests := []struct {
		key  string
		want float64
	}{
		{"int", 3000000},
		{"float", 120.5},
		{"neg", -2.25},
		{"single", 50},
		{"multi", 7},
		{"empty", -1},
		{"nested_seq", -1},
		{"seq_of_map", -1},
		{"numeric_string", 12.5},
		{"word", -1},
		{"nan_string", -1},
		{"inf_string", -1},
		{"yes", 1},
		{"no", 0},
		{"null", -1},
		{"map", -1},
		{"missing", -1},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Number(doc.Get(tt.key), -1))
		})
	}
}

func TestString(t *testing.T) {
	doc := MustParse(`{"s":"1836.1.1","n":1836,"f":1.5,"b":false,"seq":["FRA"],"m":{"a":1},"z":null}`)

	assert.Equal(t, "1836.1.1", String(doc.Get("s"), "def"))
	assert.Equal(t, "1836", String(doc.Get("n"), "def"))
	assert.Equal(t, "1.5", String(doc.Get("f"), "def"))
	assert.Equal(t, "false", String(doc.Get("b"), "def"))
	assert.Equal(t, "FRA", String(doc.Get("seq"), "def"))
	assert.Equal(t, "def", String(doc.Get("m"), "def"))
	assert.Equal(t, "def", String(doc.Get("z"), "def"))
	assert.Equal(t, "def", String(doc.Get("missing"), "def"))
}

func TestExtract(t *testing.T) {
	doc := MustParse(`{"budget":{"weekly_income":[50.0]},"meta":{"date":"1836.1.1"}}`)

	assert.Equal(t, 50.0, Extract(doc, ParsePath("budget.weekly_income"), Numeric, 0.0))
	assert.Equal(t, 0.0, Extract(doc, ParsePath("budget.weekly_expenses"), Numeric, 0.0))
	assert.Equal(t, "1836.1.1", Extract(doc, ParsePath("meta.date"), Text, ""))
	assert.Equal(t, "", Extract(doc, ParsePath("game_date"), Text, ""))
	assert.Equal(t, "x", Extract(doc, ParsePath("meta.date"), ValueKind(99), "x"))
}

// TestExtractTotality replaces a numeric field with every incompatible shape
// and checks that extraction degrades to the default instead of failing.
func TestExtractTotality(t *testing.T) {
	const base = `{"country":{"gdp":120.5,"budget":{"weekly_income":[50.0]}}}`
	paths := []string{"country.gdp", "country.budget.weekly_income", "country.budget"}
	shapes := map[string]string{
		"mapping":          `{"value":120.5}`,
		"empty mapping":    `{}`,
		"empty sequence":   `[]`,
		"sequence of maps": `[{"x":1}]`,
		"null":             `null`,
		"word":             `"unknown"`,
	}

	for _, p := range paths {
		for shapeName, raw := range shapes {
			t.Run(p+"/"+shapeName, func(t *testing.T) {
				mutated, err := sjson.SetRaw(base, p, raw)
				require.NoError(t, err)
				doc := MustParse(mutated)
				assert.NotPanics(t, func() {
					assert.Equal(t, 0.0, ExtractNumber(doc, ParsePath(p), 0))
				})
			})
		}

		t.Run(p+"/deleted", func(t *testing.T) {
			mutated, err := sjson.Delete(base, p)
			require.NoError(t, err)
			doc := MustParse(mutated)
			assert.Equal(t, 0.0, ExtractNumber(doc, ParsePath(p), 0))
		})
	}
}
