package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFarmList(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantErr   bool
	}{
		{name: "top-level array", body: `[{"farm_unique_no":"1"},{"farm_unique_no":["2-2"]}]`, wantCount: 2},
		{name: "wrapped in data", body: `{"data":[{"farm_unique_no":"1"}]}`, wantCount: 1},
		{name: "wrapped in items", body: `{"items":[]}`, wantCount: 0},
		{name: "empty array", body: `[]`, wantCount: 0},
		{name: "object without array", body: `{"message":"ok"}`, wantErr: true},
		{name: "scalar", body: `42`, wantErr: true},
		{name: "non-object record", body: `["a"]`, wantErr: true},
		{name: "malformed", body: `[{"farm_unique_no":`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			farms, err := ParseFarmList([]byte(tt.body))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, farms, tt.wantCount)
		})
	}
}

func TestParseAnimalRows(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <header><resultCode>00</resultCode></header>
  <body>
    <items>
      <row><animalNo>002012345678</animalNo><sexNm>암</sexNm></row>
      <row><animalNo> 002087654321 </animalNo></row>
      <row><sexNm>수</sexNm></row>
    </items>
  </body>
</response>`

	animals, err := ParseAnimalRows([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"002012345678", "002087654321"}, animals)
}

func TestParseAnimalRows_XMLForms(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "empty element does not take the next sibling's text",
			body: `<response><items><row><animalNo/><x>1</x></row><row><animalNo>A2</animalNo></row></items></response>`,
			want: []string{"A2"},
		},
		{
			name: "cdata content",
			body: `<response><items><row><animalNo><![CDATA[002012345678]]></animalNo></row></items></response>`,
			want: []string{"002012345678"},
		},
		{
			name: "leading byte order mark",
			body: "\xef\xbb\xbf<?xml version=\"1.0\" encoding=\"UTF-8\"?><response><items><row><animalNo>A1</animalNo></row></items></response>",
			want: []string{"A1"},
		},
		{
			name: "element with attributes",
			body: `<response><items><row><animalNo type="kr">A3</animalNo></row></items></response>`,
			want: []string{"A3"},
		},
		{
			name: "empty row element",
			body: `<response><items><row/><row><animalNo>A4</animalNo></row></items></response>`,
			want: []string{"A4"},
		},
		{
			name: "rows nested deeper",
			body: `<response><body><items><item><row><animalNo>A5</animalNo></row></item></items></body></response>`,
			want: []string{"A5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			animals, err := ParseAnimalRows([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, animals)
		})
	}
}

func TestParseAnimalRows_Malformed(t *testing.T) {
	_, err := ParseAnimalRows([]byte(`<response><items><row><animalNo>A1</row>`))
	assert.Error(t, err)
}

func TestParseMarkupMap_ByteOrderMark(t *testing.T) {
	m, err := ParseMarkupMap([]byte("\xef\xbb\xbf<response><header><resultCode>00</resultCode></header></response>"))
	require.NoError(t, err)
	assert.Contains(t, m, "response")
}

func TestParseAnimalRows_NoRowsIsEmptyNotFailure(t *testing.T) {
	animals, err := ParseAnimalRows([]byte(`<response><body><items></items></body></response>`))
	require.NoError(t, err)
	require.NotNil(t, animals)
	assert.Empty(t, animals)
}

func TestParseAnimalRows_NotMarkup(t *testing.T) {
	for _, body := range []string{"", "   ", `{"rows":[]}`, "internal error"} {
		_, err := ParseAnimalRows([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}

func TestParseMarkupMap(t *testing.T) {
	body := `<response><header><resultCode>00</resultCode></header><body><items><item><farmNm>행복농장</farmNm></item></items></body></response>`

	m, err := ParseMarkupMap([]byte(body))
	require.NoError(t, err)

	resp, ok := m["response"].(map[string]any)
	require.True(t, ok)
	header, ok := resp["header"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "00", header["resultCode"])
}

func TestParseMarkupMap_Malformed(t *testing.T) {
	for _, body := range []string{"", "not markup", "<response><body>"} {
		_, err := ParseMarkupMap([]byte(body))
		assert.Error(t, err, "body %q", body)
	}
}
