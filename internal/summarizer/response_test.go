package summarizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResponseShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind ResponseKind
		want     string
	}{
		{"sequence", `[{"summary_text": "X"}]`, KindSequence, "X"},
		{"single", `{"summary_text": "X"}`, KindSingle, "X"},
		{"sequence takes first", `[{"summary_text": "first"}, {"summary_text": "second"}]`, KindSequence, "first"},
		{"surrounding whitespace", "\n  [{\"summary_text\": \"Resumo.\"}]  \n", KindSequence, "Resumo."},
		{"extra fields ignored", `{"summary_text": "X", "score": 0.9}`, KindSingle, "X"},
		{"text kept verbatim", `{"summary_text": " padded "}`, KindSingle, " padded "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, resp.Kind)

			got, err := resp.SummaryText()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"scalar", `"X"`},
		{"number", `42`},
		{"broken sequence", `[{"summary_text": }]`},
		{"broken record", `{"summary_text"`},
		{"wrong field type", `{"summary_text": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSummaryTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		resp    Response
		wantErr error
	}{
		{"empty sequence", Response{Kind: KindSequence}, ErrEmptyResponse},
		{"missing field in sequence", Response{Kind: KindSequence, Sequence: []Record{{}}}, ErrMissingSummary},
		{"missing field in single", Response{Kind: KindSingle}, ErrMissingSummary},
		{"zero value", Response{}, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.resp.SummaryText()
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestSummaryTextKeepsBlankValues(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"summary_text": ""}`, ""},
		{`[{"summary_text": ""}]`, ""},
		{`{"summary_text": "   "}`, "   "},
		{`[{"summary_text": "   "}, {"summary_text": "X"}]`, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp, err := ParseResponse([]byte(tt.body))
			require.NoError(t, err)

			got, err := resp.SummaryText()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummaryTextNullField(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"summary_text": null}`))
	require.NoError(t, err)

	_, err = resp.SummaryText()
	assert.ErrorIs(t, err, ErrMissingSummary)
}

func TestResponseKindString(t *testing.T) {
	assert.Equal(t, "single", KindSingle.String())
	assert.Equal(t, "sequence", KindSequence.String())
	assert.Equal(t, "unknown", ResponseKind(0).String())
}
