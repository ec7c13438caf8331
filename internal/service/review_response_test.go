package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"plain":           `{"a":1}`,
		"surrounding ws":  "  \n{\"a\":1}\n ",
		"json fence":      "```json\n{\"a\":1}\n```",
		"bare fence":      "```\n{\"a\":1}\n```",
		"tagged fence":    "```application-json_v2\n{\"a\":1}```",
		"fence no suffix": "```json {\"a\":1}",
		"closing only":    "{\"a\":1}\n```",
		"closing only ws": "  {\"a\":1}```  \n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, `{"a":1}`, StripCodeFence(input))
		})
	}
}

func TestResponseValidatorAcceptsValidResponse(t *testing.T) {
	validator := MustResponseValidator()
	raw := "```json\n" + reviewJSON(
		reviewEntry("A2", 3, "Thin answers"),
		reviewEntry("A1", 8, "Strong fit"),
	) + "\n```"

	verdict := validator.Check(raw, []string{"A1", "A2"})
	validated, ok := verdict.(Validated)
	require.True(t, ok, "unexpected verdict %#v", verdict)
	require.Equal(t, []ModelReviewResult{
		{ApplicationID: "A2", Rating: 3, Comment: "Thin answers"},
		{ApplicationID: "A1", Rating: 8, Comment: "Strong fit"},
	}, validated.Results)
}

func TestResponseValidatorAcceptsClosingFenceOnly(t *testing.T) {
	validator := MustResponseValidator()
	raw := reviewJSON(reviewEntry("A1", 8, "Strong fit")) + "\n```"

	verdict := validator.Check(raw, []string{"A1"})
	validated, ok := verdict.(Validated)
	require.True(t, ok, "unexpected verdict %#v", verdict)
	require.Equal(t, []ModelReviewResult{{ApplicationID: "A1", Rating: 8, Comment: "Strong fit"}}, validated.Results)
}

func TestResponseValidatorKeepsPlainCommentsVerbatim(t *testing.T) {
	validator := MustResponseValidator()
	comment := `Candidate's "answers" & code are solid; latency < 5ms, a &amp; b`
	raw := reviewJSON(reviewEntry("A1", 7, "  "+comment+"  "))

	verdict := validator.Check(raw, []string{"A1"})
	validated, ok := verdict.(Validated)
	require.True(t, ok, "unexpected verdict %#v", verdict)
	require.Equal(t, comment, validated.Results[0].Comment)

	multiline := "Clear answers.\r\nNeeds more detail on testing."
	validated, ok = validator.Check(reviewJSON(reviewEntry("A1", 6, multiline)), []string{"A1"}).(Validated)
	require.True(t, ok)
	require.Equal(t, multiline, validated.Results[0].Comment)
}

func TestResponseValidatorRejectsMarkupInsteadOfTruncating(t *testing.T) {
	validator := MustResponseValidator()

	for _, comment := range []string{"Uses <script> tags well", "<b>Strong</b> fit", "Knows <word> boundaries"} {
		verdict := validator.Check(reviewJSON(reviewEntry("A1", 7, comment)), []string{"A1"})
		rejected, ok := verdict.(Rejected)
		require.True(t, ok, "comment %q accepted as %#v", comment, verdict)
		require.ErrorIs(t, rejected.Reason, ErrCommentMarkup)
	}
}

func TestResponseValidatorAcceptsIntegralFloatRating(t *testing.T) {
	validator := MustResponseValidator()

	validated, ok := validator.Check(`{"applications":[{"application_id":"A1","rating":8.0,"comment":"ok"}]}`, []string{"A1"}).(Validated)
	require.True(t, ok)
	require.Equal(t, 8, validated.Results[0].Rating)
}

func TestResponseValidatorRejections(t *testing.T) {
	batch := []string{"A1", "A2"}
	valid := reviewEntry("A1", 6, "Fine")

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{name: "not json", raw: "I think both candidates are great", want: ErrMalformedResponse},
		{name: "trailing data", raw: reviewJSON(valid, reviewEntry("A2", 5, "ok")) + " extra", want: ErrMalformedResponse},
		{name: "empty", raw: "", want: ErrMalformedResponse},
		{name: "top level array", raw: `[` + valid + `]`, want: ErrResponseShape},
		{name: "missing applications", raw: `{"results":[]}`, want: ErrResponseShape},
		{name: "rating as string", raw: `{"applications":[{"application_id":"A1","rating":"8","comment":"x"},` + reviewEntry("A2", 5, "ok") + `]}`, want: ErrResponseShape},
		{name: "fractional rating", raw: `{"applications":[{"application_id":"A1","rating":7.5,"comment":"x"},` + reviewEntry("A2", 5, "ok") + `]}`, want: ErrResponseShape},
		{name: "extra key", raw: `{"applications":[{"application_id":"A1","rating":8,"comment":"x","score":1},` + reviewEntry("A2", 5, "ok") + `]}`, want: ErrResponseShape},
		{name: "missing comment", raw: `{"applications":[{"application_id":"A1","rating":8},` + reviewEntry("A2", 5, "ok") + `]}`, want: ErrResponseShape},
		{name: "missing entry", raw: reviewJSON(valid), want: ErrResultCountMismatch},
		{name: "extra entry", raw: reviewJSON(valid, reviewEntry("A2", 5, "ok"), reviewEntry("A3", 5, "ok")), want: ErrResultCountMismatch},
		{name: "unknown id", raw: reviewJSON(valid, reviewEntry("A9", 5, "ok")), want: ErrUnknownApplication},
		{name: "duplicate id", raw: reviewJSON(valid, reviewEntry("A1", 5, "ok")), want: ErrDuplicateApplication},
		{name: "rating zero", raw: reviewJSON(valid, reviewEntry("A2", 0, "ok")), want: ErrRatingOutOfRange},
		{name: "rating eleven", raw: reviewJSON(valid, reviewEntry("A2", 11, "ok")), want: ErrRatingOutOfRange},
		{name: "blank comment", raw: reviewJSON(valid, reviewEntry("A2", 5, "   ")), want: ErrBlankComment},
		{name: "markup only comment", raw: reviewJSON(valid, reviewEntry("A2", 5, "<br/><i></i>")), want: ErrCommentMarkup},
	}

	validator := MustResponseValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := validator.Check(tc.raw, batch)
			rejected, ok := verdict.(Rejected)
			require.True(t, ok, "unexpected verdict %#v", verdict)
			require.True(t, errors.Is(rejected.Reason, tc.want), "got %v", rejected.Reason)
		})
	}
}
