package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Bounds of a review rating.
const (
	MinRating = 1
	MaxRating = 10
)

const reviewResponseSchemaURL = "reviewer://schemas/review-response.json"

const reviewResponseSchema = `{
  "type": "object",
  "required": ["applications"],
  "properties": {
    "applications": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["application_id", "rating", "comment"],
        "additionalProperties": false,
        "properties": {
          "application_id": {"type": "string"},
          "rating": {"type": "integer"},
          "comment": {"type": "string"}
        }
      }
    }
  }
}`

// ModelReviewResult is one validated entry of a model response.
type ModelReviewResult struct {
	ApplicationID string
	Rating        int
	Comment       string
}

// Verdict is the outcome of checking one raw model response.
type Verdict interface {
	isVerdict()
}

// Validated carries results that passed every check, one per batch application.
type Validated struct {
	Results []ModelReviewResult
}

// Rejected carries the first rule the response broke.
type Rejected struct {
	Reason error
}

func (Validated) isVerdict() {}
func (Rejected) isVerdict()  {}

// ResponseValidator checks raw model output against the submitted batch.
type ResponseValidator struct {
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
}

// NewResponseValidator compiles the response schema.
func NewResponseValidator() (*ResponseValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(reviewResponseSchemaURL, strings.NewReader(reviewResponseSchema)); err != nil {
		return nil, fmt.Errorf("add review response schema: %w", err)
	}
	schema, err := compiler.Compile(reviewResponseSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile review response schema: %w", err)
	}
	return &ResponseValidator{schema: schema, sanitizer: bluemonday.StrictPolicy()}, nil
}

// MustResponseValidator is like NewResponseValidator but panics on error.
func MustResponseValidator() *ResponseValidator {
	validator, err := NewResponseValidator()
	if err != nil {
		panic(err)
	}
	return validator
}

// Check validates raw against the ids of the submitted batch. Results of a
// Validated verdict follow the order of the response.
func (v *ResponseValidator) Check(raw string, batchIDs []string) Verdict {
	payload, err := decodeStrict(StripCodeFence(raw))
	if err != nil {
		return Rejected{Reason: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if err := v.schema.Validate(payload); err != nil {
		return Rejected{Reason: fmt.Errorf("%w: %v", ErrResponseShape, err)}
	}

	entries, _ := payload.(map[string]interface{})["applications"].([]interface{})
	if len(entries) != len(batchIDs) {
		return Rejected{Reason: fmt.Errorf("%w: got %d, want %d", ErrResultCountMismatch, len(entries), len(batchIDs))}
	}

	submitted := make(map[string]struct{}, len(batchIDs))
	for _, id := range batchIDs {
		submitted[id] = struct{}{}
	}
	seen := make(map[string]struct{}, len(entries))

	results := make([]ModelReviewResult, 0, len(entries))
	for _, item := range entries {
		entry := item.(map[string]interface{})
		id := entry["application_id"].(string)
		if _, ok := submitted[id]; !ok {
			return Rejected{Reason: fmt.Errorf("%w: %q", ErrUnknownApplication, id)}
		}
		if _, dup := seen[id]; dup {
			return Rejected{Reason: fmt.Errorf("%w: %q", ErrDuplicateApplication, id)}
		}
		seen[id] = struct{}{}

		rating, err := parseRating(entry["rating"])
		if err != nil {
			return Rejected{Reason: fmt.Errorf("%w: application %q: %v", ErrRatingOutOfRange, id, err)}
		}

		comment := strings.TrimSpace(entry["comment"].(string))
		if comment == "" {
			return Rejected{Reason: fmt.Errorf("%w: application %q", ErrBlankComment, id)}
		}
		if v.containsMarkup(comment) {
			return Rejected{Reason: fmt.Errorf("%w: application %q", ErrCommentMarkup, id)}
		}

		results = append(results, ModelReviewResult{ApplicationID: id, Rating: rating, Comment: comment})
	}

	return Validated{Results: results}
}

// containsMarkup reports whether the strict policy would change the text of
// comment. Entity escaping and line ending normalisation do not count.
func (v *ResponseValidator) containsMarkup(comment string) bool {
	comment = lineEndings.Replace(comment)
	return html.UnescapeString(v.sanitizer.Sanitize(comment)) != html.UnescapeString(comment)
}

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// StripCodeFence removes an opening markdown code fence, with or without a
// language tag, and a closing fence from a model response. Either may appear
// without the other.
func StripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		tagEnd := 0
		for tagEnd < len(text) && isFenceTagChar(text[tagEnd]) {
			tagEnd++
		}
		text = text[tagEnd:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func isFenceTagChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '-' || ch == '_'
}

func decodeStrict(text string) (interface{}, error) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()

	var payload interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, err
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after json value")
	}
	return payload, nil
}

func parseRating(value interface{}) (int, error) {
	number, ok := value.(json.Number)
	if !ok {
		return 0, fmt.Errorf("rating is %T", value)
	}
	parsed, err := number.Float64()
	if err != nil {
		return 0, err
	}
	if parsed != math.Trunc(parsed) {
		return 0, fmt.Errorf("rating %s is not an integer", number)
	}
	if parsed < MinRating || parsed > MaxRating {
		return 0, fmt.Errorf("rating %s outside %d-%d", number, MinRating, MaxRating)
	}
	return int(parsed), nil
}
