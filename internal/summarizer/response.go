package summarizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyResponse     = fmt.Errorf("%w: response sequence is empty", ErrMalformedResponse)
	ErrMissingSummary    = fmt.Errorf("%w: summary_text is missing", ErrMalformedResponse)
)

// ResponseKind tells which shape the inference endpoint answered with.
type ResponseKind int

const (
	KindSingle ResponseKind = iota + 1
	KindSequence
)

func (k ResponseKind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Record is one summarization result as returned by the endpoint.
type Record struct {
	SummaryText *string `json:"summary_text"`
}

// Response is either a single Record or an ordered sequence of them.
// Only the field matching Kind is meaningful.
type Response struct {
	Kind     ResponseKind
	Single   Record
	Sequence []Record
}

// ParseResponse resolves a raw body into one of the two response shapes.
func ParseResponse(data []byte) (Response, error) {
	var r Response
	if err := r.UnmarshalJSON(data); err != nil {
		return Response{}, err
	}
	return r, nil
}

func (r *Response) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: body is empty", ErrMalformedResponse)
	}

	switch trimmed[0] {
	case '[':
		var seq []Record
		if err := json.Unmarshal(trimmed, &seq); err != nil {
			return fmt.Errorf("%w: decode sequence: %w", ErrMalformedResponse, err)
		}
		*r = Response{Kind: KindSequence, Sequence: seq}
	case '{':
		var rec Record
		if err := json.Unmarshal(trimmed, &rec); err != nil {
			return fmt.Errorf("%w: decode record: %w", ErrMalformedResponse, err)
		}
		*r = Response{Kind: KindSingle, Single: rec}
	default:
		return fmt.Errorf("%w: unexpected JSON value starting with %q", ErrMalformedResponse, trimmed[0])
	}

	return nil
}

// SummaryText returns the summary of the first record exactly as reported,
// empty strings included. Only an absent or null field is an error.
func (r Response) SummaryText() (string, error) {
	var rec Record

	switch r.Kind {
	case KindSequence:
		if len(r.Sequence) == 0 {
			return "", ErrEmptyResponse
		}
		rec = r.Sequence[0]
	case KindSingle:
		rec = r.Single
	default:
		return "", fmt.Errorf("%w: kind is %s", ErrMalformedResponse, r.Kind)
	}

	if rec.SummaryText == nil {
		return "", ErrMissingSummary
	}

	return *rec.SummaryText, nil
}
