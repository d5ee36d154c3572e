package notion

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clipline/mediasource-go/internal/source"
)

// UnsupportedPropertyError reports a property whose declared type has
// no entry in the dispatch table. Decoding never guesses — a new
// property type must be added here explicitly.
type UnsupportedPropertyError struct {
	Tag string
}

func (e *UnsupportedPropertyError) Error() string {
	return fmt.Sprintf("notion: unsupported property type %q", e.Tag)
}

// rawProperty mirrors the Notion property value union. Only the field
// matching Type is populated in any given payload.
type rawProperty struct {
	Type        string     `json:"type"`
	Title       []textRun  `json:"title"`
	RichText    []textRun  `json:"rich_text"`
	Number      *float64   `json:"number"`
	Select      *option    `json:"select"`
	Status      *option    `json:"status"`
	MultiSelect []option   `json:"multi_select"`
	Date        *dateValue `json:"date"`
	Checkbox    *bool      `json:"checkbox"`
	URL         *string    `json:"url"`
	Email       *string    `json:"email"`
	PhoneNumber *string    `json:"phone_number"`
}

type textRun struct {
	PlainText string `json:"plain_text"`
}

type option struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

// DecodeProperty maps one raw property value onto the normalized
// tagged union. Present-but-empty properties decode to null or an
// empty collection; an unrecognized type tag fails with
// *UnsupportedPropertyError. The date start string is passed through
// unparsed — no timezone normalization at this layer.
func DecodeProperty(raw json.RawMessage) (source.Value, error) {
	var p rawProperty
	if err := json.Unmarshal(raw, &p); err != nil {
		return source.Value{}, fmt.Errorf("notion: decoding property: %w", err)
	}

	switch p.Type {
	case "title":
		return source.String(joinRuns(p.Title)), nil
	case "rich_text":
		return source.String(joinRuns(p.RichText)), nil
	case "number":
		if p.Number == nil {
			return source.Null(), nil
		}

		return source.Number(*p.Number), nil
	case "select":
		return optionValue(p.Select), nil
	case "status":
		return optionValue(p.Status), nil
	case "multi_select":
		labels := make([]string, len(p.MultiSelect))
		for i, o := range p.MultiSelect {
			labels[i] = o.Name
		}

		return source.StringList(labels), nil
	case "date":
		if p.Date == nil {
			return source.Null(), nil
		}

		return source.Date(p.Date.Start), nil
	case "checkbox":
		if p.Checkbox == nil {
			return source.Bool(false), nil
		}

		return source.Bool(*p.Checkbox), nil
	case "url":
		return stringOrNull(p.URL), nil
	case "email":
		return stringOrNull(p.Email), nil
	case "phone_number":
		return stringOrNull(p.PhoneNumber), nil
	default:
		return source.Value{}, &UnsupportedPropertyError{Tag: p.Type}
	}
}

// joinRuns concatenates all text runs into one string. A single logical
// string arrives split into runs when it carries mixed formatting.
func joinRuns(runs []textRun) string {
	if len(runs) == 1 {
		return runs[0].PlainText
	}

	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.PlainText)
	}

	return sb.String()
}

func optionValue(o *option) source.Value {
	if o == nil {
		return source.Null()
	}

	return source.String(o.Name)
}

func stringOrNull(s *string) source.Value {
	if s == nil {
		return source.Null()
	}

	return source.String(*s)
}
