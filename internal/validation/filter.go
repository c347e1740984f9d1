// Package validation turns untrusted filter input from query strings and
// websocket messages into a checked domain.Filter.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "chartlens/internal/errors"
	"chartlens/pkg/contracts/domain"
)

// FilterValidator checks filter selections against their struct tags
type FilterValidator struct {
	validate *validator.Validate
}

// NewFilterValidator creates a validator reporting fields by their JSON names
func NewFilterValidator() *FilterValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &FilterValidator{validate: v}
}

// Validate returns a VALIDATION_FAILED API error listing every bad field.
func (v *FilterValidator) Validate(f domain.Filter) error {
	var fieldErrs []apperrors.ValidationError

	if err := v.validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.InvalidRequestWithError(err)
		}
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, apperrors.ValidationError{
				Field:   fe.Field(),
				Message: FormatFieldError(fe),
			})
		}
	}

	if !f.DateRangeValid() {
		fieldErrs = append(fieldErrs, apperrors.ValidationError{
			Field:   "to",
			Message: "to must not be before from",
		})
	}

	if len(fieldErrs) > 0 {
		return apperrors.NewValidationErrors(fieldErrs)
	}
	return nil
}

// FormatFieldError formats validation error messages
func FormatFieldError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s must not be empty", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "gtefield":
		return fmt.Sprintf("%s must not be less than min_duration", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// ParseQuery reads a filter from URL query parameters. List parameters may
// be repeated or comma separated. Unset parameters keep their zero value;
// defaults are applied by the caller.
func (v *FilterValidator) ParseQuery(q url.Values) (domain.Filter, error) {
	msg := FilterMessage{
		From:         q.Get("from"),
		To:           q.Get("to"),
		Artists:      listParam(q, "artist", "artists"),
		Explicit:     q.Get("explicit"),
		ReleaseTypes: listParam(q, "release_type", "release_types"),
		TrackType:    q.Get("track_type"),
		Genres:       listParam(q, "genre", "genres"),
		Window:       q.Get("window"),
	}

	var fieldErrs []apperrors.ValidationError
	parseFloat := func(name string, dst *float64) {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrs = append(fieldErrs, apperrors.ValidationError{Field: name, Message: name + " must be a number"})
			return
		}
		*dst = n
	}
	parseFloat("min_duration", &msg.MinDuration)
	parseFloat("max_duration", &msg.MaxDuration)

	if raw := strings.TrimSpace(q.Get("top")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs = append(fieldErrs, apperrors.ValidationError{Field: "top", Message: "top must be an integer"})
		} else {
			msg.TopN = n
		}
	}

	if len(fieldErrs) > 0 {
		return domain.Filter{}, apperrors.NewValidationErrors(fieldErrs)
	}
	return v.FromMessage(msg)
}

// FromMessage converts and validates a wire filter.
func (v *FilterValidator) FromMessage(msg FilterMessage) (domain.Filter, error) {
	f, err := msg.ToFilter()
	if err != nil {
		return domain.Filter{}, err
	}
	if err := v.Validate(f); err != nil {
		return domain.Filter{}, err
	}
	return f, nil
}

// FilterMessage is the wire form of a filter selection, shared by the
// websocket protocol and the query string parser.
type FilterMessage struct {
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	Artists      []string `json:"artists,omitempty"`
	Explicit     string   `json:"explicit,omitempty"`
	ReleaseTypes []string `json:"release_types,omitempty"`
	TrackType    string   `json:"track_type,omitempty"`
	Genres       []string `json:"genres,omitempty"`
	MinDuration  float64  `json:"min_duration,omitempty"`
	MaxDuration  float64  `json:"max_duration,omitempty"`
	Window       string   `json:"window,omitempty"`
	TopN         int      `json:"top,omitempty"`
}

// ToFilter parses the dates and normalises the enumerations. It does not
// run struct validation.
func (m FilterMessage) ToFilter() (domain.Filter, error) {
	f := domain.Filter{
		Artists:      cleanList(m.Artists),
		Explicit:     strings.ToLower(strings.TrimSpace(m.Explicit)),
		ReleaseTypes: lowerList(cleanList(m.ReleaseTypes)),
		TrackType:    strings.ToLower(strings.TrimSpace(m.TrackType)),
		Genres:       cleanList(m.Genres),
		MinDuration:  m.MinDuration,
		MaxDuration:  m.MaxDuration,
		Window:       strings.ToLower(strings.TrimSpace(m.Window)),
		TopN:         m.TopN,
	}

	var fieldErrs []apperrors.ValidationError
	var err error
	if f.From, err = parseDay(m.From); err != nil {
		fieldErrs = append(fieldErrs, apperrors.ValidationError{Field: "from", Message: "from must be a date in YYYY-MM-DD form"})
	}
	if f.To, err = parseDay(m.To); err != nil {
		fieldErrs = append(fieldErrs, apperrors.ValidationError{Field: "to", Message: "to must be a date in YYYY-MM-DD form"})
	}
	if len(fieldErrs) > 0 {
		return domain.Filter{}, apperrors.NewValidationErrors(fieldErrs)
	}
	return f, nil
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(domain.DateLayout, s)
}

func listParam(q url.Values, names ...string) []string {
	var out []string
	for _, name := range names {
		for _, v := range q[name] {
			out = append(out, strings.Split(v, ",")...)
		}
	}
	return out
}

// cleanList trims entries and drops blanks and repeats, keeping first-seen order.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func lowerList(in []string) []string {
	for i, v := range in {
		in[i] = strings.ToLower(v)
	}
	return in
}
