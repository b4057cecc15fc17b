package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const (
	FieldTitle       string = "title"
	FieldSlug        string = "slug"
	FieldDescription string = "description"
	FieldOverview    string = "overview"
	FieldImage       string = "image"
	FieldVenue       string = "venue"
	FieldLocation    string = "location"
	FieldDate        string = "date"
	FieldTime        string = "time"
	FieldMode        string = "mode"
	FieldAudience    string = "audience"
	FieldAgenda      string = "agenda"
	FieldOrganizer   string = "organizer"
	FieldTags        string = "tags"
	FieldEmail       string = "email"
	FieldEventId     string = "eventId"
)

const isoDateLayout = "2006-01-02"

var (
	slugStripPattern  = regexp.MustCompile(`[^\w\s\v\p{Z}\x{FEFF}-]`)
	slugSpacePattern  = regexp.MustCompile(`[\s\v\p{Z}\x{FEFF}]+`)
	slugHyphenPattern = regexp.MustCompile(`-{2,}`)
	isoDatePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern       = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidationError names the field that failed and why. It is never persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %v: %v", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// FieldSet lists the fields that are part of the current write.
type FieldSet map[string]bool

// AllFields is the write set of a freshly created event.
func AllFields() FieldSet {
	return FieldSet{
		FieldTitle: true, FieldDescription: true, FieldOverview: true, FieldImage: true,
		FieldVenue: true, FieldLocation: true, FieldDate: true, FieldTime: true,
		FieldMode: true, FieldAudience: true, FieldAgenda: true, FieldOrganizer: true,
		FieldTags: true,
	}
}

// DeriveSlug turns a title into a lowercase, hyphenated identifier.
// "React Summit: 2026!" becomes "react-summit-2026".
func DeriveSlug(title string) string {
	slug := strings.TrimSpace(strings.ToLower(title))
	slug = slugStripPattern.ReplaceAllString(slug, "")
	slug = slugSpacePattern.ReplaceAllString(slug, "-")
	slug = slugHyphenPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// NormalizeDate keeps YYYY-MM-DD values as they are and rewrites anything
// else that parses as a calendar date into that form.
func NormalizeDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if isoDatePattern.MatchString(value) {
		return value, nil
	}
	parsed, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return "", invalid(FieldDate, "expected YYYY-MM-DD, got %q", value)
	}
	return parsed.Format(isoDateLayout), nil
}

// ValidateTime accepts only zero padded 24-hour HH:MM.
func ValidateTime(value string) error {
	if !timePattern.MatchString(value) {
		return invalid(FieldTime, "expected HH:MM (24-hour), got %q", value)
	}
	return nil
}

func IsValidMode(mode string) bool {
	switch mode {
	case ModeOnline, ModeOffline, ModeHybrid:
		return true
	}
	return false
}

// NormalizeEvent trims text fields and runs the slug, date and time steps
// for the fields in changed, in that order.
func NormalizeEvent(e *Event, changed FieldSet) error {
	for _, field := range e.textFields() {
		*field.value = strings.TrimSpace(*field.value)
	}
	e.Agenda = trimItems(e.Agenda, false)
	e.Tags = trimItems(e.Tags, true)

	if changed[FieldTitle] {
		e.Slug = DeriveSlug(e.Title)
		if e.Slug == "" && e.Title != "" {
			return invalid(FieldTitle, "must contain at least one letter or digit")
		}
	}
	if changed[FieldDate] && e.Date != "" {
		date, err := NormalizeDate(e.Date)
		if err != nil {
			return err
		}
		e.Date = date
	}
	if changed[FieldTime] && e.Time != "" {
		if err := ValidateTime(e.Time); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEvent checks the whole document. It expects NormalizeEvent to have run.
func ValidateEvent(e Event) error {
	for _, field := range e.textFields() {
		if *field.value == "" {
			return invalid(field.name, "is required")
		}
	}
	if !IsValidMode(e.Mode) {
		return invalid(FieldMode, "must be either online, offline, or hybrid")
	}
	if len(e.Agenda) == 0 {
		return invalid(FieldAgenda, "must contain at least one item")
	}
	if len(e.Tags) == 0 {
		return invalid(FieldTags, "must contain at least one item")
	}
	return nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return invalid(FieldEmail, "please provide a valid email address")
	}
	return nil
}

type textField struct {
	name  string
	value *string
}

func (e *Event) textFields() []textField {
	return []textField{
		{FieldTitle, &e.Title},
		{FieldDescription, &e.Description},
		{FieldOverview, &e.Overview},
		{FieldImage, &e.Image},
		{FieldVenue, &e.Venue},
		{FieldLocation, &e.Location},
		{FieldDate, &e.Date},
		{FieldTime, &e.Time},
		{FieldMode, &e.Mode},
		{FieldAudience, &e.Audience},
		{FieldOrganizer, &e.Organizer},
	}
}

func trimItems(items []string, unique bool) []string {
	if items == nil {
		return nil
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if unique {
			if seen[item] {
				continue
			}
			seen[item] = true
		}
		out = append(out, item)
	}
	return out
}
