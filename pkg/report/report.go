// Package report renders registrant result sets as downloadable documents.
//
// Generators never filter or reorder their input; the optional Filter is
// only printed in the document header.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // display timezones must resolve on minimal images

	"github.com/akeren/event-registration/internal/models"
)

// ErrNothingToExport is returned, and no document produced, for an empty input.
var ErrNothingToExport = errors.New("report: nothing to export")

const (
	DefaultTitle      = "Laksha Kantha Geetha Parayana Registrations"
	DisplayTimeFormat = "02 Jan 2006 · 03:04 PM"
	reportDateFormat  = "02-01-2006"
)

// Columns is the fixed column order shared by every generator.
var Columns = []string{"Name", "College", "Course", "Role", "Phone", "Email", "Registered On"}

// Filter describes the query that produced the records.
type Filter struct {
	Search  string
	College string
}

func (f Filter) Active() bool {
	return strings.TrimSpace(f.Search) != "" || strings.TrimSpace(f.College) != ""
}

func (f Filter) Describe() string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(f.Search); s != "" {
		parts = append(parts, fmt.Sprintf("search %q", s))
	}
	if c := strings.TrimSpace(f.College); c != "" {
		parts = append(parts, fmt.Sprintf("college %q", c))
	}
	return "Filters: " + strings.Join(parts, " · ")
}

type Options struct {
	Title    string
	Location *time.Location
	// Now is used for the report date; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.Title) == "" {
		o.Title = DefaultTitle
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// DefaultLocation is the display timezone used when none is configured.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("IST", 5*60*60+30*60)
	}
	return loc
}

func (o Options) reportDate() string {
	return "Date: " + o.Now().In(o.Location).Format(reportDateFormat)
}

// Document is a rendered report ready to be sent as an attachment.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
	Pages       int
}

// Generator renders records into a Document.
type Generator interface {
	Generate(records []models.Registrant, filter Filter) (*Document, error)
}

// FormatTimestamp renders t in loc using the display format.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DisplayTimeFormat)
}

func rowValues(r models.Registrant, loc *time.Location) []string {
	return []string{
		r.Name,
		r.College,
		r.Course,
		string(r.Role),
		r.Phone,
		r.Email,
		FormatTimestamp(r.CreatedAt, loc),
	}
}
