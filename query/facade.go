// Package query holds the read paths the HTTP layer serves: one event by
// slug, the catalog listing and "similar events" by shared tags.
package query

import (
	"context"
	"fmt"
	"strings"

	"devevent/database"
	"devevent/model"
)

// EventFinder is the part of the event store the facade reads from.
type EventFinder interface {
	FindBySlug(ctx context.Context, slug string) (*model.Event, error)
	FindWhere(ctx context.Context, criteria database.EventCriteria) ([]model.Event, error)
}

type Facade struct {
	events EventFinder
}

func NewFacade(events EventFinder) *Facade {
	return &Facade{events: events}
}

// FetchEventBySlug rejects a blank slug before touching the database and
// reports absence as database.ErrNotFound.
func (f *Facade) FetchEventBySlug(ctx context.Context, slug string) (model.Event, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return model.Event{}, &model.ValidationError{Field: model.FieldSlug, Message: "invalid or missing slug parameter"}
	}

	event, err := f.events.FindBySlug(ctx, slug)
	if err != nil {
		return model.Event{}, fmt.Errorf("fetch event %q: %w", slug, err)
	}
	if event == nil {
		return model.Event{}, fmt.Errorf("event with slug '%v': %w", slug, database.ErrNotFound)
	}
	return *event, nil
}

// FetchSimilarEvents returns the events sharing at least one tag with the
// event behind slug, without that event itself. An unknown slug yields an
// empty result, not an error.
func (f *Facade) FetchSimilarEvents(ctx context.Context, slug string) ([]model.Event, error) {
	slug = NormalizeSlug(slug)
	if slug == "" {
		return []model.Event{}, nil
	}

	anchor, err := f.events.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("fetch anchor event %q: %w", slug, err)
	}
	if anchor == nil || len(anchor.Tags) == 0 {
		return []model.Event{}, nil
	}

	events, err := f.events.FindWhere(ctx, database.EventCriteria{
		ExcludeId: anchor.Id,
		AnyTags:   anchor.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch events similar to %q: %w", slug, err)
	}
	return events, nil
}

// ListEvents returns the catalog, newest first.
func (f *Facade) ListEvents(ctx context.Context) ([]model.Event, error) {
	events, err := f.events.FindWhere(ctx, database.EventCriteria{})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}
