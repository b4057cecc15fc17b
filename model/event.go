package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ModeOnline  string = "online"
	ModeOffline string = "offline"
	ModeHybrid  string = "hybrid"
)

type Event struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Slug        string             `json:"slug" bson:"slug"`
	Description string             `json:"description" bson:"description"`
	Overview    string             `json:"overview" bson:"overview"`
	Image       string             `json:"image" bson:"image"`
	Venue       string             `json:"venue" bson:"venue"`
	Location    string             `json:"location" bson:"location"`
	Date        string             `json:"date" bson:"date"`
	Time        string             `json:"time" bson:"time"`
	Mode        string             `json:"mode" bson:"mode"`
	Audience    string             `json:"audience" bson:"audience"`
	Agenda      []string           `json:"agenda" bson:"agenda"`
	Organizer   string             `json:"organizer" bson:"organizer"`
	Tags        []string           `json:"tags" bson:"tags"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// EventPatch carries a partial update. Nil fields are left untouched.
type EventPatch struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Overview    *string   `json:"overview"`
	Image       *string   `json:"image"`
	Venue       *string   `json:"venue"`
	Location    *string   `json:"location"`
	Date        *string   `json:"date"`
	Time        *string   `json:"time"`
	Mode        *string   `json:"mode"`
	Audience    *string   `json:"audience"`
	Agenda      *[]string `json:"agenda"`
	Organizer   *string   `json:"organizer"`
	Tags        *[]string `json:"tags"`
}

// Apply copies the set fields onto e and reports which fields were written.
func (p EventPatch) Apply(e *Event) FieldSet {
	changed := FieldSet{}
	setString := func(field string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed[field] = true
		}
	}
	setString(FieldTitle, &e.Title, p.Title)
	setString(FieldDescription, &e.Description, p.Description)
	setString(FieldOverview, &e.Overview, p.Overview)
	setString(FieldImage, &e.Image, p.Image)
	setString(FieldVenue, &e.Venue, p.Venue)
	setString(FieldLocation, &e.Location, p.Location)
	setString(FieldDate, &e.Date, p.Date)
	setString(FieldTime, &e.Time, p.Time)
	setString(FieldMode, &e.Mode, p.Mode)
	setString(FieldAudience, &e.Audience, p.Audience)
	setString(FieldOrganizer, &e.Organizer, p.Organizer)
	if p.Agenda != nil {
		e.Agenda = *p.Agenda
		changed[FieldAgenda] = true
	}
	if p.Tags != nil {
		e.Tags = *p.Tags
		changed[FieldTags] = true
	}
	return changed
}
