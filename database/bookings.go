package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devevent/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const BookingsCollection string = "bookings"

// EventChecker reports whether an event exists. *EventStore implements it.
type EventChecker interface {
	ExistsByID(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type BookingStore struct {
	conn   DatabaseProvider
	events EventChecker
	logger *zap.Logger
	now    func() time.Time
}

func NewBookingStore(conn DatabaseProvider, events EventChecker, logger *zap.Logger) *BookingStore {
	return &BookingStore{
		conn:   conn,
		events: events,
		logger: logger.Named("bookings"),
		now:    time.Now,
	}
}

// CreateBooking records email against an existing event.
//
// The existence check and the insert are two separate operations. An event
// removed in between leaves an orphaned booking; nothing in this service
// deletes events, so the window is accepted.
func (s *BookingStore) CreateBooking(ctx context.Context, eventId string, email string) (model.Booking, error) {
	email = model.NormalizeEmail(email)
	if err := model.ValidateEmail(email); err != nil {
		return model.Booking{}, err
	}

	eventObjId, err := primitive.ObjectIDFromHex(strings.TrimSpace(eventId))
	if err != nil {
		return model.Booking{}, &model.ValidationError{Field: model.FieldEventId, Message: "must be a valid object id"}
	}

	exists, err := s.events.ExistsByID(ctx, eventObjId)
	if err != nil {
		return model.Booking{}, fmt.Errorf("validate event reference: %w", err)
	}
	if !exists {
		return model.Booking{}, &ReferenceError{Entity: "event", Id: eventObjId.Hex()}
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return model.Booking{}, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	booking := model.Booking{
		Id:        primitive.NewObjectID(),
		EventId:   eventObjId,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := coll.InsertOne(ctx, booking); err != nil {
		return model.Booking{}, fmt.Errorf("insert booking: %w", err)
	}

	s.logger.Info("booking created",
		zap.String("id", booking.Id.Hex()),
		zap.String("event_id", booking.EventId.Hex()))
	return booking, nil
}

// ListByEvent returns the bookings of one event, oldest first.
func (s *BookingStore) ListByEvent(ctx context.Context, eventId string) ([]model.Booking, error) {
	eventObjId, err := primitive.ObjectIDFromHex(strings.TrimSpace(eventId))
	if err != nil {
		return nil, &model.ValidationError{Field: model.FieldEventId, Message: "must be a valid object id"}
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := coll.Find(ctx, bson.M{model.FieldEventId: eventObjId}, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	bookings := []model.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingStore) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(BookingsCollection), nil
}
