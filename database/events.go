package database

import (
	"context"
	"errors"
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

const EventsCollection string = "events"

// DatabaseProvider hands out the shared database handle. *Connector implements it.
type DatabaseProvider interface {
	Connect(ctx context.Context) (*mongo.Database, error)
}

// EventCriteria narrows FindWhere. Zero values mean "no constraint".
type EventCriteria struct {
	ExcludeId primitive.ObjectID
	AnyTags   []string
	Mode      string
	Limit     int64
}

func (c EventCriteria) filter() bson.M {
	filter := bson.M{}
	if !c.ExcludeId.IsZero() {
		filter["_id"] = bson.M{"$ne": c.ExcludeId}
	}
	if len(c.AnyTags) > 0 {
		filter[model.FieldTags] = bson.M{"$in": c.AnyTags}
	}
	if c.Mode != "" {
		filter[model.FieldMode] = c.Mode
	}
	return filter
}

type EventStore struct {
	conn   DatabaseProvider
	logger *zap.Logger
	now    func() time.Time
}

func NewEventStore(conn DatabaseProvider, logger *zap.Logger) *EventStore {
	return &EventStore{
		conn:   conn,
		logger: logger.Named("events"),
		now:    time.Now,
	}
}

// CreateEvent normalizes and validates fields before inserting them. Nothing
// touches the database when validation fails.
func (s *EventStore) CreateEvent(ctx context.Context, fields model.Event) (model.Event, error) {
	event := fields
	if err := model.NormalizeEvent(&event, model.AllFields()); err != nil {
		return model.Event{}, err
	}
	if err := model.ValidateEvent(event); err != nil {
		return model.Event{}, err
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return model.Event{}, err
	}

	now := s.timestamp()
	event.Id = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := coll.InsertOne(ctx, event); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Event{}, slugTaken(event.Slug)
		}
		return model.Event{}, fmt.Errorf("insert event: %w", err)
	}

	s.logger.Info("event created", zap.String("id", event.Id.Hex()), zap.String("slug", event.Slug))
	return event, nil
}

// UpdateEvent applies a partial update. Slug, date and time are only
// re-derived when their source field is part of the patch. The slug the event
// had before the update is returned alongside it.
func (s *EventStore) UpdateEvent(ctx context.Context, id string, patch model.EventPatch) (model.Event, string, error) {
	objId, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return model.Event{}, "", ErrNotFound
	}
	current, err := s.findOne(ctx, bson.M{"_id": objId})
	if err != nil {
		return model.Event{}, "", err
	}
	if current == nil {
		return model.Event{}, "", ErrNotFound
	}

	event := *current
	changed := patch.Apply(&event)
	if len(changed) == 0 {
		return event, current.Slug, nil
	}
	if err := model.NormalizeEvent(&event, changed); err != nil {
		return model.Event{}, "", err
	}
	if err := model.ValidateEvent(event); err != nil {
		return model.Event{}, "", err
	}
	event.UpdatedAt = s.timestamp()

	set, err := changedFields(event, changed)
	if err != nil {
		return model.Event{}, "", err
	}

	coll, err := s.collection(ctx)
	if err != nil {
		return model.Event{}, "", err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": objId}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.Event{}, "", slugTaken(event.Slug)
		}
		return model.Event{}, "", fmt.Errorf("update event %v: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return model.Event{}, "", ErrNotFound
	}

	return event, current.Slug, nil
}

// FindBySlug returns nil without error when no event has the slug.
func (s *EventStore) FindBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return s.findOne(ctx, bson.M{model.FieldSlug: slug})
}

// FindByID returns nil without error when the id is unknown or malformed.
func (s *EventStore) FindByID(ctx context.Context, id string) (*model.Event, error) {
	objId, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, bson.M{"_id": objId})
}

func (s *EventStore) ExistsByID(ctx context.Context, id primitive.ObjectID) (bool, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return false, err
	}
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = coll.FindOne(ctx, bson.M{"_id": id}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup event %v: %w", id.Hex(), err)
	}
	return true, nil
}

// FindWhere lists events matching criteria, newest first.
func (s *EventStore) FindWhere(ctx context.Context, criteria EventCriteria) ([]model.Event, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if criteria.Limit > 0 {
		opts.SetLimit(criteria.Limit)
	}

	cur, err := coll.Find(ctx, criteria.filter(), opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	events := []model.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return events, nil
}

func (s *EventStore) findOne(ctx context.Context, filter bson.M) (*model.Event, error) {
	coll, err := s.collection(ctx)
	if err != nil {
		return nil, err
	}
	var event model.Event
	err = coll.FindOne(ctx, filter).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

func (s *EventStore) collection(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.conn.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(EventsCollection), nil
}

// BSON dates keep millisecond precision.
func (s *EventStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func changedFields(event model.Event, changed model.FieldSet) (bson.M, error) {
	raw, err := bson.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}

	set := bson.M{"updatedAt": event.UpdatedAt}
	for field := range changed {
		set[field] = doc[field]
	}
	if changed[model.FieldTitle] {
		set[model.FieldSlug] = event.Slug
	}
	return set, nil
}

func slugTaken(slug string) error {
	return &model.ValidationError{
		Field:   model.FieldSlug,
		Message: fmt.Sprintf("%q is already used by another event", slug),
	}
}
