package models

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	EventsDbName      = "mycalendar"
	EventsColName     = "events"
	CountersColName   = "counters"
	eventsSequenceKey = "events"
)

type mongoTxKey struct{}

// MongodbRepo stores events in MongoDB. Integer ids come from a counters
// document; the exclusive region is a per-repo mutex because standalone
// deployments do not support multi-document transactions.
type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
	loc           *time.Location
	mu            sync.Mutex
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string, loc *time.Location) *MongodbRepo {
	if dbName == "" {
		dbName = EventsDbName
	}
	if loc == nil {
		loc = time.UTC
	}
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
		loc:           loc,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// EnsureIndexes creates the start_time index used by adjacency lookups.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "start_time", Value: 1}},
			Options: options.Index().SetName("start_time_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, ok := ctx.Value(mongoTxKey{}).(*MongodbRepo); ok && owner == mdb {
		return fn(ctx)
	}
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	return fn(context.WithValue(ctx, mongoTxKey{}, mdb))
}

func (mdb *MongodbRepo) nextID(ctx context.Context) (int64, error) {
	col, err := mdb.GetCollection(CountersColName)
	if err != nil {
		return 0, fmt.Errorf("error getting collection: %w", err)
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err = col.FindOneAndUpdate(ctx,
		bson.M{"_id": eventsSequenceKey},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("error allocating event id: %w", err)
	}
	return counter.Seq, nil
}

func (mdb *MongodbRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	id, err := mdb.nextID(ctx)
	if err != nil {
		return nil, err
	}

	created := event.Clone()
	created.ID = id
	if _, err := col.InsertOne(ctx, created); err != nil {
		return nil, fmt.Errorf("error inserting event: %w", err)
	}
	return mdb.inLocation(created), nil
}

func (mdb *MongodbRepo) GetEvent(ctx context.Context, id int64) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var ev Event
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&ev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding event %d: %w", id, err)
	}
	return mdb.inLocation(&ev), nil
}

func (mdb *MongodbRepo) ListEvents(ctx context.Context) ([]Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("error finding events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("error decoding events: %w", err)
	}
	for i := range events {
		mdb.inLocation(&events[i])
	}
	return events, nil
}

func (mdb *MongodbRepo) UpdateEvent(ctx context.Context, event *Event) (*Event, error) {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	res, err := col.ReplaceOne(ctx, bson.M{"_id": event.ID}, event)
	if err != nil {
		return nil, fmt.Errorf("error updating event %d: %w", event.ID, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return mdb.inLocation(event.Clone()), nil
}

func (mdb *MongodbRepo) DeleteEvent(ctx context.Context, id int64) error {
	col, err := mdb.GetCollection(EventsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting event %d: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) Close(ctx context.Context) error {
	if mdb.mongodbClient == nil {
		return nil
	}
	if err := mdb.mongodbClient.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) inLocation(ev *Event) *Event {
	ev.StartTime = ev.StartTime.In(mdb.loc)
	ev.EndTime = ev.EndTime.In(mdb.loc)
	ev.LastUpdated = ev.LastUpdated.In(mdb.loc)
	return ev
}
