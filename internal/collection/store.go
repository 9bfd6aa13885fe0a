package collection

import (
	"context"
	"time"

	"github.com/petloc/petloc/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store gives callers a uniform view of named collections: one-shot CRUD plus
// a standing subscription that keeps a Mirror current.
type Store interface {
	Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error)
	Update(ctx context.Context, collection, id string, partial map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, filter map[string]interface{}) ([]Document, error)
	Subscribe(ctx context.Context, collection string) (*Mirror, error)
}

// MongoStore implements Store over a Mongo database. Documents are stored with
// a hex ObjectID string as _id and arbitrary top-level fields.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

// Add stamps createdAt/updatedAt and inserts a new document, returning its id.
// The local mirror is NOT touched here: the standing subscription surfaces the
// new document on its own, which avoids double-insert races.
func (s *MongoStore) Add(ctx context.Context, collection string, fields map[string]interface{}) (string, error) {
	now := time.Now().UTC()
	doc := bson.M{}
	for k, v := range fields {
		doc[k] = v
	}
	doc["createdAt"] = now
	doc["updatedAt"] = now
	id := primitive.NewObjectID().Hex()
	doc["_id"] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", err
	}
	metrics.CollectionOps.WithLabelValues(collection, "add").Inc()
	return id, nil
}

// Update merges partial fields into the document, stamping updatedAt.
func (s *MongoStore) Update(ctx context.Context, collection, id string, partial map[string]interface{}) error {
	set := bson.M{}
	for k, v := range partial {
		set[k] = v
	}
	set["updatedAt"] = time.Now().UTC()
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	metrics.CollectionOps.WithLabelValues(collection, "update").Inc()
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	metrics.CollectionOps.WithLabelValues(collection, "delete").Inc()
	return nil
}

// Find runs a one-shot query ordered by descending creation time. Used when a
// live mirror is unnecessary.
func (s *MongoStore) Find(ctx context.Context, collection string, filter map[string]interface{}) ([]Document, error) {
	f := bson.M{}
	for k, v := range filter {
		f[k] = v
	}
	metrics.CollectionOps.WithLabelValues(collection, "find").Inc()
	return s.ordered(ctx, collection, f)
}

// Subscribe opens a change stream on the collection and keeps the returned
// Mirror current. On every remote change the mirror is replaced wholesale with
// a fresh ordered query. Errors end the subscription; there is no automatic
// retry — the caller re-subscribes.
func (s *MongoStore) Subscribe(ctx context.Context, collection string) (*Mirror, error) {
	ctx, cancel := context.WithCancel(ctx)
	cs, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, err
	}
	m := newMirror(cancel)
	go func() {
		defer cs.Close(context.Background())
		items, err := s.ordered(ctx, collection, bson.M{})
		if err != nil {
			m.fail(err)
			return
		}
		m.replace(items)
		for cs.Next(ctx) {
			items, err := s.ordered(ctx, collection, bson.M{})
			if err != nil {
				m.fail(err)
				return
			}
			m.replace(items)
		}
		if err := cs.Err(); err != nil && ctx.Err() == nil {
			m.fail(err)
		}
	}()
	return m, nil
}

func (s *MongoStore) ordered(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []Document{}
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, err
		}
		out = append(out, fromBSON(raw))
	}
	return out, cur.Err()
}

func fromBSON(raw bson.M) Document {
	d := Document{Fields: map[string]interface{}{}}
	for k, v := range raw {
		if k == "_id" {
			switch id := v.(type) {
			case string:
				d.ID = id
			case primitive.ObjectID:
				d.ID = id.Hex()
			}
			continue
		}
		if t, ok := v.(primitive.DateTime); ok {
			d.Fields[k] = t.Time().UTC()
			continue
		}
		d.Fields[k] = v
	}
	return d
}
