package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// keyField holds the business key inside a mongo document.
const keyField = "_key"

// Mongo is a Store with one mongo collection per document collection.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	opts   storeOptions

	mu      sync.Mutex
	indexed map[string]bool
	closed  bool
}

var _ Store = (*Mongo)(nil)

// OpenMongo connects to uri and uses database.
func OpenMongo(ctx context.Context, uri, database string, opts ...Option) (*Mongo, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = "portal"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Mongo{
		client:  client,
		db:      client.Database(database),
		opts:    buildOptions(opts),
		indexed: make(map[string]bool),
	}, nil
}

func (m *Mongo) coll(ctx context.Context, name string) (*mongo.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	c := m.db.Collection(name)
	if m.indexed[name] {
		return c, nil
	}
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: keyField, Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", name, err)
	}
	m.indexed[name] = true
	return c, nil
}

// Insert implements Store.
func (m *Mongo) Insert(ctx context.Context, collection, key string, fields map[string]any) (string, error) {
	c, err := m.coll(ctx, collection)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	doc := bson.M{"_id": id, keyField: key}
	for k, v := range fields {
		doc[k] = v
	}
	if _, err := c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s/%s", ErrDuplicateKey, collection, key)
		}
		return "", fmt.Errorf("insert %s/%s: %w", collection, key, err)
	}
	return id, nil
}

func mongoFilter(filters []Filter) bson.M {
	out := bson.M{}
	for _, f := range filters {
		if f.Op == OpEq {
			out[f.Field] = f.Values[0]
			continue
		}
		out[f.Field] = bson.M{"$in": f.Values}
	}
	return out
}

// Find implements Store.
func (m *Mongo) Find(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := m.opts.checkFilters(filters); err != nil {
		return nil, err
	}
	if emptyIn(filters) {
		return nil, nil
	}
	c, err := m.coll(ctx, collection)
	if err != nil {
		return nil, err
	}
	cur, err := c.Find(ctx, mongoFilter(filters), options.Find().SetSort(bson.D{{Key: keyField, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer func() { _ = cur.Close(context.Background()) }()
	var out []Document
	for cur.Next(ctx) {
		var raw bson.M
		if err := cur.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		out = append(out, fromBSON(raw))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	return out, nil
}

// splitPatch separates server timestamps, which mongo sets itself through
// $currentDate, from plain values.
func splitPatch(patch Patch) (bson.M, bson.M) {
	set, current := bson.M{}, bson.M{}
	for k, v := range patch {
		if _, ok := v.(serverTimestamp); ok {
			current[k] = true
			continue
		}
		set[k] = v
	}
	return set, current
}

// Update implements Store.
func (m *Mongo) Update(ctx context.Context, collection string, filter Filter, patch Patch) (int, error) {
	if err := m.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	if emptyIn([]Filter{filter}) {
		return 0, nil
	}
	c, err := m.coll(ctx, collection)
	if err != nil {
		return 0, err
	}
	set, current := splitPatch(patch)
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(current) > 0 {
		update["$currentDate"] = current
	}
	if len(update) == 0 {
		return 0, errors.New("docstore: empty patch")
	}
	res, err := c.UpdateMany(ctx, mongoFilter([]Filter{filter}), update)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", collection, err)
	}
	return int(res.MatchedCount), nil
}

// Delete implements Store.
func (m *Mongo) Delete(ctx context.Context, collection string, filter Filter) (int, error) {
	if err := m.opts.checkFilters([]Filter{filter}); err != nil {
		return 0, err
	}
	if emptyIn([]Filter{filter}) {
		return 0, nil
	}
	c, err := m.coll(ctx, collection)
	if err != nil {
		return 0, err
	}
	res, err := c.DeleteMany(ctx, mongoFilter([]Filter{filter}))
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return int(res.DeletedCount), nil
}

// Close implements Store.
func (m *Mongo) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func fromBSON(raw bson.M) Document {
	d := Document{Fields: make(map[string]any, len(raw))}
	for k, v := range raw {
		switch k {
		case "_id":
			d.ID = fmt.Sprint(v)
		case keyField:
			d.Key, _ = v.(string)
		default:
			d.Fields[k] = normalize(v)
		}
	}
	return d
}

// normalize converts driver value types to the plain Go values the other
// backends return.
func normalize(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}
		return out
	default:
		return v
	}
}
