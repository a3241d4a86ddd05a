package mongo

import (
	"context"
	"time"

	"github.com/diero-hl/agentclaw/config"
	"github.com/diero-hl/agentclaw/internal/bot/memory"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memoryDoc is an Entry plus the TTL field the collection index expires on.
type memoryDoc struct {
	memory.Entry `bson:",inline"`
	ExpiresAt    time.Time `bson:"expires_at"`
}

type memoryRepo struct {
	col *mongo.Collection
	ttl time.Duration
}

// NewMemoryRepo returns a memory.Log on the bot_memory collection. Entries
// expire after ttl through the ttl_expires_at index.
func NewMemoryRepo(db *mongo.Database, ttl time.Duration) memory.Log {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &memoryRepo{col: db.Collection(config.MemoryCollection), ttl: ttl}
}

func (r *memoryRepo) Append(ctx context.Context, e memory.Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, memoryDoc{Entry: e, ExpiresAt: e.Timestamp.Add(r.ttl)})
	return err
}

func (r *memoryRepo) Recent(ctx context.Context, n int) ([]memory.Entry, error) {
	if n <= 0 {
		n = 50
	}

	cur, err := r.col.Find(ctx,
		bson.M{},
		options.Find().
			SetSort(bson.D{{Key: "timestamp", Value: -1}}).
			SetLimit(int64(n)),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []memoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]memory.Entry, len(docs))
	for i, d := range docs {
		out[len(docs)-1-i] = d.Entry
	}
	return out, nil
}
