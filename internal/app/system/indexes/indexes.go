// Package indexes reconciles the indexes of the per-viewer collections.
//
// Every collection is keyed on viewer_id, the opaque UUID from the viewer
// cookie. EnsureAll runs at startup and in store tests; it is idempotent.
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Index describes one wanted index.
type Index struct {
	Name   string
	Keys   bson.D
	Unique bool
}

// Wanted lists the indexes of every collection this server writes.
var Wanted = map[string][]Index{
	"saved_videos": {
		// one save per viewer and video
		{Name: "uniq_saved_viewer_video", Keys: bson.D{{Key: "viewer_id", Value: 1}, {Key: "video_id", Value: 1}}, Unique: true},
		{Name: "idx_saved_viewer_savedat", Keys: bson.D{{Key: "viewer_id", Value: 1}, {Key: "saved_at", Value: -1}}},
	},
	"saved_views": {
		{Name: "uniq_view_viewer_feature_nameci", Keys: bson.D{{Key: "viewer_id", Value: 1}, {Key: "feature", Value: 1}, {Key: "name_ci", Value: 1}}, Unique: true},
		{Name: "idx_view_viewer_feature", Keys: bson.D{{Key: "viewer_id", Value: 1}, {Key: "feature", Value: 1}, {Key: "is_default", Value: -1}}},
	},
	"viewer_preferences": {
		{Name: "uniq_prefs_viewer", Keys: bson.D{{Key: "viewer_id", Value: 1}}, Unique: true},
		// prune job scans by last update
		{Name: "idx_prefs_updated", Keys: bson.D{{Key: "updated_at", Value: 1}}},
	},
}

// EnsureAll reconciles Wanted against db and reports every failure at once.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var errs []error
	for _, coll := range collectionOrder() {
		if err := ensure(ctx, db.Collection(coll), Wanted[coll]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", coll, err))
		}
	}
	return errors.Join(errs...)
}

func collectionOrder() []string {
	return []string{"saved_videos", "saved_views", "viewer_preferences"}
}

type present struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique bool   `bson:"unique"`
}

func ensure(ctx context.Context, c *mongo.Collection, want []Index) error {
	have, err := listBySignature(ctx, c)
	if err != nil {
		return fmt.Errorf("list indexes: %w", err)
	}

	var errs []error
	for _, idx := range want {
		start := time.Now()
		log := zap.L().With(
			zap.String("collection", c.Name()),
			zap.String("index", idx.Name),
			zap.String("keys", signature(idx.Keys)),
		)

		action, err := reconcile(ctx, c, idx, have)
		if err != nil {
			log.Warn("index ensure failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", idx.Name, err))
			continue
		}
		log.Info("index "+action, zap.Duration("took", time.Since(start)))
	}
	return errors.Join(errs...)
}

// reconcile makes idx exist, returning what it did. An index on the same
// keys with a different uniqueness is dropped first.
func reconcile(ctx context.Context, c *mongo.Collection, idx Index, have map[string]present) (string, error) {
	action := "created"
	if cur, ok := have[signature(idx.Keys)]; ok {
		if cur.Unique == idx.Unique {
			return "present", nil
		}
		if _, err := c.Indexes().DropOne(ctx, cur.Name); err != nil {
			return "", fmt.Errorf("drop %s: %w", cur.Name, err)
		}
		action = "recreated"
	}

	opts := options.Index().SetName(idx.Name)
	if idx.Unique {
		opts.SetUnique(true)
	}
	_, err := c.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: idx.Keys, Options: opts})
	if err != nil && idx.Unique && isDuplicateKey(err) {
		return "", errors.New("duplicate documents block the unique index")
	}
	return action, err
}

func listBySignature(ctx context.Context, c *mongo.Collection) (map[string]present, error) {
	cur, err := c.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]present)
	for cur.Next(ctx) {
		var p present
		if err := cur.Decode(&p); err != nil {
			zap.L().Warn("skipping undecodable index", zap.String("collection", c.Name()), zap.Error(err))
			continue
		}
		out[signature(p.Key)] = p
	}
	return out, cur.Err()
}

// signature renders a key pattern so that equal patterns compare equal
// regardless of the numeric type the server returned.
func signature(keys bson.D) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%v", k.Key, k.Value)
	}
	return strings.Join(parts, ",")
}

func isDuplicateKey(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return true
	}
	return strings.Contains(err.Error(), "E11000")
}
