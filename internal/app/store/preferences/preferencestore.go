// internal/app/store/preferences/preferencestore.go
package preferencestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists one preferences document per viewer.
type Store struct {
	c *mongo.Collection
}

// New creates a new preferences store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("viewer_preferences")}
}

// Load returns the viewer's preferences, or the defaults when none are saved.
func (s *Store) Load(ctx context.Context, viewerID string) (models.Preferences, error) {
	var p models.Preferences
	err := s.c.FindOne(ctx, bson.M{"viewer_id": viewerID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			d := models.DefaultPreferences()
			d.ViewerID = viewerID
			return d, nil
		}
		return models.Preferences{}, err
	}
	return p.Normalize(), nil
}

// Save upserts the viewer's preferences and returns the stored document.
func (s *Store) Save(ctx context.Context, viewerID string, p models.Preferences) (models.Preferences, error) {
	p = p.Normalize()

	filter := bson.M{"viewer_id": viewerID}
	update := bson.M{
		"$set": bson.M{
			"theme":        p.Theme,
			"view_mode":    p.ViewMode,
			"display_name": p.DisplayName,
			"updated_at":   time.Now().UTC(),
		},
		"$setOnInsert": bson.M{
			"viewer_id": viewerID,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.Preferences
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.Preferences{}, err
	}
	return out, nil
}

// StaleViewers returns viewer IDs whose preferences were last saved before
// cutoff.
func (s *Store) StaleViewers(ctx context.Context, cutoff time.Time, limit int64) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"viewer_id": 1}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"updated_at": bson.M{"$lt": cutoff}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var row struct {
			ViewerID string `bson:"viewer_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ViewerID)
	}
	return ids, cur.Err()
}

// Delete removes the viewer's preferences.
func (s *Store) Delete(ctx context.Context, viewerID string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"viewer_id": viewerID})
	return err
}
