// internal/app/store/savedvideos/savedvideostore.go
package savedvideostore

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxVideoIDLength bounds the opaque video IDs accepted from clients.
const MaxVideoIDLength = 256

// ErrInvalidVideoID is returned for empty or oversized video IDs.
var ErrInvalidVideoID = errors.New("invalid video id")

// ErrNotFound is returned when removing a video that was not saved.
var ErrNotFound = errors.New("video not saved")

// SavedVideo is one entry on a viewer's saved list.
type SavedVideo struct {
	ViewerID string    `bson:"viewer_id" json:"-"`
	VideoID  string    `bson:"video_id"  json:"videoId"`
	SavedAt  time.Time `bson:"saved_at"  json:"savedAt"`
}

// Store provides saved video persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new saved video store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("saved_videos")}
}

// ValidateVideoID trims id and checks it is usable.
func ValidateVideoID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > MaxVideoIDLength {
		return "", ErrInvalidVideoID
	}
	return id, nil
}

// Add saves a video for the viewer. Saving an already saved video keeps its
// original timestamp.
func (s *Store) Add(ctx context.Context, viewerID, videoID string) (SavedVideo, error) {
	videoID, err := ValidateVideoID(videoID)
	if err != nil {
		return SavedVideo{}, err
	}

	filter := bson.M{"viewer_id": viewerID, "video_id": videoID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"viewer_id": viewerID,
			"video_id":  videoID,
			"saved_at":  time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out SavedVideo
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return SavedVideo{}, err
	}
	return out, nil
}

// Remove deletes a saved video.
func (s *Store) Remove(ctx context.Context, viewerID, videoID string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"viewer_id": viewerID, "video_id": videoID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IDs returns the viewer's saved video IDs, most recently saved first.
func (s *Store) IDs(ctx context.Context, viewerID string) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "saved_at", Value: -1}, {Key: "video_id", Value: 1}}).
		SetProjection(bson.M{"video_id": 1})
	cur, err := s.c.Find(ctx, bson.M{"viewer_id": viewerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var row struct {
			VideoID string `bson:"video_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.VideoID)
	}
	return ids, cur.Err()
}

// IsSaved reports whether the viewer saved videoID.
func (s *Store) IsSaved(ctx context.Context, viewerID, videoID string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{"viewer_id": viewerID, "video_id": videoID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteAllForViewer removes every saved video for a viewer.
func (s *Store) DeleteAllForViewer(ctx context.Context, viewerID string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"viewer_id": viewerID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
