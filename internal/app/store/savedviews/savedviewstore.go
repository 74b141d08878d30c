// internal/app/store/savedviews/savedviewstore.go
package savedviewstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/ovaview/internal/app/system/txn"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Features that can own saved views.
const (
	FeatureLibrary  = "library"
	FeatureDiscover = "discover"
	FeatureSaved    = "saved"
	FeatureLatest   = "latest"
)

// ValidFeature reports whether f names a list view.
func ValidFeature(f string) bool {
	switch f {
	case FeatureLibrary, FeatureDiscover, FeatureSaved, FeatureLatest:
		return true
	}
	return false
}

// SavedView is a named list query a viewer can re-apply.
type SavedView struct {
	ID        primitive.ObjectID `bson:"_id"        json:"id"`
	ViewerID  string             `bson:"viewer_id"  json:"-"`
	Feature   string             `bson:"feature"    json:"feature"`
	Name      string             `bson:"name"       json:"name"`
	NameCI    string             `bson:"name_ci"    json:"-"` // folded name; uniqueness ignores case
	Query     map[string]string  `bson:"query"      json:"query"` // encoded list query params
	IsDefault bool               `bson:"is_default" json:"isDefault"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

var (
	// ErrNotFound is returned when a saved view is not found.
	ErrNotFound = errors.New("saved view not found")
	// ErrDuplicateName is returned when a view with the same name exists,
	// ignoring case and diacritics.
	ErrDuplicateName = errors.New("a view with this name already exists")
)

// Store provides saved view persistence.
type Store struct {
	c *mongo.Collection
}

// New creates a new saved view store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("saved_views")}
}

// CreateInput holds the fields for creating a new saved view.
type CreateInput struct {
	ViewerID  string
	Feature   string
	Name      string
	Query     map[string]string
	IsDefault bool
}

// Create creates a new saved view. Making it the default clears the
// viewer's other defaults for the same feature, but only after the insert
// succeeded, so a rejected duplicate leaves the current default alone even
// on servers without transactions.
func (s *Store) Create(ctx context.Context, input CreateInput) (SavedView, error) {
	now := time.Now().UTC()
	if input.Query == nil {
		input.Query = map[string]string{}
	}

	view := SavedView{
		ID:        primitive.NewObjectID(),
		ViewerID:  input.ViewerID,
		Feature:   input.Feature,
		Name:      input.Name,
		NameCI:    text.Fold(input.Name),
		Query:     input.Query,
		IsDefault: input.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := txn.Run(ctx, s.c.Database(), nil, func(ctx context.Context) error {
		if _, err := s.c.InsertOne(ctx, view); err != nil {
			return err
		}
		if !input.IsDefault {
			return nil
		}
		return s.clearDefaults(ctx, input.ViewerID, input.Feature, view.ID, now)
	})
	if err != nil {
		if isDuplicateKeyError(err) {
			return SavedView{}, ErrDuplicateName
		}
		return SavedView{}, err
	}
	return view, nil
}

// clearDefaults unsets the default flag on every view of the feature except keep.
func (s *Store) clearDefaults(ctx context.Context, viewerID, feature string, keep primitive.ObjectID, now time.Time) error {
	_, err := s.c.UpdateMany(ctx, bson.M{
		"_id":        bson.M{"$ne": keep},
		"viewer_id":  viewerID,
		"feature":    feature,
		"is_default": true,
	}, bson.M{
		"$set": bson.M{"is_default": false, "updated_at": now},
	})
	return err
}

func isDuplicateKeyError(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	return false
}

// ListForViewer returns the viewer's views for a feature, default first,
// then by name. An empty feature lists all of them.
func (s *Store) ListForViewer(ctx context.Context, viewerID, feature string) ([]SavedView, error) {
	query := bson.M{"viewer_id": viewerID}
	if feature != "" {
		query["feature"] = feature
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "is_default", Value: -1},
		{Key: "name", Value: 1},
	})
	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	views := []SavedView{}
	if err := cur.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// GetDefault returns the default view for a viewer and feature, or nil.
func (s *Store) GetDefault(ctx context.Context, viewerID, feature string) (*SavedView, error) {
	var view SavedView
	err := s.c.FindOne(ctx, bson.M{
		"viewer_id":  viewerID,
		"feature":    feature,
		"is_default": true,
	}).Decode(&view)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &view, nil
}

// SetDefault makes the view the viewer's default for its feature.
func (s *Store) SetDefault(ctx context.Context, id primitive.ObjectID, viewerID string) error {
	var view SavedView
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "viewer_id": viewerID}).Decode(&view); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}

	now := time.Now().UTC()
	return txn.Run(ctx, s.c.Database(), nil, func(ctx context.Context) error {
		if _, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
			"$set": bson.M{"is_default": true, "updated_at": now},
		}); err != nil {
			return err
		}
		return s.clearDefaults(ctx, viewerID, view.Feature, id, now)
	})
}

// Delete removes a view owned by viewerID.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, viewerID string) error {
	result, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "viewer_id": viewerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAllForViewer deletes all saved views for a viewer.
func (s *Store) DeleteAllForViewer(ctx context.Context, viewerID string) (int64, error) {
	result, err := s.c.DeleteMany(ctx, bson.M{"viewer_id": viewerID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
