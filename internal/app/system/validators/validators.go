// Package validators creates the viewer collections and attaches JSON-schema
// validators so malformed documents are rejected by the server itself.
package validators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/ovaview/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Collection pairs a collection name with its $jsonSchema document.
type Collection struct {
	Name   string
	Schema bson.M
}

// Collections lists every collection the server writes, in creation order.
func Collections() []Collection {
	return []Collection{
		{"saved_videos", object(
			bson.A{"viewer_id", "video_id", "saved_at"},
			bson.M{
				"viewer_id": nonEmptyString(),
				"video_id":  bson.M{"bsonType": "string", "minLength": 1, "maxLength": 256},
				"saved_at":  bson.M{"bsonType": "date"},
			})},
		{"saved_views", object(
			bson.A{"viewer_id", "feature", "name", "name_ci", "query"},
			bson.M{
				"viewer_id":  nonEmptyString(),
				"feature":    bson.M{"enum": bson.A{"library", "discover", "saved", "latest"}},
				"name":       bson.M{"bsonType": "string", "pattern": `\S`},
				"name_ci":    nonEmptyString(),
				"query":      bson.M{"bsonType": "object"},
				"is_default": bson.M{"bsonType": "bool"},
			})},
		{"viewer_preferences", object(
			bson.A{"viewer_id"},
			bson.M{
				"viewer_id": nonEmptyString(),
				"theme":     bson.M{"enum": bson.A{models.ThemeSystem, models.ThemeLight, models.ThemeDark}},
				"view_mode": bson.M{"enum": bson.A{models.ViewModeGrid, models.ViewModeList}},
				// 80 runes, up to 4 bytes each
				"display_name": bson.M{"bsonType": "string", "maxLength": 320},
			})},
	}
}

func object(required bson.A, props bson.M) bson.M {
	return bson.M{"$jsonSchema": bson.M{
		"bsonType":   "object",
		"required":   required,
		"properties": props,
	}}
}

func nonEmptyString() bson.M {
	return bson.M{"bsonType": "string", "minLength": 1}
}

// EnsureAll creates missing collections and (re)applies their validators.
// Servers without collMod support keep the collection and skip the validator.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		zap.L().Warn("listing collections failed; creating blindly", zap.Error(err))
	}

	var errs []error
	for _, c := range Collections() {
		if err := ensureOne(ctx, db, c, slices.Contains(existing, c.Name)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	return errors.Join(errs...)
}

func ensureOne(ctx context.Context, db *mongo.Database, c Collection, exists bool) error {
	log := zap.L().With(zap.String("collection", c.Name))

	if !exists {
		err := db.CreateCollection(ctx, c.Name)
		switch classify(err) {
		case errNone:
			log.Info("collection created")
		case errExists:
		default:
			return fmt.Errorf("create: %w", err)
		}
	}

	cmd := bson.D{
		{Key: "collMod", Value: c.Name},
		{Key: "validator", Value: c.Schema},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	err := db.RunCommand(ctx, cmd).Err()
	switch classify(err) {
	case errNone:
		log.Info("validator applied")
		return nil
	case errUnsupported:
		log.Info("validator skipped; server lacks collMod")
		return nil
	default:
		return fmt.Errorf("collMod: %w", err)
	}
}

type errKind int

const (
	errNone errKind = iota
	errExists
	errUnsupported
	errOther
)

// classify sorts the server errors schema setup tolerates. Codes: 48
// NamespaceExists, 59 CommandNotFound, 115 CommandNotSupported.
func classify(err error) errKind {
	if err == nil {
		return errNone
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 48:
			return errExists
		case 59, 115:
			return errUnsupported
		}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "already exists"), strings.Contains(msg, "namespace exists"):
		return errExists
	case strings.Contains(msg, "no such command"), strings.Contains(msg, "not implemented"), strings.Contains(msg, "not supported"):
		return errUnsupported
	}
	return errOther
}
