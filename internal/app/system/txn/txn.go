// Package txn runs multi-collection writes in a MongoDB transaction when the
// deployment supports one.
//
// Standalone servers (the usual local setup) have no transactions; there the
// function runs once without one, and callers order their writes so that a
// partial failure is safe to retry.
//
// Usage:
//
//	err := txn.Run(ctx, db, log, func(ctx context.Context) error {
//	    if _, err := db.Collection("saved_videos").DeleteMany(ctx, filter); err != nil {
//	        return err
//	    }
//	    _, err := db.Collection("viewer_preferences").DeleteOne(ctx, filter)
//	    return err
//	})
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Func holds the writes to run together. ctx is a mongo.SessionContext inside
// a transaction and the caller's context otherwise; use it for every call.
type Func func(ctx context.Context) error

// Run executes fn in a transaction, or without one when the deployment does
// not support transactions. log may be nil.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn Func) error {
	session, err := db.Client().StartSession()
	if err != nil {
		if log != nil {
			log.Warn("failed to start session, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		if log != nil {
			log.Debug("transactions not supported, running without transaction", zap.Error(err))
		}
		return fn(ctx)
	}
	return err
}

// IsNotSupported reports whether err says the deployment cannot run
// multi-document transactions.
//
// Known codes: 20 (transaction numbers need a replica set or mongos),
// 51 (IllegalOperation), 263 (operation not allowed in a transaction).
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
	}

	// Message fallback for servers that report it differently. Two keyword
	// hits are required so unrelated errors that mention "session" pass.
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range []string{"transaction", "replica set", "session", "not supported", "illegal operation"} {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
