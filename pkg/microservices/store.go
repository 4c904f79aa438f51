package microservices

import (
	"context"

	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// BuildStoreClient connects the process-wide document store client and verifies
// the deployment is reachable within cfg.ConnectTimeout.
func BuildStoreClient(ctx context.Context, cfg StoreConfig) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(cfg.AppName).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "error creating document store client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		if dErr := client.Disconnect(context.Background()); dErr != nil {
			glog.Errorf("error disconnecting document store client: %s", dErr)
		}
		return nil, pkgerrors.Wrap(err, "document store unreachable")
	}

	glog.Infof("connected to document store, database %s", cfg.Database)
	return client, nil
}

// StoreCollection returns the collection holding the service's documents.
func StoreCollection(client *mongo.Client, cfg StoreConfig) *mongo.Collection {
	return client.Database(cfg.Database).Collection(cfg.Collection)
}
