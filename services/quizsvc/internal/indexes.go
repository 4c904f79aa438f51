package quizservice

import (
	"context"

	"github.com/golang/glog"
	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func quizIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "added_at", Value: -1}},
			Options: options.Index().SetName("added_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetName("tags"),
		},
	}
}

// InstallIndexes creates the quiz collection indexes. Existing identical indexes are left alone.
func InstallIndexes(ctx context.Context, coll *mongo.Collection) error {
	names, err := coll.Indexes().CreateMany(ctx, quizIndexes())
	if err != nil {
		return pkgerrors.Wrapf(err, "error installing indexes on %s", coll.Name())
	}
	glog.Infof("installed indexes %v on %s", names, coll.Name())
	return nil
}
