package main

import (
	"context"

	"github.com/golang/glog"

	"github.com/quizzbuzz/quizzbuzz/pkg/microservices"
	"github.com/quizzbuzz/quizzbuzz/pkg/signals"
	quizservice "github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal"
	"github.com/quizzbuzz/quizzbuzz/services/quizsvc/internal/quiz"
)

var (
	serviceConfig *microservices.ServiceConfig
)

func init() {
	serviceConfig = microservices.BuildServiceConfig()
}

func main() {
	defer glog.Flush()

	ctx := signals.SetupSignalContext()

	client, err := microservices.BuildStoreClient(ctx, serviceConfig.Store)
	if err != nil {
		glog.Fatalf("error connecting to document store: %s", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			glog.Errorf("error disconnecting document store client: %s", err)
		}
	}()

	coll := microservices.StoreCollection(client, serviceConfig.Store)

	if err := quizservice.InstallIndexes(ctx, coll); err != nil {
		glog.Fatal(err)
	}

	quizServer := quizservice.NewQuizServer(quiz.NewMongoStore(coll))
	if err := microservices.StartAPIServer(ctx, quizServer, serviceConfig); err != nil {
		glog.Errorf("http quiz server stopped: %s", err)
	}
}
