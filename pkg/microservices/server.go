package microservices

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const RequestIDHeader = "X-Request-Id"

// APIServer is implemented by every service that exposes HTTP routes.
type APIServer interface {
	SetupRoutes(r *mux.Router)
}

// NewAPIHandler builds the full handler chain: panic recovery, then CORS, then the router.
func NewAPIHandler(server APIServer, policy CORSPolicy) http.Handler {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	server.SetupRoutes(r)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(glogRecoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(policy.Handler(r))
}

// StartAPIServer serves the API on all interfaces until ctx is cancelled, then
// drains in-flight requests for at most cfg.Server.ShutdownTimeout.
func StartAPIServer(ctx context.Context, server APIServer, cfg *ServiceConfig) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewAPIHandler(server, cfg.CORS),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		glog.Info("http quiz server listening on " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		glog.Info("shutting down http quiz server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		glog.V(4).Infof("request %s %s %s -> %d (%s)", id, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

type glogRecoveryLogger struct{}

func (glogRecoveryLogger) Println(v ...interface{}) {
	glog.Error(v...)
}
