package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
	"wuyrush.io/quire/common/logging"
	"wuyrush.io/quire/common/throttle"
	qe "wuyrush.io/quire/errors"
	st "wuyrush.io/quire/stores"
	"wuyrush.io/quire/stores/session"
)

// a combination of web and application server since it serves both application logic and web page rendering
type quireServer struct {
	DS     st.DocStore
	CS     st.CredStore
	SM     *session.Manager
	TH     *throttle.Throttle
	Router chi.Router
}

func (s *quireServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func newServer(cfg Config, ds st.DocStore, cs st.CredStore) *quireServer {
	max, window := cfg.SignInAttemptMax, cfg.SignInAttemptWindow
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &quireServer{
		DS: ds,
		CS: cs,
		SM: session.NewManager(cfg.SessionKey),
		TH: throttle.New(1024, max, window),
	}
}

// start up application server and serve incoming requests
func serve() error {
	cfg := loadConfig()
	logging.SetupLog("quire", cfg.Verbose)
	// initialize dependencies in data layer
	ds, err := setupDocStore(cfg)
	if err != nil {
		return err
	}
	cs, err := setupCredStore(cfg)
	if err != nil {
		return err
	}

	svr := newServer(cfg, ds, cs)
	svr.SetupMux()

	log.WithFields(log.Fields{
		"host":    cfg.Host,
		"port":    cfg.Port,
		"dataDir": cfg.DataDir,
	}).Info("quire server is starting up")
	hs := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        svr,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 13,
	}

	errc := make(chan error, 1)
	go func() { errc <- hs.ListenAndServe() }()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-sigc:
		log.WithField("signal", sig.String()).Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return hs.Shutdown(ctx)
	}
}

func setupDocStore(cfg Config) (st.DocStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, qe.NewServiceFailure("failed preparing document storage root").WithCause(err)
	}
	return &st.LocalDocStore{Root: cfg.DataDir}, nil
}

func setupCredStore(cfg Config) (st.CredStore, error) {
	cs := &st.YAMLCredStore{Path: cfg.CredsFile}
	// an absent or unreadable credential file is fatal, not an empty user base
	if _, err := cs.Load(); err != nil {
		return nil, err
	}
	return cs, nil
}
