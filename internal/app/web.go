package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relabs-tech/climate_node/internal/climate"
	"github.com/relabs-tech/climate_node/internal/config"
	"github.com/relabs-tech/climate_node/internal/history"
)

const (
	defaultHistoryMinutes = 60
	maxHistoryMinutes     = 7 * 24 * 60
)

// climateServer keeps the last published sample and serves it over HTTP.
type climateServer struct {
	mu   sync.RWMutex
	last climate.Sample
	have bool

	repo history.Repository
	// record is set when the server owns the history (no shared database)
	// and must store what it receives.
	record bool

	hub    *liveHub
	logger zerolog.Logger
}

func newClimateServer(repo history.Repository, record bool, logger zerolog.Logger) *climateServer {
	return &climateServer{
		repo:   repo,
		record: record,
		hub:    newLiveHub(logger),
		logger: logger,
	}
}

func RunWeb() error {
	cfg := config.Get()
	logger := log.With().Str("component", "web").Logger()

	// 1) History: shared with the producer through SQLite, or our own
	repo, closeRepo, err := openHistory(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepo()

	srv := newClimateServer(repo, cfg.HistoryDBPath == "", logger)
	if s, err := repo.Latest(context.Background()); err == nil {
		srv.setLast(s)
	}

	// 2) Connect to MQTT broker and follow the climate topic
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	if err := subscribeJSON(client, cfg.TopicClimate, logger, srv.handleSample); err != nil {
		return err
	}

	// 3) HTTP
	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	logger.Info().Str("addr", addr).Msg("web server listening")
	return http.ListenAndServe(addr, srv.routes(http.FileServer(http.Dir("web"))))
}

func (s *climateServer) setLast(smp climate.Sample) {
	s.mu.Lock()
	s.last = smp
	s.have = true
	s.mu.Unlock()
}

// handleSample records a sample received from MQTT and pushes it to the
// websocket clients.
func (s *climateServer) handleSample(smp climate.Sample) {
	s.setLast(smp)

	if s.record {
		if err := s.repo.Save(context.Background(), smp); err != nil {
			s.logger.Error().Err(err).Msg("failed to save sample")
		}
	}

	payload, err := json.Marshal(smp)
	if err != nil {
		s.logger.Error().Err(err).Msg("json marshal error")
		return
	}
	s.hub.broadcast(payload)
}

// routes serves the API and the live stream; other paths go to static.
func (s *climateServer) routes(static http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/climate", s.handleLatest)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /ws", s.handleLive)
	if static != nil {
		mux.Handle("/", static)
	}
	return mux
}

// handleLatest serves the latest sample, 503 until one arrived.
func (s *climateServer) handleLatest(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	last, have := s.last, s.have
	s.mu.RUnlock()

	if !have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, last)
}

// handleHistory serves the samples of the last ?minutes=N minutes.
func (s *climateServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	minutes := defaultHistoryMinutes
	if v := r.URL.Query().Get("minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryMinutes {
			http.Error(w, fmt.Sprintf("minutes must be 1-%d", maxHistoryMinutes), http.StatusBadRequest)
			return
		}
		minutes = n
	}

	end := time.Now()
	samples, err := s.repo.Range(r.Context(), end.Add(-time.Duration(minutes)*time.Minute), end.Add(time.Second))
	if err != nil && !errors.Is(err, history.ErrReadingNotFound) {
		s.logger.Error().Err(err).Msg("history query failed")
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	if samples == nil {
		samples = []climate.Sample{}
	}
	s.writeJSON(w, samples)
}

func (s *climateServer) handleLive(w http.ResponseWriter, r *http.Request) {
	var initial []byte
	s.mu.RLock()
	if s.have {
		initial, _ = json.Marshal(s.last)
	}
	s.mu.RUnlock()
	s.hub.serve(w, r, initial)
}

func (s *climateServer) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("json encode error")
	}
}
