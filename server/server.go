// Package server exposes the radar over HTTP: station name search, the
// radar tree as JSON, and a websocket that syncs schedule data to the
// client incrementally.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"

	radar "github.com/platy/transit-radar"
	"github.com/platy/transit-radar/datasync"
	"github.com/platy/transit-radar/gtfstime"
	"github.com/platy/transit-radar/model"
	"github.com/platy/transit-radar/schedule"
	"github.com/platy/transit-radar/suggest"
)

const searchResultLimit = 20

type Server struct {
	data      *schedule.Data
	suggester *suggest.Suggester[model.StopID]
	cache     *RedisCache // optional
	location  *time.Location
	log       *slog.Logger

	defaultMinutes int

	// timeNow is stubbed in tests
	timeNow func() time.Time
}

func New(data *schedule.Data, location *time.Location, cache *RedisCache, defaultMinutes int, log *slog.Logger) *Server {
	return &Server{
		data:           data,
		suggester:      radar.BuildStationIndex(data),
		cache:          cache,
		location:       location,
		log:            log,
		defaultMinutes: defaultMinutes,
		timeNow:        time.Now,
	}
}

// Handler assembles the routes with CORS, gzip and request logging.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{AllowedOrigins: []string{"*"}}))
	r.Use(s.logRequests)

	// the sync websocket stays outside the gzip wrapper; hijacking does
	// not go through a wrapped response writer
	gzipWrapper, _ := gzhttp.NewWrapper(gzhttp.MinSize(1024))
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler { return gzipWrapper(next) })
		r.Get("/searchStation/{query}", s.handleStationSearch)
		r.Get("/from/{name}", s.handleRadar)
	})
	r.Get("/sync/{name}", s.handleSync)

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

type stationLookup struct {
	StopID model.StopID `json:"stop_id"`
	Name   string       `json:"name"`
}

func (s *Server) handleStationSearch(w http.ResponseWriter, r *http.Request) {
	query, err := url.PathUnescape(chi.URLParam(r, "query"))
	if err != nil {
		http.Error(w, "bad query", http.StatusBadRequest)
		return
	}

	matches := s.suggester.Search(query)
	// busiest stations first
	sort.Slice(matches, func(i, j int) bool {
		ii := s.data.Importance(s.data.Stop(matches[i]))
		ji := s.data.Importance(s.data.Stop(matches[j]))
		if ii != ji {
			return ii > ji
		}
		return matches[i] < matches[j]
	})
	if len(matches) > searchResultLimit {
		matches = matches[:searchResultLimit]
	}

	results := make([]stationLookup, 0, len(matches))
	for _, id := range matches {
		results = append(results, stationLookup{StopID: id, Name: s.data.Stop(id).Name})
	}
	writeJSON(w, results)
}

// query reconstructs a search from the request: the named origin
// station, the period starting now (or at ?start=HH:MM:SS) and the
// mode flags.
func (s *Server) query(r *http.Request) (*model.Stop, model.Day, gtfstime.Period, Modes, error) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		return nil, 0, gtfstime.Period{}, Modes{}, err
	}
	origin, err := s.data.StationByName(name)
	if err != nil {
		return nil, 0, gtfstime.Period{}, Modes{}, err
	}

	now := s.timeNow().In(s.location)
	day := model.FromWeekday(now.Weekday())
	start := gtfstime.FromHMS(uint32(now.Hour()), uint32(now.Minute()), uint32(now.Second()))
	if param := r.URL.Query().Get("start"); param != "" {
		parsed, err := gtfstime.Parse(param)
		if err != nil {
			return nil, 0, gtfstime.Period{}, Modes{}, err
		}
		start = parsed
	}

	minutes := s.defaultMinutes
	if param := r.URL.Query().Get("minutes"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed <= 0 {
			return nil, 0, gtfstime.Period{}, Modes{}, fmt.Errorf("bad minutes %q", param)
		}
		minutes = parsed
	}
	period := gtfstime.Between(start, start.Add(time.Duration(minutes)*time.Minute))

	flag := func(key string) bool { return r.URL.Query().Get(key) == "true" }
	modes := Modes{
		UBahn: flag("ubahn"),
		SBahn: flag("sbahn"),
		Bus:   flag("bus"),
		Tram:  flag("tram"),
		Regio: flag("regio"),
	}
	return origin, day, period, modes, nil
}

func (s *Server) handleRadar(w http.ResponseWriter, r *http.Request) {
	cacheKey := r.URL.RequestURI()
	if s.cache != nil {
		if cached := s.cache.Get(r.Context(), cacheKey); cached != nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write(cached)
			return
		}
	}

	origin, day, period, modes, err := s.query(r)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}

	tree := BuildTree(s.data, origin, day, period, modes)
	s.log.Info("search",
		"origin", origin.Name,
		"stations", len(tree.Stops),
		"trips", len(tree.Trips),
		"connections", len(tree.Connections))

	body, err := json.Marshal(tree)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if s.cache != nil {
		s.cache.Set(r.Context(), cacheKey, body)
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// syncRequest is one client message on the sync socket: re-run the
// session's search with a new start time or filters.
type syncRequest struct {
	Start   string `json:"start,omitempty"`
	Minutes int    `json:"minutes,omitempty"`
	UBahn   bool   `json:"ubahn"`
	SBahn   bool   `json:"sbahn"`
	Bus     bool   `json:"bus"`
	Tram    bool   `json:"tram"`
	Regio   bool   `json:"regio"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		http.Error(w, "bad station", http.StatusBadRequest)
		return
	}
	origin, err := s.data.StationByName(name)
	if err != nil {
		s.respondQueryError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Error("websocket accept failed", "err", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closed")

	session := datasync.NewSession()
	s.log.Info("sync session open", "session", session.ID(), "origin", origin.Name)

	ctx := r.Context()
	for {
		var req syncRequest
		if err := wsjson.Read(ctx, conn, &req); err != nil {
			s.log.Info("sync session closed", "session", session.ID())
			return
		}

		now := s.timeNow().In(s.location)
		day := model.FromWeekday(now.Weekday())
		start := gtfstime.FromHMS(uint32(now.Hour()), uint32(now.Minute()), uint32(now.Second()))
		if req.Start != "" {
			if parsed, err := gtfstime.Parse(req.Start); err == nil {
				start = parsed
			}
		}
		minutes := req.Minutes
		if minutes <= 0 {
			minutes = s.defaultMinutes
		}
		period := gtfstime.Between(start, start.Add(time.Duration(minutes)*time.Minute))
		modes := Modes{UBahn: req.UBahn, SBahn: req.SBahn, Bus: req.Bus, Tram: req.Tram, Regio: req.Regio}

		plotter := radar.NewPlotter(day, period, s.data)
		plotter.AddOriginStation(origin)
		for _, rt := range modes.routeTypes() {
			plotter.AddRouteType(rt)
		}
		update := session.AddData(plotter.RequiredData(), s.data)

		if err := wsjson.Write(ctx, conn, update); err != nil {
			s.log.Error("sync write failed", "session", session.ID(), "err", err)
			return
		}
	}
}

func (s *Server) respondQueryError(w http.ResponseWriter, err error) {
	var notFound schedule.NotFoundError
	if errors.As(err, &notFound) {
		http.Error(w, notFound.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *Config, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
