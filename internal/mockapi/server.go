// Package mockapi is an in-memory stand-in for the itinerary REST API. It
// issues HS256 tokens, scopes schedules to their owner and serves a seeded
// catalog, so the CLI and the sync engine can run end to end.
package mockapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/travelmate/tripplanner/client"
)

// Options configures a Server. Zero values take defaults.
type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	Catalog    []client.CatalogItem
	BcryptCost int
	Now        func() time.Time
	Logger     *zerolog.Logger
}

type user struct {
	record client.UserRecord
	hash   []byte
}

// Server holds users, schedules and the catalog in memory.
type Server struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
	log    zerolog.Logger

	mu           sync.RWMutex
	users        map[int64]*user
	byEmail      map[string]int64
	schedules    map[int64]client.Schedule
	catalog      []client.CatalogItem
	nextUserID   int64
	nextSchedule int64
}

// New returns an empty Server seeded with opts.Catalog (DefaultCatalog when nil).
func New(opts Options) *Server {
	s := &Server{
		secret:    opts.Secret,
		ttl:       opts.TokenTTL,
		cost:      opts.BcryptCost,
		now:       opts.Now,
		log:       log.Logger,
		users:     make(map[int64]*user),
		byEmail:   make(map[string]int64),
		schedules: make(map[int64]client.Schedule),
		catalog:   opts.Catalog,
	}
	if len(s.secret) == 0 {
		s.secret = []byte("tripplanner-dev-secret")
	}
	if s.ttl <= 0 {
		s.ttl = time.Hour
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.Logger != nil {
		s.log = *opts.Logger
	}
	if s.catalog == nil {
		s.catalog = DefaultCatalog()
	}
	return s
}

// Router wires the REST routes without CORS.
func (s *Server) Router() *mux.Router {
	root := mux.NewRouter()
	root.Use(recoverMiddleware(s.log), requestLog(s.log))

	// Auth
	root.HandleFunc("/register", s.register).Methods("POST")
	root.HandleFunc("/login", s.login).Methods("POST")

	// Catalog (/attractions kept for older front ends)
	root.HandleFunc("/catalog-items", s.listCatalog).Methods("GET")
	root.HandleFunc("/attractions", s.listCatalog).Methods("GET")

	// Schedules, owner-only
	sched := root.PathPrefix("/schedules").Subrouter()
	sched.Use(s.requireToken)
	sched.HandleFunc("", s.listSchedules).Methods("GET")
	sched.HandleFunc("", s.createSchedule).Methods("POST")
	sched.HandleFunc("/{id:[0-9]+}", s.getSchedule).Methods("GET")
	sched.HandleFunc("/{id:[0-9]+}", s.updateSchedule).Methods("PUT")
	sched.HandleFunc("/{id:[0-9]+}", s.deleteSchedule).Methods("DELETE")

	// Health
	root.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	return root
}

// Handler is Router wrapped in a permissive CORS policy for browser clients.
func (s *Server) Handler() http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	}).Handler(s.Router())
}

// ScheduleCount returns how many schedules userID owns.
func (s *Server) ScheduleCount(userID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, sc := range s.schedules {
		if sc.UserID == userID {
			n++
		}
	}
	return n
}
