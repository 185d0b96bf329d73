// Package fakeapi is an in-memory stand-in for the calorie-tracking
// backend and its nutrition index. It serves the same routes the client
// calls and backs end-to-end tests and the devserver command.
package fakeapi

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"caltrack/internal/platform/clock"
	"caltrack/internal/platform/logging"
)

const tokenTTL = 72 * time.Hour

type user struct {
	FirstName    string
	MiddleName   string
	LastName     string
	Email        string
	PhoneNumber  string
	PasswordHash []byte
}

type profile struct {
	Goal                string  `json:"goal"`
	Gender              string  `json:"gender"`
	HeightFeet          int     `json:"heightFeet"`
	HeightInches        int     `json:"heightInches"`
	WeightLbs           float64 `json:"weightLbs"`
	ActivityLevel       string  `json:"activityLevel"`
	MaintenanceCalories float64 `json:"maintenanceCalories"`
	GainCalories        float64 `json:"gainCalories"`
	LossCalories        float64 `json:"lossCalories"`
}

type entry struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Calories           float64 `json:"calories"`
	Protein            float64 `json:"protein"`
	ServingWeightGrams float64 `json:"servingWeightGrams"`
}

// Food is one item of the nutrition catalog.
type Food struct {
	TagID              string  `json:"tagId,omitempty"`
	FoodName           string  `json:"foodName"`
	BrandName          string  `json:"brandName,omitempty"`
	NixItemID          string  `json:"nixItemId,omitempty"`
	Calories           float64 `json:"calories"`
	Protein            float64 `json:"protein"`
	ServingWeightGrams float64 `json:"servingWeightGrams"`
}

type Option func(*Server)

func WithClock(c clock.Clock) Option { return func(s *Server) { s.clock = c } }

func WithSecret(secret []byte) Option { return func(s *Server) { s.secret = secret } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = logging.Component(l, "fakeapi") } }

// WithLatency delays every response, for exercising client timeouts.
func WithLatency(d time.Duration) Option { return func(s *Server) { s.latency = d } }

func WithCatalog(foods []Food) Option { return func(s *Server) { s.catalog = foods } }

type Server struct {
	mu       sync.Mutex
	clock    clock.Clock
	secret   []byte
	logger   *slog.Logger
	latency  time.Duration
	catalog  []Food
	users    map[string]*user
	profiles map[string]profile
	days     map[string]map[string][]entry
	owners   map[int64]string
	nextID   int64
	failures map[string]int
	engine   *gin.Engine
}

func New(opts ...Option) *Server {
	s := &Server{
		clock:    clock.SystemClock{},
		secret:   []byte("caltrack-dev-secret"),
		logger:   logging.Discard(),
		catalog:  DefaultCatalog(),
		users:    map[string]*user{},
		profiles: map[string]profile{},
		days:     map[string]map[string][]entry{},
		owners:   map[int64]string{},
		failures: map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// FailNext makes the next call whose "METHOD /path" starts with route
// answer with status.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = status
}

var releaseMode sync.Once

func (s *Server) routes() *gin.Engine {
	releaseMode.Do(func() { gin.SetMode(gin.ReleaseMode) })
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.injectFailures())

	api := r.Group("/api")
	api.POST("/user/register", s.register)
	api.POST("/user/login", s.login)

	authed := api.Group("")
	authed.Use(s.authRequired())
	authed.GET("/user/details", s.details)
	authed.PUT("/user/update-phone", s.updatePhone)
	authed.PUT("/user/update-password", s.updatePassword)
	authed.POST("/profile/submit", s.submitProfile)
	authed.GET("/profile/get", s.getProfile)
	authed.GET("/calories/date/:date", s.getDay)
	authed.POST("/calories/date/:date/addFood", s.addFood)
	authed.DELETE("/calories/food/:id", s.removeFood)

	nutrition := api.Group("/nutrition")
	nutrition.GET("/search", s.search)
	nutrition.GET("/food/branded/:nixItemId/nutrients", s.brandedNutrients)
	nutrition.POST("/food/common/:foodName/nutrients", s.commonNutrients)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		s.logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.String("request_id", c.GetHeader("X-Request-ID")),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(started)))
	}
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-c.Request.Context().Done():
				c.Abort()
				return
			}
		}
		key := c.Request.Method + " " + strings.TrimPrefix(c.Request.URL.Path, "/api")
		s.mu.Lock()
		for route, status := range s.failures {
			if strings.HasPrefix(key, route) {
				delete(s.failures, route)
				s.mu.Unlock()
				c.AbortWithStatusJSON(status, gin.H{"error": "injected failure"})
				return
			}
		}
		s.mu.Unlock()
		c.Next()
	}
}
