package director

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/malexanderboyd/godr4ft/internal"
	"github.com/malexanderboyd/godr4ft/internal/director/models"
	"github.com/malexanderboyd/godr4ft/internal/director/utils"
)

type StatusResponse struct {
	Uptime      string `json:"uptime"`
	Sessions    int64  `json:"sessions"`
	Drafting    int64  `json:"drafting"`
	Connections int64  `json:"connections"`
	CanRestart  bool   `json:"canRestart"`
}

// Router serves the websocket endpoint and the operator status pages.
func (c *Coordinator) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/ws", c.newConnection)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/getStatus/{key}", c.status)
	return r
}

// newConnection upgrades the request. The user id comes from the query, then
// the cookie, and is generated for first time visitors.
func (c *Coordinator) newConnection(w http.ResponseWriter, r *http.Request) {
	logger := internal.GetLogger()
	q := r.URL.Query()
	userID := q.Get("userID")
	if userID == "" {
		if ok, id := utils.UserIDFromCookie(r, models.UserCookieName); ok {
			userID = id
		} else {
			userID = uuid.NewString()
		}
	}

	ws, err := c.upgrader.Upgrade(w, r, utils.UserCookieHeader(userID, models.UserCookieName))
	if err != nil {
		logger.Warnw("websocket upgrade failed", "user", userID, "request", middleware.GetReqID(r.Context()), "error", err)
		return
	}
	conn := NewConnection(c, ws, userID, q.Get("userName"), q.Get("sessionID"))
	if !c.AddConnection(conn) {
		_ = ws.Close()
		return
	}
	go conn.Listen()
}

func (c *Coordinator) status(w http.ResponseWriter, r *http.Request) {
	if key := chi.URLParam(r, "key"); c.statusKey == "" || key != c.statusKey {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	drafting := c.drafting.Load()
	resp := StatusResponse{
		Uptime:      time.Since(c.startedAt).Round(time.Second).String(),
		Sessions:    c.active.Load(),
		Drafting:    drafting,
		Connections: c.connected.Load(),
		CanRestart:  drafting == 0,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		internal.GetLogger().Warnw("cannot write status", "error", err)
	}
}
