package server

import (
	"embed"
	"io/fs"
	"log"
	"net/http"

	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/storage"
)

//go:embed web
var WebFS embed.FS

type Server struct {
	DB       *storage.DB
	Queue    *mgapi.Client
	Username string
	Password string
}

func New(db *storage.DB, queue *mgapi.Client, user, pass string) *Server {
	return &Server{
		DB:       db,
		Queue:    queue,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	// API Group
	mux.HandleFunc("GET /api/runs", s.basicAuth(s.handleRuns))
	mux.HandleFunc("GET /api/runs/{id}/items", s.basicAuth(s.handleRunItems))
	mux.HandleFunc("GET /api/runs/{id}/stats", s.basicAuth(s.handleRunStats))
	mux.HandleFunc("GET /api/uploads", s.basicAuth(s.handleUploads))
	mux.HandleFunc("GET /api/queue/status", s.basicAuth(s.handleQueueStatus))
	mux.HandleFunc("POST /api/queue/clear", s.basicAuth(s.handleQueueClear))

	// Static Files
	webRoot, err := fs.Sub(WebFS, "web")
	if err != nil {
		return err
	}
	fileServer := http.FileServer(http.FS(webRoot))
	mux.Handle("/", s.basicAuthMiddlewareForStatic(fileServer))

	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) basicAuthMiddlewareForStatic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next.ServeHTTP(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
