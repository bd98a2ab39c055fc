package server

import (
	"encoding/json"
	"net/http"
	"strconv"
)

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.DB.ListRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(runs)
}

func (s *Server) handleRunItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.DB.ListRunItems(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(items)
}

func (s *Server) handleRunStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.DB.RunStats(r.Context(), r.PathValue("id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(stats)
}

func (s *Server) handleUploads(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	uploads, err := s.DB.ListUploads(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(uploads)
}

func (s *Server) handleQueueStatus(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		http.Error(w, "queue API not configured", http.StatusServiceUnavailable)
		return
	}
	snap, err := s.Queue.QueueStatus(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	if s.Queue == nil {
		http.Error(w, "queue API not configured", http.StatusServiceUnavailable)
		return
	}
	ack, err := s.Queue.ClearQueue(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	json.NewEncoder(w).Encode(ack)
}
