package handlers

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *mux.Router, h *AccessCodeHandler) {
	r.HandleFunc("/healthz", HandleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/access-codes", h.HandleGet).Methods("GET")
	r.HandleFunc("/access-codes", h.HandlePost).Methods("POST")
}
