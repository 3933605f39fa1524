package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"

	"github.com/nyayasetu/nyayasetu/config"
	"github.com/nyayasetu/nyayasetu/handlers"
	"github.com/nyayasetu/nyayasetu/services/ingest_service"
	"github.com/nyayasetu/nyayasetu/services/rag_service"
)

// Dependencies carries everything the route table needs.
type Dependencies struct {
	Pipeline   handlers.Answerer
	Embedder   rag_service.Embedder
	Searcher   rag_service.Searcher
	Processor  *ingest_service.Processor
	Translator handlers.Translator
	DB         *pgxpool.Pool
}

func SetupRoutes(cfg config.Config, deps Dependencies, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	chatHandler := handlers.NewChatHandler(deps.Pipeline, cfg.Environment, logger)
	r.Handle("/api/chat", chatHandler).Methods("POST")

	searchHandler := handlers.NewSearchHandler(deps.Embedder, deps.Searcher, logger)
	r.Handle("/api/documents/search", searchHandler).Methods("POST")

	uploadHandler := handlers.NewUploadHandler(deps.Processor, logger)
	r.Handle("/api/documents/upload", uploadHandler).Methods("POST")

	ingestURLHandler := handlers.NewIngestURLHandler(deps.Processor, logger)
	r.Handle("/api/documents/ingest-url", ingestURLHandler).Methods("POST")

	if deps.Translator != nil {
		translateHandler := handlers.NewTranslateHandler(deps.Translator, logger)
		r.Handle("/api/translate", translateHandler).Methods("POST")
	}

	healthHandler := handlers.NewHealthHandler(deps.DB)
	r.Handle("/health", healthHandler).Methods("GET")

	return r
}

// ServeProduction starts the server behind autocert-managed TLS.
func ServeProduction(n *negroni.Negroni, cfg config.Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	// Listen for HTTP requests on port 80 in a new goroutine. Use
	// autocertManager.HTTPHandler(nil) as the handler. This will send ACME
	// "http-01" challenge responses as necessary, and 302 redirect all other
	// requests to HTTPS.
	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "") // Key and cert provided automatically by autocert.
	log.Fatal(err)
}

// ServeDevelopment starts the server on plain HTTP.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
