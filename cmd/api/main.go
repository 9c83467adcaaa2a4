package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/adityarathi/finsight/internal/api/handlers"
	"github.com/adityarathi/finsight/internal/api/middleware"
	"github.com/adityarathi/finsight/internal/config"
	"github.com/adityarathi/finsight/internal/extract"
	"github.com/adityarathi/finsight/internal/gcsarchive"
	"github.com/adityarathi/finsight/internal/insights"
	"github.com/adityarathi/finsight/internal/logger"
	store "github.com/adityarathi/finsight/internal/store/firestore"
)

func main() {
	var port = flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	// Initialize logger
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	// Collaborators
	llm, err := extract.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	ocr, err := extract.NewVisionOCR(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Vision OCR client")
	}

	pipeline := extract.NewExtractor(ocr, llm,
		extract.Limits{MinBytes: cfg.MinUploadBytes, MaxBytes: cfg.MaxUploadBytes},
		cfg.MinEmbeddedTextChars,
		log,
	)

	// Persistence is optional; extraction endpoints work without it.
	var st handlers.Store
	var ledgerStore *store.Store
	if cfg.GCPProjectID != "" {
		ledgerStore, err = store.New(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Firestore store")
		}
		defer ledgerStore.Close()
		st = ledgerStore
	} else {
		log.Warn().Msg("No GCP project configured - persistence endpoints will be disabled")
	}

	// Upload archiving is optional as well.
	var archive handlers.Archiver
	if cfg.ReceiptBucket != "" {
		gcs, err := gcsarchive.New(ctx, cfg.ReceiptBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create GCS archive")
		}
		defer gcs.Close()
		archive = gcs
	} else {
		log.Warn().Msg("No receipt bucket configured - upload archiving is disabled")
	}

	// Initialize handlers
	extractHandler := handlers.NewExtractHandler(pipeline, st, archive, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/extract/amount", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.ExtractAmount(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		}
	})

	mux.HandleFunc("/api/extract/transactions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			extractHandler.ExtractTransactions(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		}
	})

	mux.HandleFunc("/api/receipts/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			// Extract object name from path
			objectName := strings.TrimPrefix(r.URL.Path, "/api/receipts/")
			if objectName == "" {
				middleware.WriteError(w, http.StatusBadRequest, "Object name is required", "")
				return
			}
			extractHandler.GetReceipt(w, r, objectName)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		}
	})

	if st != nil {
		ledgerHandler := handlers.NewLedgerHandler(st, log)
		insightsHandler := handlers.NewInsightsHandler(st, insights.NewGenerator(llm), log)

		mux.HandleFunc("/api/incomes", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				ledgerHandler.AddIncome(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			}
		})

		mux.HandleFunc("/api/expenses", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				ledgerHandler.AddExpense(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			}
		})

		mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				ledgerHandler.ListTransactions(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			}
		})

		mux.HandleFunc("/api/summary", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				ledgerHandler.Summary(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			}
		})

		mux.HandleFunc("/api/insights", func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				insightsHandler.Generate(w, r)
			} else {
				middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
			}
		})
	}

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
