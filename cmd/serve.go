package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/foodaccess-cli/internal/engine"
	"github.com/sells-group/foodaccess-cli/internal/geo"
	"github.com/sells-group/foodaccess-cli/internal/model"
	"github.com/sells-group/foodaccess-cli/internal/monitoring"
	"github.com/sells-group/foodaccess-cli/internal/store"
)

var serveFlags struct {
	port        int
	useOSM      bool
	densityPath string
	soilPath    string
	climatePath string
	vulnPath    string
	vacantPath  string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Serves plan submission, run history, and prometheus metrics over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		cat, err := loadCatalog()
		if err != nil {
			return err
		}

		registry := prometheus.NewRegistry()
		metrics := monitoring.NewMetrics(registry)

		sp, err := loadCollaborators(serveFlags.soilPath, serveFlags.climatePath, serveFlags.vulnPath, serveFlags.densityPath)
		if err != nil {
			return err
		}

		opts := []engine.Option{
			engine.WithStore(st),
			engine.WithMetrics(metrics),
		}
		vacant, err := loadVacant(serveFlags.vacantPath)
		if err != nil {
			return err
		}
		if vacant != nil {
			opts = append(opts, engine.WithVacantSource(vacant))
		}
		if serveFlags.useOSM {
			osm := newOverpassSource()
			sp.Transit = osm
			opts = append(opts, engine.WithOutletSource(osm))
		}
		eng := engine.New(engineConfig(), cat, sp, opts...)

		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		r.Get("/runs", func(w http.ResponseWriter, req *http.Request) {
			runs, err := st.ListRuns(req.Context(), store.RunFilter{
				Status: model.RunStatus(req.URL.Query().Get("status")),
				City:   req.URL.Query().Get("city"),
			})
			if err != nil {
				writeJSONResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			writeJSONResponse(w, http.StatusOK, runs)
		})

		r.Get("/runs/{id}", func(w http.ResponseWriter, req *http.Request) {
			run, err := st.GetRun(req.Context(), chi.URLParam(req, "id"))
			if err != nil {
				writeJSONResponse(w, http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			writeJSONResponse(w, http.StatusOK, run)
		})

		r.Post("/plan", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				City   string    `json:"city"`
				BBox   geo.BBox  `json:"bbox"`
				Center geo.Point `json:"center"`
				Types  []string  `json:"types,omitempty"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if err := body.BBox.Validate(); err != nil {
				writeJSONResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			center := body.Center
			if center == (geo.Point{}) {
				center = body.BBox.Center()
			}

			// Runs execute asynchronously; clients poll /runs for results.
			go func() {
				_, err := eng.Plan(ctx, engine.Request{
					City:       body.City,
					BBox:       body.BBox,
					CityCenter: center,
					Types:      body.Types,
				})
				if err != nil {
					zap.L().Error("async plan failed", zap.String("city", body.City), zap.Error(err))
				}
			}()

			writeJSONResponse(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		})

		port := serveFlags.port
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveFlags.useOSM, "osm", false, "query OpenStreetMap for transit stops and outlets")
	serveCmd.Flags().StringVar(&serveFlags.densityPath, "density", "", "JSON file of population density cells")
	serveCmd.Flags().StringVar(&serveFlags.soilPath, "soil", "", "JSON file of soil assessment cells")
	serveCmd.Flags().StringVar(&serveFlags.climatePath, "climate", "", "JSON file with the area climate summary")
	serveCmd.Flags().StringVar(&serveFlags.vulnPath, "vulnerability", "", "JSON file of social vulnerability cells")
	serveCmd.Flags().StringVar(&serveFlags.vacantPath, "vacant", "", "JSON file of vacant or underutilized parcels")
	rootCmd.AddCommand(serveCmd)
}

func writeJSONResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
