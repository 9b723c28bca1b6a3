package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/api"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/config"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/databases"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/localstore"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/media"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/notify"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/reconcile"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/remote"
	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/verification"
)

// App stores the router and the shared services, so they can be reused
type App struct {
	Router       *mux.Router
	Config       config.Config
	Cases        *reconcile.Service
	Verification *verification.Service
	AdminDB      databases.AdminDatabase
	Media        media.Store
	Notifier     notify.Notifier
	Stream       *StreamHub

	dbHelper databases.DatabaseHelper
	client   databases.ClientHelper
	local    *localstore.SQLiteStore
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	m := api.MiddlewareDB{DB: a.AdminDB, Secret: []byte(a.Config.JWTSecret)}
	m.SetupGoGuardian()

	if a.Notifier == nil {
		a.Notifier = notify.Nop{}
	}
	if a.Verification == nil {
		a.Verification = verification.NewService(a.Cases, nil)
	}
	if a.Stream == nil {
		a.Stream = NewStreamHub(a.Cases)
	}

	c := Case{Cases: a.Cases, Media: a.Media}
	rep := Report{Cases: a.Cases, Notifier: a.Notifier}
	v := Verification{Service: a.Verification, Media: a.Media}
	adm := Admin{DB: a.AdminDB}

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)
	if a.Config.RequestTimeout > 0 {
		r.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/auth/login", http.HandlerFunc(m.CreateToken)).Methods("POST")
	apiCreate.Handle("/auth/logout", api.Middleware(http.HandlerFunc(api.RevokeToken))).Methods("DELETE")

	apiCreate.Handle("/reports/submit", http.HandlerFunc(rep.SubmitReportHandler)).Methods("POST")

	apiCreate.Handle("/cases", api.Middleware(http.HandlerFunc(c.CasesHandler))).Methods("GET")
	apiCreate.Handle("/cases/stats", api.Middleware(http.HandlerFunc(c.CaseStatsHandler))).Methods("GET")
	apiCreate.Handle("/cases/stream", tokenFromQuery(api.Middleware(http.HandlerFunc(a.Stream.ServeHTTP)))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.CaseByIDHandler))).Methods("GET")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.UpdateCaseHandler))).Methods("PATCH")
	apiCreate.Handle("/case/{case_id}", api.Middleware(http.HandlerFunc(c.DeleteCaseHandler))).Methods("DELETE")
	apiCreate.Handle("/case/{case_id}/evidence", api.Middleware(http.HandlerFunc(c.UploadEvidenceHandler))).Methods("POST")

	apiCreate.Handle("/verification/queue", api.Middleware(http.HandlerFunc(v.QueueHandler))).Methods("GET")
	apiCreate.Handle("/verification/location", api.Middleware(http.HandlerFunc(v.VerifyLocationHandler))).Methods("POST")
	apiCreate.Handle("/verification/{case_id}/{action}", api.Middleware(http.HandlerFunc(v.ActionHandler))).Methods("POST")
	apiCreate.Handle("/images/analyze", api.Middleware(http.HandlerFunc(v.AnalyzeImageHandler))).Methods("POST")

	apiCreate.Handle("/admins", api.Middleware(http.HandlerFunc(adm.AdminsHandler))).Methods("GET")
	apiCreate.Handle("/admins", api.Middleware(http.HandlerFunc(adm.CreateAdminHandler))).Methods("POST")

	apiCreate.Handle("/metrics/summary", api.Middleware(http.HandlerFunc(MetricsSummaryHandler))).Methods("GET")
	apiCreate.Handle("/metrics/routes", api.Middleware(http.HandlerFunc(MetricsRoutesHandler))).Methods("GET")

	if d, ok := a.Media.(media.DiskStore); ok {
		r.PathPrefix(d.URLPrefix).Handler(http.StripPrefix(d.URLPrefix, http.FileServer(http.Dir(d.Dir))))
	}
	return r
}

// Initialize is invoked by main to connect the stores and create a router
func (a *App) Initialize() error {
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()

	if a.Config.JWTSecret == "" {
		a.Config.JWTSecret = randomSecret()
		zap.S().Warn("JWT_SECRET is not set, admin tokens will not survive a restart")
	}

	if err := a.Connect(ctx); err != nil {
		return err
	}
	if err := databases.EnsureHeadAdmin(ctx, a.AdminDB, a.Config.AdminHeadEmail, a.Config.AdminHeadPassword); err != nil {
		zap.S().Errorw("failed to bootstrap head admin", "error", err)
		return err
	}

	a.Verification = verification.NewService(a.Cases, nil)
	a.Notifier = notify.New(&a.Config)
	var err error
	a.Media, err = newMediaStore(&a.Config)
	if err != nil {
		return err
	}

	snap := a.Cases.Refresh(ctx)
	zap.S().Infow("initial case view loaded", "cases", len(snap.Cases), "degraded", snap.Degraded())

	a.initializeRoutes()
	return nil
}

// Connect opens mongo, the admin collection, the local pending queue and the reconciled case
// service. It is shared by the server and galamseyctl.
func (a *App) Connect(ctx context.Context) error {
	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().Errorw("failed to create new client", "error", err)
		return err
	}
	a.client = client
	a.dbHelper = databases.NewDatabase(&a.Config, client)
	if err = client.Connect(ctx); err != nil {
		// admins live in mongo, so there is nothing to serve without it
		zap.S().Errorw("failed to connect to database", "error", err)
		return err
	}
	zap.S().Info("goldguard-case-api has connected to the database")
	a.AdminDB = databases.NewAdminDatabase(a.dbHelper)

	a.local, err = localstore.NewSQLiteStore(a.Config.LocalDBPath)
	if err != nil {
		zap.S().Errorw("failed to open local pending queue", "path", a.Config.LocalDBPath, "error", err)
		return err
	}

	a.Cases = reconcile.NewService(a.remoteStore(), a.local, reconcile.Options{RemoteTimeout: a.Config.RemoteTimeout})
	return nil
}

// Close releases the stores opened by Initialize
func (a *App) Close(ctx context.Context) {
	if a.Stream != nil {
		a.Stream.Close()
	}
	if a.local != nil {
		if err := a.local.Close(); err != nil {
			zap.S().Warnw("failed to close local pending queue", "error", err)
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			zap.S().Warnw("failed to disconnect from database", "error", err)
		}
	}
}

func (a *App) remoteStore() reconcile.RemoteStore {
	switch a.Config.RemoteMode {
	case config.RemoteHTTP:
		zap.S().Infow("using http remote case store", "url", a.Config.RemoteBaseURL)
		return remote.NewClient(a.Config.RemoteBaseURL, remote.Options{
			Token:     a.Config.RemoteToken,
			JWTSecret: a.Config.RemoteJWTSecret,
			Timeout:   a.Config.RemoteTimeout,
		})
	case config.RemoteNone:
		zap.S().Warn("remote case store disabled, all cases stay in the local queue")
		return remote.Disabled{}
	}
	return remote.NewMongoStore(databases.NewCaseDatabase(a.dbHelper))
}

func newMediaStore(conf *config.Config) (media.Store, error) {
	if conf.CloudinaryURL != "" {
		s, err := media.NewCloudinaryStore(conf.CloudinaryURL, "goldguard/evidence")
		if err != nil {
			zap.S().Errorw("failed to configure cloudinary", "error", err)
			return nil, err
		}
		return s, nil
	}
	zap.S().Infow("storing evidence on disk", "dir", conf.UploadDir)
	return media.DiskStore{Dir: conf.UploadDir, URLPrefix: "/uploads/"}, nil
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("reading random secret: %v", err))
	}
	return hex.EncodeToString(b)
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}

// tokenFromQuery lets browser websocket clients, which cannot set headers, pass their token
// as ?token=
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if t := r.URL.Query().Get("token"); t != "" && r.Header.Get("Authorization") == "" {
			r.Header.Set("Authorization", "Bearer "+t)
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
