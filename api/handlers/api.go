package handlers

import (
	"context"
	"fmt"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/heliumhq/invite-dashboard-api/api"
	"github.com/heliumhq/invite-dashboard-api/config"
	"github.com/heliumhq/invite-dashboard-api/databases"
	"github.com/heliumhq/invite-dashboard-api/identity"
	"github.com/heliumhq/invite-dashboard-api/mailer"
	"github.com/heliumhq/invite-dashboard-api/models"
	"github.com/heliumhq/invite-dashboard-api/services"
	"github.com/heliumhq/invite-dashboard-api/supabase"
	"github.com/heliumhq/invite-dashboard-api/usagelogs"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// App stores the router and the process-wide clients, so they can be reused
type App struct {
	Router  *mux.Router
	Config  config.Config
	Guard   *api.Guard
	Metrics *api.Metrics

	InviteCodes *services.InviteCodes
	Users       *services.Users
	Credits     *services.CreditLedger
	Emails      *services.Emails
	Usage       *services.UsageReports
	Waitlist    *services.Waitlist
	// Locks is used by the scheduler so only one instance runs each job
	Locks databases.SchedulerLockDatabase

	closers []func(context.Context) error
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.Metrics.Middleware)

	ic := InviteCode{Service: a.InviteCodes}
	u := User{Service: a.Users}
	c := Credit{Ledger: a.Credits, Emails: a.Emails}
	e := Email{Service: a.Emails}
	ul := UsageLog{Service: a.Usage}
	wl := Waitlist{Service: a.Waitlist}

	// healthchex
	r.HandleFunc("/health", a.healthCheckHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")
	r.Handle("/metrics", a.Metrics.Handler()).Methods("GET")

	// bulk sends are paced by the email limiter and run past the request timeout
	bulk := r.PathPrefix(a.Config.APIPrefix).Subrouter()

	apiCreate := r.PathPrefix(a.Config.APIPrefix).Subrouter()
	if a.Config.RequestTimeout > 0 {
		apiCreate.Use(api.TimeoutMiddleware(a.Config.RequestTimeout))
	}
	admin := func(h http.HandlerFunc) http.Handler { return a.Guard.Admin(h) }
	user := func(h http.HandlerFunc) http.Handler { return a.Guard.User(h) }

	apiCreate.Handle("/invite-codes", admin(ic.InviteCodesHandler)).Methods("GET")
	apiCreate.Handle("/invite-codes/generate", admin(ic.GenerateInviteCodeHandler)).Methods("POST")
	apiCreate.Handle("/invite-codes/bulk-delete", admin(ic.BulkDeleteInviteCodesHandler)).Methods("POST")
	apiCreate.Handle("/invite-codes/archive", admin(ic.ArchiveInviteCodeHandler)).Methods("POST")
	apiCreate.Handle("/invite-codes/unarchive", admin(ic.UnarchiveInviteCodeHandler)).Methods("POST")
	apiCreate.Handle("/invite-codes/bulk-archive-used", admin(ic.BulkArchiveUsedHandler)).Methods("POST")
	apiCreate.Handle("/invite-codes/{code_id}", admin(ic.DeleteInviteCodeHandler)).Methods("DELETE")

	apiCreate.Handle("/users", user(u.UsersHandler)).Methods("GET")
	apiCreate.Handle("/users", user(u.CreateUserHandler)).Methods("POST")
	apiCreate.Handle("/users/bulk-delete", user(u.BulkDeleteUsersHandler)).Methods("POST")
	apiCreate.Handle("/users/fetch-emails", user(u.FetchEmailsHandler)).Methods("POST")
	apiCreate.Handle("/users/{user_id}", user(u.DeleteUserHandler)).Methods("DELETE")

	apiCreate.Handle("/credits/balances", admin(c.CreditBalancesHandler)).Methods("GET")
	apiCreate.Handle("/credits/assign", admin(c.AssignCreditsHandler)).Methods("POST")
	apiCreate.Handle("/credits/purchases", admin(c.CreditPurchasesHandler)).Methods("GET")
	apiCreate.Handle("/credits/purchases/{purchase_id}/payment", admin(c.PurchasePaymentHandler)).Methods("GET")

	bulk.Handle("/emails/bulk", user(e.SendBulkEmailHandler)).Methods("POST")
	apiCreate.Handle("/emails/individual", user(e.SendIndividualEmailHandler)).Methods("POST")
	apiCreate.Handle("/emails/images", user(e.EmailImagesHandler)).Methods("GET")
	apiCreate.Handle("/emails/preview", user(e.PreviewEmailHandler)).Methods("POST")

	apiCreate.Handle("/usage-logs/aggregated", admin(ul.AggregatedUsageLogsHandler)).Methods("POST")

	apiCreate.Handle("/waitlist", user(wl.WaitlistHandler)).Methods("GET")
	apiCreate.Handle("/waitlist/archive", user(wl.ArchiveWaitlistHandler)).Methods("POST")

	return r
}

// Handler wraps the router with CORS and panic recovery
func (a *App) Handler() http.Handler {
	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(a.Config.CORSOrigins),
		gorillahandlers.AllowCredentials(),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"}),
	)
	recovery := gorillahandlers.RecoveryHandler(
		gorillahandlers.RecoveryLogger(recoveryLogger{}),
		gorillahandlers.PrintRecoveryStack(!a.Config.IsProduction()),
	)
	return recovery(cors(a.Router))
}

// Initialize is invoked by main to connect with the stores and create a router.
// ctx bounds the lifetime of the token caches and should live as long as the server.
func (a *App) Initialize(ctx context.Context) error {
	client, err := databases.NewClient(ctx, &a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}
	a.closers = append(a.closers, client.Disconnect)
	if err := client.Ping(ctx); err != nil {
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	db := databases.NewDatabase(&a.Config, client)
	if err := databases.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	zap.S().Info("invite-dashboard-api has connected to the database")

	sb := supabase.New(a.Config.SupabaseURL, a.Config.SupabaseServiceRoleKey, a.Config.HTTPClientTimeout)

	var aggregator usagelogs.Aggregator = &usagelogs.RPCAggregator{Caller: sb}
	if a.Config.UsageLogsDatabaseURL != "" {
		pg, err := usagelogs.NewPostgresAggregator(ctx, a.Config.UsageLogsDatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to usage logs database: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return pg.Close() })
		aggregator = pg
		zap.S().Info("usage logs are aggregated from postgres")
	}

	var payments services.PaymentLookup
	if a.Config.StripeSecretKey != "" {
		payments = services.NewStripePayments(a.Config.StripeSecretKey)
	}

	a.Wire(Stores{
		InviteCodes:     databases.NewInviteCodeDatabase(db),
		Profiles:        databases.NewProfileDatabase(db),
		CreditBalances:  databases.NewCreditBalanceDatabase(db),
		CreditPurchases: databases.NewCreditPurchaseDatabase(db),
		Waitlist:        databases.NewWaitlistDatabase(db),
		Locks:           databases.NewSchedulerLockDatabase(db),
		Directory:       sb,
		Sender:          newSender(&a.Config),
		Images:          mailer.LoadImages(a.Config.EmailImagesDir),
		Aggregator:      aggregator,
		Payments:        payments,
	})
	a.Guard = api.NewGuard(ctx, a.Config.AdminPassword, identity.NewTokenVerifier(a.Config.SupabaseJWTSecret))

	// initialize api router
	a.initializeRoutes()
	return nil
}

// Stores are the backends the services are built on
type Stores struct {
	InviteCodes     databases.InviteCodeDatabase
	Profiles        databases.ProfileDatabase
	CreditBalances  databases.CreditBalanceDatabase
	CreditPurchases databases.CreditPurchaseDatabase
	Waitlist        databases.WaitlistDatabase
	Locks           databases.SchedulerLockDatabase
	Directory       identity.Directory
	Sender          mailer.Sender
	Images          *mailer.Images
	Aggregator      usagelogs.Aggregator
	Payments        services.PaymentLookup
}

// Wire builds the services on top of s
func (a *App) Wire(s Stores) {
	names := &services.NameResolver{Directory: s.Directory, Profiles: s.Profiles, Waitlist: s.Waitlist}
	a.InviteCodes = &services.InviteCodes{DB: s.InviteCodes}
	a.Users = &services.Users{Directory: s.Directory, Profiles: s.Profiles}
	a.Credits = &services.CreditLedger{
		Balances:  s.CreditBalances,
		Purchases: s.CreditPurchases,
		Names:     names,
		Payments:  s.Payments,
	}
	a.Emails = &services.Emails{
		Sender:    s.Sender,
		Images:    s.Images,
		Profiles:  s.Profiles,
		Directory: s.Directory,
		Limiter:   newLimiter(a.Config.EmailRatePerSecond),
	}
	a.Usage = &services.UsageReports{Aggregator: s.Aggregator}
	a.Waitlist = &services.Waitlist{DB: s.Waitlist}
	a.Locks = s.Locks
	if a.Metrics == nil {
		a.Metrics = api.NewMetrics()
	}
}

// Close releases the database connections
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			zap.S().Warnw("failed to close connection", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func newSender(conf *config.Config) mailer.Sender {
	if conf.EmailProvider == "sendgrid" {
		return &mailer.SendGridSender{
			APIKey:   conf.SendGridAPIKey,
			FromName: conf.SMTPFrom,
			From:     conf.SenderEmail,
		}
	}
	return &mailer.SMTPSender{
		Host:     conf.SMTPHost,
		Port:     conf.SMTPPort,
		Username: conf.SMTPUser,
		Password: conf.SMTPPass,
		FromName: conf.SMTPFrom,
		From:     conf.SenderEmail,
		Timeout:  conf.HTTPClientTimeout,
	}
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (a *App) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthCheckResponse{
		Status:      "healthy",
		Environment: a.Config.Environment,
	})
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.RootResponse{
		Message: "Invite Code Dashboard API",
		Version: Version,
	})
}

// recoveryLogger sends recovered panics to the zap logger
type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	zap.S().Error(v...)
}
