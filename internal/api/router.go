package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/baechuer/careportal/internal/api/handlers"
	"github.com/baechuer/careportal/internal/audit"
	"github.com/baechuer/careportal/internal/backend"
	"github.com/baechuer/careportal/internal/config"
	"github.com/baechuer/careportal/internal/domain"
	"github.com/baechuer/careportal/internal/guard"
	"github.com/baechuer/careportal/internal/logger"
	"github.com/baechuer/careportal/internal/proxy"
	"github.com/baechuer/careportal/internal/session"
	"github.com/baechuer/careportal/internal/web"
	"github.com/baechuer/careportal/middleware"
)

const serviceName = "careportal"

// Deps are the long lived collaborators built in main.
type Deps struct {
	Sessions *session.Manager
	Backend  *backend.APIs
	Renderer *web.Renderer
	// Redis backs the login rate limiter; nil disables it.
	Redis  *redis.Client
	Audit  *audit.Logger
	Probes []handlers.Probe
}

func NewRouter(cfg *config.Config, deps Deps) (http.Handler, error) {
	if deps.Audit == nil {
		deps.Audit = audit.Nop()
	}
	policy := guard.DefaultPolicy(cfg.LoginPath, cfg.UnauthorizedPath)

	backendProxy, err := proxy.New(cfg.BackendURL, "/api")
	if err != nil {
		return nil, err
	}

	pages := handlers.NewPageHandler(handlers.PageDeps{
		Renderer:  deps.Renderer,
		Policy:    policy,
		Sessions:  deps.Sessions,
		Patient:   deps.Backend.Patient,
		Doctor:    deps.Backend.Doctor,
		Assistant: deps.Backend.Assistant,
		Admin:     deps.Backend.Admin,
		Clinics:   deps.Backend.Clinics,
		Messages:  deps.Backend.Messages,
	})
	authH := handlers.NewAuthHandler(deps.Sessions, deps.Backend.Auth, policy)
	patientH := handlers.NewPatientHandler(deps.Backend.Patient)
	doctorH := handlers.NewDoctorHandler(deps.Backend.Doctor)
	assistantH := handlers.NewAssistantHandler(deps.Backend.Assistant)
	adminH := handlers.NewAdminHandler(deps.Backend.Admin, deps.Backend.Clinics)
	messageH := handlers.NewMessageHandler(deps.Backend.Messages)
	uploadH := handlers.NewUploadHandler(deps.Backend.Uploads, cfg.UploadMaxBytes, cfg.UploadAllowedTypes)
	readyH := handlers.NewReadinessHandler(deps.Probes...)

	attempts := middleware.NewAttemptLimiter(deps.Redis)
	loginBudget := middleware.LimitConfig{
		Scope:  "login",
		Limit:  cfg.LoginRLLimit,
		Window: cfg.LoginRLWindow,
		KeyFn:  middleware.KeyByIP,
	}
	apiLoginLimit := attempts.Middleware(loginBudget)
	loginBudget.Reject = func(w http.ResponseWriter, r *http.Request, _ time.Duration) {
		q := url.Values{"error": {"Too many sign-in attempts. Please wait and try again."}}
		http.Redirect(w, r, policy.LoginPath()+"?"+q.Encode(), http.StatusSeeOther)
	}
	pageLoginLimit := attempts.Middleware(loginBudget)
	if !cfg.RLEnabled || deps.Redis == nil {
		apiLoginLimit, pageLoginLimit = passThrough, passThrough
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger.Log))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	if cfg.TracingEnabled {
		r.Use(middleware.Tracing(serviceName))
	}
	r.Use(middleware.SecurityHeaders(cfg.CookieSecure))
	r.Use(middleware.Session(deps.Sessions))

	// Infrastructure
	r.Get("/healthz", readyH.Healthz)
	r.Get("/readyz", readyH.Readyz)
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", web.StaticHandler())

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(middleware.RouteGuard(policy, deps.Audit))
		r.Use(middleware.NoStore)

		r.Get("/", pages.Home)
		r.Get("/help", pages.Help)
		r.Get("/privacy", pages.Privacy)
		r.Get("/appointments", pages.PublicAppointments)
		r.Get(policy.UnauthorizedPath(), pages.Unauthorized)

		r.Get(policy.LoginPath(), pages.LoginPage)
		r.With(pageLoginLimit).Post(policy.LoginPath(), pages.LoginSubmit)
		r.Get("/auth/register", pages.RegisterPage)
		r.Post("/auth/register", pages.RegisterSubmit)
		r.Get("/auth/verify-otp", pages.VerifyOTPPage)
		r.Post("/auth/verify-otp", pages.VerifyOTPSubmit)
		r.Post("/auth/logout", pages.LogoutSubmit)

		r.Group(func(r chi.Router) {
			r.Use(pages.Protect)

			r.Route("/patient", func(r chi.Router) {
				r.Get("/", homeRedirect(domain.RolePatient))
				r.Get("/dashboard", pages.Dashboard(domain.RolePatient))
				r.Get("/appointments", pages.Appointments(domain.RolePatient))
				r.Post("/appointments", pages.BookAppointment)
				r.Post("/appointments/{id}/cancel", pages.CancelAppointment)
				r.Post("/appointments/{id}/reschedule", pages.RescheduleAppointment)
				r.Get("/records", pages.Records)
				r.Get("/lab-results", pages.LabResults)
				r.Get("/prescriptions", pages.Prescriptions)
				r.Get("/messages", pages.MessagesPage)
				r.Post("/messages", pages.SendMessage)
			})

			r.Route("/doctor", func(r chi.Router) {
				r.Get("/", homeRedirect(domain.RoleDoctor))
				r.Get("/dashboard", pages.Dashboard(domain.RoleDoctor))
				r.Get("/appointments", pages.Appointments(domain.RoleDoctor))
				r.Post("/appointments/{id}/status", pages.UpdateAppointmentStatus)
				r.Get("/patients", pages.Patients)
				r.Get("/patients/{id}", pages.PatientChart)
				r.Get("/messages", pages.MessagesPage)
				r.Post("/messages", pages.SendMessage)
			})

			r.Route("/assistant", func(r chi.Router) {
				r.Get("/", homeRedirect(domain.RoleAssistant))
				r.Get("/dashboard", pages.Dashboard(domain.RoleAssistant))
				r.Get("/appointments", pages.Appointments(domain.RoleAssistant))
				r.Post("/appointments/{id}/check-in", pages.CheckIn)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Get("/", homeRedirect(domain.RoleAdmin))
				r.Get("/dashboard", pages.Dashboard(domain.RoleAdmin))
				r.Get("/users", pages.Users)
				r.Post("/users", pages.CreateUser)
				r.Post("/users/{id}/delete", pages.DeleteUser)
				r.Get("/clinics", pages.ClinicsPage)
				r.Post("/clinics", pages.CreateClinic)
				r.Post("/clinics/{id}/delete", pages.DeleteClinic)
			})
		})
	})

	// JSON API
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.HeaderXRequestID},
			ExposedHeaders:   []string{middleware.HeaderXRequestID},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		if cfg.RLEnabled {
			r.Use(httprate.LimitByIP(cfg.RLLimit, cfg.RLWindow))
		}
		r.Use(middleware.NoStore)
		r.Use(middleware.APIGuard(policy, deps.Audit))

		r.Route("/auth", func(r chi.Router) {
			r.With(apiLoginLimit).Post("/login", authH.Login)
			r.Post("/register", authH.Register)
			r.Post("/verify-otp", authH.VerifyOTP)
			r.Post("/logout", authH.Logout)
			r.With(middleware.RequireSession).Get("/me", authH.Me)
		})

		r.Route("/patient", func(r chi.Router) {
			r.Get("/dashboard", patientH.Dashboard)
			r.Get("/appointments", patientH.ListAppointments)
			r.Post("/appointments", patientH.BookAppointment)
			r.Patch("/appointments/{id}/cancel", patientH.CancelAppointment)
			r.Patch("/appointments/{id}/reschedule", patientH.RescheduleAppointment)
			r.Get("/doctors/{doctorID}/slots", patientH.AvailableSlots)
			r.Get("/records", patientH.Records)
			r.Get("/lab-results", patientH.LabResults)
			r.Get("/prescriptions", patientH.Prescriptions)
		})

		r.Route("/doctor", func(r chi.Router) {
			r.Get("/dashboard", doctorH.Dashboard)
			r.Get("/appointments", doctorH.ListAppointments)
			r.Patch("/appointments/{id}/status", doctorH.UpdateAppointmentStatus)
			r.Get("/patients", doctorH.ListPatients)
			r.Get("/patients/{id}", doctorH.GetPatient)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Get("/dashboard", assistantH.Dashboard)
			r.Get("/appointments", assistantH.ListAppointments)
			r.Post("/appointments/{id}/check-in", assistantH.CheckIn)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/stats", adminH.Stats)
			r.Get("/users", adminH.ListUsers)
			r.Post("/users", adminH.CreateUser)
			r.Put("/users/{id}", adminH.UpdateUser)
			r.Delete("/users/{id}", adminH.DeleteUser)
			r.Post("/clinics", adminH.CreateClinic)
			r.Put("/clinics/{id}", adminH.UpdateClinic)
			r.Delete("/clinics/{id}", adminH.DeleteClinic)
		})

		// clinic directory is public, edits live under /admin
		r.Get("/clinics", adminH.ListClinics)
		r.Get("/clinics/{id}", adminH.GetClinic)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Get("/messages/conversations", messageH.Conversations)
			r.Get("/messages/conversations/{id}", messageH.Thread)
			r.Post("/messages", messageH.Send)
			r.Post("/upload", uploadH.Upload)
		})

		r.Handle("/*", backendProxy)
	})

	r.NotFound(pages.NotFound)

	return r, nil
}

func homeRedirect(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, role.HomePath(), http.StatusFound)
	}
}

func passThrough(next http.Handler) http.Handler { return next }
