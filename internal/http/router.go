package http

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"placement/internal/domain/user"
	"placement/internal/http/handlers"
	"placement/internal/http/metrics"
	httpmw "placement/internal/http/middleware"
)

type RouterDependencies struct {
	AuthHandler        *handlers.AuthHandler
	JobHandler         *handlers.JobHandler
	ApplicationHandler *handlers.ApplicationHandler
	MessageHandler     *handlers.MessageHandler
	InterviewHandler   *handlers.InterviewHandler
	AssessmentHandler  *handlers.AssessmentHandler
	ProfileHandler     *handlers.ProfileHandler
	AdminHandler       *handlers.AdminHandler
	EventHandler       *handlers.EventHandler
	AuthMiddleware     *httpmw.AuthMiddleware
	Limiter            httpmw.Limiter
	Metrics            *metrics.Collector
	Logger             *zap.Logger
	RequestTimeout     time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = httpmw.Chain(r.baseHandler(), httpmw.RequestID, httpmw.Logging(deps.Logger), httpmw.BodyLimit(maxBodyBytes), httpmw.Recover, httpmw.Metrics(deps.Metrics), httpmw.Timeout(deps.RequestTimeout))
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	authLimit := httpmw.RateLimit(r.deps.Limiter, func(req *http.Request) string {
		return "auth:ip:" + httpmw.ClientIP(req)
	}, 20, time.Minute)
	metricsHandler := metrics.NewHandler(r.deps.Metrics)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path := strings.TrimSuffix(req.URL.Path, "/")

		switch {
		case req.Method == http.MethodGet && path == "/health":
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		case req.Method == http.MethodGet && path == "/metrics":
			metricsHandler.ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/register":
			authLimit(http.HandlerFunc(r.deps.AuthHandler.Register)).ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/login":
			authLimit(http.HandlerFunc(r.deps.AuthHandler.Login)).ServeHTTP(w, req)
			return
		case req.Method == http.MethodPost && path == "/auth/refresh":
			r.deps.AuthHandler.Refresh(w, req)
			return
		}

		if path == "/auth/logout" || path == "/auth/me" || hasAnyPrefix(path, "/jobs", "/applications", "/messages", "/interviews", "/assessments", "/submissions", "/users/", "/admin/", "/events") {
			protected := r.deps.AuthMiddleware.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				r.handleProtected(w, req)
			}))
			protected.ServeHTTP(w, req)
			return
		}

		http.NotFound(w, req)
	})
}

func (r *Router) handleProtected(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimSuffix(req.URL.Path, "/")
	parts := strings.Split(strings.Trim(path, "/"), "/")
	method := req.Method

	student := func(h http.HandlerFunc) { httpmw.RequireRole(user.RoleStudent)(h).ServeHTTP(w, req) }
	admin := func(h http.HandlerFunc) { httpmw.RequireRole(user.RoleAdmin)(h).ServeHTTP(w, req) }

	switch {
	case method == http.MethodPost && path == "/auth/logout":
		r.deps.AuthHandler.Logout(w, req)
		return
	case method == http.MethodGet && path == "/auth/me":
		r.deps.AuthHandler.Me(w, req)
		return

	case method == http.MethodGet && path == "/jobs":
		r.deps.JobHandler.List(w, req)
		return
	case method == http.MethodPost && path == "/jobs":
		admin(r.deps.JobHandler.Create)
		return
	case method == http.MethodGet && path == "/jobs/applied":
		student(r.deps.ApplicationHandler.ListOwn)
		return
	case matches(parts, "jobs", "*"):
		switch method {
		case http.MethodGet:
			r.deps.JobHandler.Get(w, req)
		case http.MethodPut:
			admin(r.deps.JobHandler.Update)
		case http.MethodDelete:
			admin(r.deps.JobHandler.Delete)
		default:
			methodNotAllowed(w)
		}
		return
	case method == http.MethodGet && matches(parts, "jobs", "*", "eligibility"):
		student(r.deps.ApplicationHandler.Eligibility)
		return
	case method == http.MethodPost && matches(parts, "jobs", "*", "apply"):
		student(r.deps.ApplicationHandler.Apply)
		return

	case method == http.MethodGet && path == "/applications":
		admin(r.deps.ApplicationHandler.List)
		return
	case method == http.MethodGet && matches(parts, "applications", "*"):
		r.deps.ApplicationHandler.Get(w, req)
		return
	case method == http.MethodPatch && matches(parts, "applications", "*", "status"):
		admin(r.deps.ApplicationHandler.UpdateStatus)
		return

	case method == http.MethodGet && path == "/messages":
		r.deps.MessageHandler.List(w, req)
		return
	case method == http.MethodPost && path == "/messages":
		admin(r.deps.MessageHandler.Create)
		return
	case matches(parts, "messages", "*"):
		switch method {
		case http.MethodGet:
			r.deps.MessageHandler.Get(w, req)
		case http.MethodPut:
			admin(r.deps.MessageHandler.Update)
		case http.MethodDelete:
			admin(r.deps.MessageHandler.Delete)
		default:
			methodNotAllowed(w)
		}
		return
	case method == http.MethodPost && matches(parts, "messages", "*", "read"):
		r.deps.MessageHandler.MarkRead(w, req)
		return

	case method == http.MethodGet && path == "/interviews":
		r.deps.InterviewHandler.List(w, req)
		return
	case method == http.MethodPost && path == "/interviews":
		admin(r.deps.InterviewHandler.Schedule)
		return
	case matches(parts, "interviews", "*"):
		switch method {
		case http.MethodGet:
			r.deps.InterviewHandler.Get(w, req)
		case http.MethodPut:
			admin(r.deps.InterviewHandler.Update)
		default:
			methodNotAllowed(w)
		}
		return
	case method == http.MethodPost && matches(parts, "interviews", "*", "accept"):
		student(r.deps.InterviewHandler.Accept)
		return
	case method == http.MethodPost && matches(parts, "interviews", "*", "reschedule"):
		student(r.deps.InterviewHandler.RequestReschedule)
		return
	case method == http.MethodPost && matches(parts, "interviews", "*", "cancel"):
		admin(r.deps.InterviewHandler.Cancel)
		return
	case method == http.MethodPost && matches(parts, "interviews", "*", "feedback"):
		admin(r.deps.InterviewHandler.AddFeedback)
		return

	case method == http.MethodGet && path == "/assessments":
		r.deps.AssessmentHandler.List(w, req)
		return
	case method == http.MethodPost && path == "/assessments":
		admin(r.deps.AssessmentHandler.Create)
		return
	case matches(parts, "assessments", "*"):
		switch method {
		case http.MethodGet:
			r.deps.AssessmentHandler.Get(w, req)
		case http.MethodPut:
			admin(r.deps.AssessmentHandler.Update)
		case http.MethodDelete:
			admin(r.deps.AssessmentHandler.Delete)
		default:
			methodNotAllowed(w)
		}
		return
	case method == http.MethodPost && matches(parts, "assessments", "*", "submit"):
		student(r.deps.AssessmentHandler.Submit)
		return
	case method == http.MethodGet && matches(parts, "assessments", "*", "submission"):
		student(r.deps.AssessmentHandler.Submission)
		return
	case method == http.MethodGet && matches(parts, "assessments", "*", "submissions"):
		admin(r.deps.AssessmentHandler.Submissions)
		return
	case method == http.MethodPost && matches(parts, "submissions", "*", "grade"):
		admin(r.deps.AssessmentHandler.Grade)
		return

	case matches(parts, "users", "*", "profile"):
		switch method {
		case http.MethodGet:
			r.deps.ProfileHandler.Get(w, req)
		case http.MethodPut:
			r.deps.ProfileHandler.Update(w, req)
		default:
			methodNotAllowed(w)
		}
		return
	case method == http.MethodPost && matches(parts, "users", "*", "profile", "education"):
		r.deps.ProfileHandler.AddEducation(w, req)
		return
	case method == http.MethodDelete && matches(parts, "users", "*", "profile", "education", "*"):
		r.deps.ProfileHandler.DeleteEducation(w, req)
		return
	case method == http.MethodPost && matches(parts, "users", "*", "profile", "experience"):
		r.deps.ProfileHandler.AddExperience(w, req)
		return
	case method == http.MethodDelete && matches(parts, "users", "*", "profile", "experience", "*"):
		r.deps.ProfileHandler.DeleteExperience(w, req)
		return

	case method == http.MethodPost && path == "/admin/students":
		admin(r.deps.AdminHandler.InviteStudents)
		return
	case method == http.MethodGet && path == "/admin/students":
		admin(r.deps.AdminHandler.ListStudents)
		return
	case method == http.MethodPost && path == "/admin/users":
		admin(r.deps.AdminHandler.RegisterAdmin)
		return
	case method == http.MethodGet && path == "/admin/users":
		admin(r.deps.AdminHandler.ListUsers)
		return

	case method == http.MethodGet && path == "/events/upcoming":
		r.deps.EventHandler.Upcoming(w, req)
		return
	case method == http.MethodPost && path == "/events":
		admin(r.deps.EventHandler.Create)
		return
	case method == http.MethodDelete && matches(parts, "events", "*"):
		admin(r.deps.EventHandler.Delete)
		return
	}

	http.NotFound(w, req)
}

// matches compares path segments against a pattern where "*" matches any single segment.
func matches(parts []string, pattern ...string) bool {
	if len(parts) != len(pattern) {
		return false
	}
	for i, segment := range pattern {
		if segment != "*" && segment != parts[i] {
			return false
		}
	}
	return true
}

func hasAnyPrefix(path string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") || (strings.HasSuffix(prefix, "/") && strings.HasPrefix(path, prefix)) {
			return true
		}
	}
	return false
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}
