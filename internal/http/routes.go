package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/pulse-camp/portal-api/internal/adapters/realtime"
	"github.com/pulse-camp/portal-api/internal/data"
	domainauth "github.com/pulse-camp/portal-api/internal/domain/auth"
	"github.com/pulse-camp/portal-api/internal/ports"
	"github.com/pulse-camp/portal-api/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Manager       *service.AuthManager
	Profiles      *data.ProfileRepo
	Courses       *data.CourseRepo
	Assignments   *data.AssignmentRepo
	Groups        *data.GroupRepo
	Notes         *data.NoteRepo
	Grades        *data.GradeRepo
	Schedule      *data.ScheduleRepo
	Sessions      *data.StudyRepo
	Quizzes       *service.QuizService
	Notifications *service.NotificationService
	Hub           *realtime.Hub
	Files         ports.FileStore

	// Optional institutional SSO wiring; routes are registered only when
	// SSO is non-nil.
	SSO        ports.SSOProvider
	Issuer     ports.SessionIssuer
	RoleMapper ports.GroupRoleMapper
	Directory  ports.ProfileDirectory

	Pool           *pgxpool.Pool
	Redis          *redis.Client
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter builds the portal API router with the full middleware chain:
// panic recovery, request logging, and auth state resolution, with per-group
// access guards applied at registration.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Manager:    services.Manager,
		Logger:     logger,
		SSO:        services.SSO,
		Issuer:     services.Issuer,
		RoleMapper: services.RoleMapper,
		Profiles:   services.Directory,
	}
	registerAuthRoutes(mux, authHandlers)
	registerProfileRoutes(mux, &ProfileHandlers{Repo: services.Profiles, Manager: services.Manager, Logger: logger})
	registerCourseRoutes(mux, &CourseHandlers{Courses: services.Courses, Files: services.Files, Logger: logger})
	registerAssignmentRoutes(mux, &AssignmentHandlers{
		Assignments:   services.Assignments,
		Files:         services.Files,
		Notifications: services.Notifications,
		Logger:        logger,
	})
	registerGroupRoutes(mux, &GroupHandlers{Groups: services.Groups, Logger: logger})
	registerNoteRoutes(mux, &NoteHandlers{Notes: services.Notes, Logger: logger})
	registerGradeRoutes(mux, &GradeHandlers{Grades: services.Grades, Logger: logger})
	registerScheduleRoutes(mux, &ScheduleHandlers{Schedule: services.Schedule, Logger: logger})
	registerStudyRoutes(mux, &StudyHandlers{Sessions: services.Sessions, Logger: logger})
	registerQuizRoutes(mux, &QuizHandlers{Quizzes: services.Quizzes, Logger: logger})
	registerNotificationRoutes(mux, &NotificationHandlers{Notifications: services.Notifications, Logger: logger})

	ws := &WSHandlers{Hub: services.Hub, AllowedOrigins: services.AllowedOrigins, Logger: logger}
	mux.Handle("GET /api/ws", RequireAuth()(http.HandlerFunc(ws.Connect)))

	health := &HealthHandlers{Pool: services.Pool, Redis: services.Redis, Logger: logger}
	mux.HandleFunc("GET /healthz", health.Live)
	mux.HandleFunc("HEAD /healthz", health.Live)
	mux.HandleFunc("GET /readyz", health.Ready)

	var handler http.Handler = mux
	handler = WithAuthState(services.Manager)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// handle registers pattern with the guard middleware applied.
func handle(mux *http.ServeMux, pattern string, guard func(http.Handler) http.Handler, fn http.HandlerFunc) {
	mux.Handle(pattern, guard(fn))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /api/auth/state", h.State)
	handle(mux, "POST /api/auth/signin", PublicOnly(), h.SignIn)
	handle(mux, "POST /api/auth/signup", PublicOnly(), h.SignUp)
	mux.HandleFunc("POST /api/auth/signout", h.SignOut)
	handle(mux, "POST /api/auth/refresh-profile", RequireAuth(), h.RefreshProfile)
	if h.SSO != nil {
		handle(mux, "GET /api/auth/sso/login", PublicOnly(), h.SSOLogin)
		mux.HandleFunc("GET /api/auth/sso/callback", h.SSOCallback)
	}
}

func registerProfileRoutes(mux *http.ServeMux, h *ProfileHandlers) {
	handle(mux, "GET /api/profile", RequireAuth(), h.Own)
	handle(mux, "PATCH /api/profile", RequireAuth(), h.UpdateOwn)
	admin := RequireRole(domainauth.RoleAdmin)
	handle(mux, "GET /api/admin/users", admin, h.List)
	handle(mux, "GET /api/admin/roles/stats", admin, h.RoleStats)
	handle(mux, "PUT /api/admin/users/{id}/role", admin, h.SetRole)
}

func registerCourseRoutes(mux *http.ServeMux, h *CourseHandlers) {
	auth := RequireAuth()
	staff := RequireRole(domainauth.RoleTeacher)
	handle(mux, "GET /api/courses", auth, h.List)
	handle(mux, "GET /api/courses/mine", auth, h.Mine)
	handle(mux, "GET /api/courses/{id}", auth, h.Get)
	handle(mux, "POST /api/courses", staff, h.Create)
	handle(mux, "PATCH /api/courses/{id}", staff, h.Update)
	handle(mux, "DELETE /api/courses/{id}", staff, h.Delete)
	handle(mux, "GET /api/courses/{id}/materials", auth, h.ListMaterials)
	handle(mux, "POST /api/courses/{id}/materials", staff, h.CreateMaterial)
	handle(mux, "DELETE /api/courses/{id}/materials/{materialID}", staff, h.DeleteMaterial)
}

func registerAssignmentRoutes(mux *http.ServeMux, h *AssignmentHandlers) {
	auth := RequireAuth()
	staff := RequireRole(domainauth.RoleTeacher)
	handle(mux, "POST /api/assignments", staff, h.Create)
	handle(mux, "GET /api/assignments/mine", auth, h.ListMine)
	handle(mux, "GET /api/courses/{id}/assignments", auth, h.ListByCourse)
	handle(mux, "PUT /api/assignments/{id}/status", auth, h.UpdateStatus)
	handle(mux, "GET /api/assignments/{id}/recipients", staff, h.Recipients)
}

func registerGroupRoutes(mux *http.ServeMux, h *GroupHandlers) {
	auth := RequireAuth()
	handle(mux, "GET /api/groups", auth, h.List)
	handle(mux, "POST /api/groups", auth, h.Create)
	handle(mux, "POST /api/groups/join", auth, h.JoinByInvite)
	handle(mux, "POST /api/groups/{id}/join", auth, h.Join)
	handle(mux, "POST /api/groups/{id}/leave", auth, h.Leave)
	handle(mux, "GET /api/groups/{id}/members", auth, h.Members)
}

func registerNoteRoutes(mux *http.ServeMux, h *NoteHandlers) {
	auth := RequireAuth()
	handle(mux, "GET /api/notes", auth, h.List)
	handle(mux, "POST /api/notes", auth, h.Create)
	handle(mux, "PATCH /api/notes/{id}", auth, h.Update)
	handle(mux, "DELETE /api/notes/{id}", auth, h.Delete)
}

func registerGradeRoutes(mux *http.ServeMux, h *GradeHandlers) {
	auth := RequireAuth()
	handle(mux, "GET /api/grades", auth, h.List)
	handle(mux, "POST /api/grades", auth, h.Create)
	handle(mux, "DELETE /api/grades/{id}", auth, h.Delete)
	handle(mux, "GET /api/grades/gpa", auth, h.GPA)
}

func registerScheduleRoutes(mux *http.ServeMux, h *ScheduleHandlers) {
	auth := RequireAuth()
	handle(mux, "GET /api/schedule", auth, h.List)
	handle(mux, "POST /api/schedule", auth, h.Create)
	handle(mux, "DELETE /api/schedule/{id}", auth, h.Delete)
}

func registerStudyRoutes(mux *http.ServeMux, h *StudyHandlers) {
	auth := RequireAuth()
	handle(mux, "POST /api/study/sessions", auth, h.Start)
	handle(mux, "POST /api/study/sessions/{id}/finish", auth, h.Finish)
	handle(mux, "GET /api/study/sessions", auth, h.List)
	handle(mux, "GET /api/study/stats", auth, h.Stats)
}

func registerQuizRoutes(mux *http.ServeMux, h *QuizHandlers) {
	auth := RequireAuth()
	handle(mux, "POST /api/quizzes", auth, h.Generate)
	handle(mux, "GET /api/quizzes", auth, h.List)
	handle(mux, "GET /api/quizzes/{id}", auth, h.Get)
	handle(mux, "POST /api/quizzes/{id}/submit", auth, h.Submit)
	handle(mux, "DELETE /api/quizzes/{id}", auth, h.Delete)
}

func registerNotificationRoutes(mux *http.ServeMux, h *NotificationHandlers) {
	auth := RequireAuth()
	staff := RequireRole(domainauth.RoleTeacher)
	handle(mux, "GET /api/notifications", auth, h.List)
	handle(mux, "GET /api/notifications/unread", auth, h.UnreadCount)
	handle(mux, "PUT /api/notifications/{id}/read", auth, h.MarkRead)
	handle(mux, "PUT /api/notifications/read-all", auth, h.MarkAllRead)
	handle(mux, "POST /api/notifications", staff, h.Create)
}
