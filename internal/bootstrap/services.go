package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulse-camp/portal-api/config"
	"github.com/pulse-camp/portal-api/internal/adapters/llm"
	"github.com/pulse-camp/portal-api/internal/adapters/objectstore"
	"github.com/pulse-camp/portal-api/internal/adapters/realtime"
	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/ports"
	"github.com/pulse-camp/portal-api/internal/service"
)

// ServiceContainer holds all application repositories and services.
type ServiceContainer struct {
	Profiles    *data.ProfileRepo
	Courses     *data.CourseRepo
	Assignments *data.AssignmentRepo
	Groups      *data.GroupRepo
	Notes       *data.NoteRepo
	Grades      *data.GradeRepo
	Schedule    *data.ScheduleRepo
	Sessions    *data.StudyRepo

	Quizzes       *service.QuizService
	Notifications *service.NotificationService
	Hub           *realtime.Hub
	Files         ports.FileStore
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config *config.AppConfig
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// BuildServices constructs the repositories, the realtime hub, and the
// domain services on top of them.
func BuildServices(ctx context.Context, deps ServiceDeps) (*ServiceContainer, error) {
	cfg := deps.Config
	logger := deps.Logger

	files, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		Bucket:        cfg.Storage.Bucket,
		UseSSL:        cfg.Storage.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("configure object store: %w", err)
	}

	hub := realtime.NewHub(logger)

	notifications := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:   data.NewNotificationRepo(deps.Pool),
		Pusher: hub,
		Logger: logger,
	})

	generator := llm.NewGenerator(llm.Config{
		BaseURL: cfg.Quiz.BaseURL,
		APIKey:  cfg.Quiz.APIKey,
		Model:   cfg.Quiz.Model,
		Logger:  logger,
	})
	quizzes := service.NewQuizService(service.QuizServiceOptions{
		Generator: generator,
		Repo:      data.NewQuizRepo(deps.Pool),
		Logger:    logger,
	})

	return &ServiceContainer{
		Profiles:      data.NewProfileRepo(deps.Pool),
		Courses:       data.NewCourseRepo(deps.Pool),
		Assignments:   data.NewAssignmentRepo(deps.Pool),
		Groups:        data.NewGroupRepo(deps.Pool),
		Notes:         data.NewNoteRepo(deps.Pool),
		Grades:        data.NewGradeRepo(deps.Pool),
		Schedule:      data.NewScheduleRepo(deps.Pool),
		Sessions:      data.NewStudyRepo(deps.Pool),
		Quizzes:       quizzes,
		Notifications: notifications,
		Hub:           hub,
		Files:         files,
	}, nil
}
