package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
	"github.com/pulse-camp/portal-api/internal/service"
)

// AssignmentHandlers serves assignment creation, listings and status updates.
type AssignmentHandlers struct {
	Assignments   *data.AssignmentRepo
	Files         ports.FileStore
	Notifications *service.NotificationService
	Logger        *slog.Logger
}

// Create creates an assignment and fans it out to the listed students. JSON
// bodies carry a pre-uploaded file_url; multipart bodies carry the attachment
// inline under "file" with the request JSON under "assignment".
func (h *AssignmentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAssignmentRequest
	if isMultipart(r) {
		if err := h.decodeMultipart(r, &req); err != nil {
			WriteAppError(w, err)
			return
		}
	} else if !DecodeJSON(w, r, &req) {
		return
	}

	assignment, err := h.Assignments.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	if h.Notifications != nil {
		h.Notifications.NotifyMany(r.Context(), req.StudentIDs,
			"New assignment: "+assignment.Title, "assignment")
	}
	WriteJSON(w, http.StatusCreated, assignment)
}

func (h *AssignmentHandlers) decodeMultipart(r *http.Request, req *model.CreateAssignmentRequest) error {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperrors.Validationf("parsing upload: %v", err)
	}
	payload := r.FormValue("assignment")
	if payload == "" {
		return apperrors.Validation("assignment part is required")
	}
	if err := json.Unmarshal([]byte(payload), req); err != nil {
		return apperrors.Validationf("decoding assignment part: %v", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// The attachment is optional.
		return nil
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := fmt.Sprintf("assignments/%s", header.Filename)
	url, err := h.Files.Upload(r.Context(), objectPath, contentType, file, header.Size)
	if err != nil {
		return fmt.Errorf("storing attachment: %w", err)
	}
	req.FileURL = &url
	return nil
}

// ListMine returns the student's assignments with their per-student status.
func (h *AssignmentHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Assignments.ListForStudent(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// ListByCourse returns all assignments of a course.
func (h *AssignmentHandlers) ListByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	list, err := h.Assignments.ListByCourse(r.Context(), courseID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

type updateStatusRequest struct {
	Status model.AssignmentStatus `json:"status"`
}

// UpdateStatus moves the caller's copy of an assignment between pending,
// submitted and graded.
func (h *AssignmentHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Assignments.UpdateStatus(r.Context(), id, currentUserID(r.Context()), req.Status); err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"assignment_id": id, "status": req.Status})
}

// Recipients returns the per-student rows of an assignment (teacher view).
func (h *AssignmentHandlers) Recipients(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	recipients, err := h.Assignments.Recipients(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"recipients": recipients})
}
