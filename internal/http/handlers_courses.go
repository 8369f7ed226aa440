package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/pulse-camp/portal-api/internal/data"
	"github.com/pulse-camp/portal-api/internal/domain/model"
	apperrors "github.com/pulse-camp/portal-api/internal/errors"
	"github.com/pulse-camp/portal-api/internal/ports"
)

// maxUploadBytes bounds material and attachment uploads.
const maxUploadBytes = 25 << 20

var (
	errNoProfileFields = errors.New("at least one of username, full_name, avatar_url is required")
	errUnknownRoleID   = errors.New("role_id must be 1 (admin), 2 (teacher) or 3 (student)")
	errMissingFile     = errors.New("file part is required for file materials")
)

// CourseHandlers serves courses and course materials.
type CourseHandlers struct {
	Courses *data.CourseRepo
	Files   ports.FileStore
	Logger  *slog.Logger
}

// List returns the courses visible to the caller: public ones plus their own.
func (h *CourseHandlers) List(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Courses.List(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// Mine returns the courses the signed-in student is involved in.
func (h *CourseHandlers) Mine(w http.ResponseWriter, r *http.Request) {
	courses, err := h.Courses.ListForStudent(r.Context(), currentUserID(r.Context()))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

// Get returns one course.
func (h *CourseHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	course, err := h.Courses.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// Create creates a course owned by the calling teacher.
func (h *CourseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	course, err := h.Courses.Create(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, course)
}

// Update applies a partial update to the caller's own course.
func (h *CourseHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req model.UpdateCourseRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	course, err := h.Courses.Update(r.Context(), id, currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, course)
}

// Delete removes the caller's own course.
func (h *CourseHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Courses.Delete(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMaterials returns the materials for a course.
func (h *CourseHandlers) ListMaterials(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	materials, err := h.Courses.ListMaterials(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// CreateMaterial adds a material to a course. Note and link materials arrive
// as JSON; file materials as multipart with the object stored before the row
// is written.
func (h *CourseHandlers) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	courseID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req model.CreateMaterialRequest
	if isMultipart(r) {
		parsed, err := h.materialFromMultipart(w, r, courseID)
		if err != nil {
			WriteAppError(w, err)
			return
		}
		req = parsed
	} else {
		if !DecodeJSON(w, r, &req) {
			return
		}
		req.CourseID = courseID
	}

	material, err := h.Courses.CreateMaterial(r.Context(), currentUserID(r.Context()), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, material)
}

// DeleteMaterial removes one of the caller's materials.
func (h *CourseHandlers) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Courses.DeleteMaterial(r.Context(), id, currentUserID(r.Context())); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// materialFromMultipart uploads the file part and builds the create request.
func (h *CourseHandlers) materialFromMultipart(w http.ResponseWriter, r *http.Request, courseID int64) (model.CreateMaterialRequest, error) {
	req := model.CreateMaterialRequest{CourseID: courseID, Type: model.MaterialTypeFile}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return req, apperrors.Validationf("parsing upload: %v", err)
	}
	req.Name = r.FormValue("name")

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, apperrors.Validation(errMissingFile.Error())
	}
	defer func() { _ = file.Close() }()

	url, err := h.uploadFile(r, file, header, fmt.Sprintf("courses/%d", courseID))
	if err != nil {
		return req, err
	}
	if req.Name == "" {
		req.Name = header.Filename
	}
	req.FileURL = &url
	return req, nil
}

func (h *CourseHandlers) uploadFile(r *http.Request, file multipart.File, header *multipart.FileHeader, prefix string) (string, error) {
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	objectPath := fmt.Sprintf("%s/%d-%s", prefix, time.Now().UnixNano(), path.Base(header.Filename))
	url, err := h.Files.Upload(r.Context(), objectPath, contentType, file, header.Size)
	if err != nil {
		return "", fmt.Errorf("storing upload: %w", err)
	}
	return url, nil
}

func isMultipart(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return len(ct) >= 19 && ct[:19] == "multipart/form-data"
}

// pathID parses the {name} path segment as an integer id; on failure a 400 is
// written and false returned.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_id",
			Err: fmt.Errorf("invalid %s", name)})
		return 0, false
	}
	return id, true
}

