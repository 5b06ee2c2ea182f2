package schedule

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/futig/schedule-backend/internal/api/form"
	"github.com/futig/schedule-backend/internal/config"
	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/pkg/logger"
	"github.com/futig/schedule-backend/internal/pkg/response"
	"github.com/futig/schedule-backend/internal/pkg/validator"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase   ScheduleUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(
	usecase ScheduleUsecase,
	cfg config.FileUploadConfig,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: validator,
	}
}

// CreateSchedule handles POST /schedules. It accepts a JSON body or a
// multipart form carrying uploaded documents.
func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "CreateSchedule")
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)

	var (
		req *entity.ScheduleRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = h.parseMultipart(r)
	} else {
		req, err = h.parseJSON(r)
	}
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "generating schedule",
		zap.String("task", string(req.Task)),
		zap.String("mode", string(req.Options.Mode)),
		zap.Int("document_count", len(req.Documents)),
	)

	result, err := h.usecase.Generate(ctx, req)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	ctxzap.Info(ctx, "schedule generated",
		zap.String("request_id", result.RequestID),
		zap.String("outcome", string(result.Outcome)),
		zap.Int("activity_count", len(result.Activities)),
	)
	response.Success(w, result)
}

func (h *Handler) parseJSON(r *http.Request) (*entity.ScheduleRequest, error) {
	var body scheduleRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode request body: %v", entity.ErrInvalidFormat, err)
	}
	return toScheduleRequest(&body)
}

func (h *Handler) parseMultipart(r *http.Request) (*entity.ScheduleRequest, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		return nil, fmt.Errorf("%w: invalid form data or size too large: %v", entity.ErrInvalidFormat, err)
	}

	start, err := form.Date("start_date", r.FormValue("start_date"))
	if err != nil {
		return nil, err
	}

	opts, err := form.ProcessingOptions(r)
	if err != nil {
		return nil, err
	}

	prior, err := parsePriorActivities(r.FormValue("prior_activities"))
	if err != nil {
		return nil, err
	}

	files := form.Files(r)
	if len(files) > 0 {
		if err := h.validator.ValidateUpload(files); err != nil {
			return nil, err
		}
	}

	docs, err := form.Documents(files, form.List(r.Form["document_paths"]))
	if err != nil {
		return nil, err
	}

	return &entity.ScheduleRequest{
		Task:            entity.TaskType(r.FormValue("task")),
		Request:         r.FormValue("request"),
		PriorActivities: prior,
		StartDate:       start,
		Options:         opts,
		Model:           r.FormValue("model"),
		Documents:       docs,
	}, nil
}
