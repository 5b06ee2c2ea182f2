package document

import (
	"fmt"
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
	usecase   DocumentUsecase
	cfg       config.FileUploadConfig
	validator *validator.Validator
}

func NewHandler(
	usecase DocumentUsecase,
	cfg config.FileUploadConfig,
	validator *validator.Validator,
) *Handler {
	return &Handler{
		usecase:   usecase,
		cfg:       cfg,
		validator: validator,
	}
}

// AnalyzeDocuments handles POST /documents/analyze
func (h *Handler) AnalyzeDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "AnalyzeDocuments")
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)

	if err := r.ParseMultipartForm(h.cfg.MaxUploadSize); err != nil {
		response.Error(ctx, w, http.StatusBadRequest, "invalid form data or size too large", err)
		return
	}

	opts, err := form.ProcessingOptions(r)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}
	if err := h.validator.ValidateProcessingOptions(opts); err != nil {
		response.FromError(ctx, w, err)
		return
	}
	if opts.Mode == "" {
		opts.Mode = entity.ModeStandard
	}

	files := form.Files(r)
	paths := form.List(r.Form["document_paths"])
	if len(files) == 0 && len(paths) == 0 {
		response.FromError(ctx, w, fmt.Errorf("%w: files or document_paths", entity.ErrMissingField))
		return
	}
	if len(files) > 0 {
		if err := h.validator.ValidateUpload(files); err != nil {
			response.FromError(ctx, w, err)
			return
		}
	}
	for _, p := range paths {
		if err := h.validator.ValidateDocumentPath(p); err != nil {
			response.FromError(ctx, w, err)
			return
		}
	}

	sources, err := form.Documents(files, paths)
	if err != nil {
		response.FromError(ctx, w, err)
		return
	}

	model := r.FormValue("model")
	ctxzap.Info(ctx, "analyzing documents",
		zap.Int("document_count", len(sources)),
		zap.String("mode", string(opts.Mode)),
	)

	analyses := h.usecase.AnalyzeAll(ctx, sources, opts, model)
	_, insights := h.usecase.Materialize(ctx, analyses, opts, model)

	response.Success(w, &entity.AnalyzeDocumentsResponse{
		Documents: analyses,
		Insights:  insights,
	})
}
