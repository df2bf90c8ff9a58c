package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/matching"
)

// MaxReportPhotos - сколько фотографий принимается в одном объявлении.
const MaxReportPhotos = 5

type ReportHandler struct {
	submitUC       *matching.SubmitReportUseCase
	listMyUC       *matching.ListMyReportsUseCase
	getUC          *matching.GetReportUseCase
	updateStatusUC *matching.UpdateReportStatusUseCase
	maxPhotoBytes  int64
}

func NewReportHandler(
	submitUC *matching.SubmitReportUseCase,
	listMyUC *matching.ListMyReportsUseCase,
	getUC *matching.GetReportUseCase,
	updateStatusUC *matching.UpdateReportStatusUseCase,
	maxPhotoMB int64,
) *ReportHandler {
	if maxPhotoMB <= 0 {
		maxPhotoMB = 10
	}
	return &ReportHandler{
		submitUC:       submitUC,
		listMyUC:       listMyUC,
		getUC:          getUC,
		updateStatusUC: updateStatusUC,
		maxPhotoBytes:  maxPhotoMB * megabyte,
	}
}

// Submit обрабатывает POST /reports (multipart: поля объявления + photos).
func (h *ReportHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxPhotoBytes*MaxReportPhotos+megabyte)

	var form dto.SubmitReportForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(c, "слишком большой запрос")
			return
		}
		response.BadRequest(c, "некорректные данные объявления")
		return
	}

	multipartForm, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "ожидается multipart/form-data")
		return
	}

	files := multipartForm.File["photos"]
	if len(files) == 0 {
		files = multipartForm.File["photos[]"]
	}
	if len(files) > MaxReportPhotos {
		response.BadRequest(c, "слишком много фотографий")
		return
	}

	photos := make([]matching.Photo, 0, len(files))
	for _, fh := range files {
		img, err := readImage(fh, h.maxPhotoBytes)
		if err != nil {
			response.Error(c, err)
			return
		}
		photos = append(photos, matching.Photo{
			Data:        img.data,
			ContentType: img.info.MIME,
			Extension:   img.info.Extension,
		})
	}

	result, err := h.submitUC.Execute(c.Request.Context(), userID, matching.SubmitInput{
		Report: form.ToInput(),
		Photos: photos,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToSubmitReportResponse(result))
}

func (h *ReportHandler) ListMy(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	reports, err := h.listMyUC.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReportListResponse(reports))
}

func (h *ReportHandler) Get(c *gin.Context) {
	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID объявления")
		return
	}

	report, err := h.getUC.Execute(c.Request.Context(), reportID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(report))
}

// UpdateStatus обрабатывает PATCH /reports/:id/status.
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		response.Unauthorized(c, "требуется авторизация")
		return
	}

	reportID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "некорректный ID объявления")
		return
	}

	var req dto.UpdateReportStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "статус обязателен")
		return
	}

	report, err := h.updateStatusUC.Execute(c.Request.Context(), userID, reportID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToReportResponse(report))
}
