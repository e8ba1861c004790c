package document

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/middleware"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var errMissingFile = errors.New("missing file")

// readUpload reads the multipart file field, refusing anything larger than
// services.MaxUploadBytes.
func readUpload(c *gin.Context, field string) (*multipart.FileHeader, []byte, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, errMissingFile
	}
	if header.Size > services.MaxUploadBytes {
		return nil, nil, services.ErrFileTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, services.MaxUploadBytes+1))
	if err != nil {
		return nil, nil, err
	}
	if len(data) > services.MaxUploadBytes {
		return nil, nil, services.ErrFileTooLarge
	}
	return header, data, nil
}

func contentTypeOf(h *multipart.FileHeader) string {
	if ct := h.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func formBool(c *gin.Context, key string, fallback bool) bool {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func Upload(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)

	header, data, err := readUpload(c, "file")
	if err != nil {
		switch {
		case errors.Is(err, errMissingFile):
			controller.Fail(c, http.StatusBadRequest, "File is required")
		case errors.Is(err, services.ErrFileTooLarge):
			controller.Fail(c, http.StatusBadRequest, err.Error())
		default:
			controller.Internal(c, svc.Logger, "Failed to read upload", err)
		}
		return
	}

	customerName := strings.TrimSpace(c.PostForm("customerName"))
	if customerName == "" {
		controller.Fail(c, http.StatusBadRequest, "Customer name is required")
		return
	}
	minutes := services.DefaultDeleteMinutes
	if v := strings.TrimSpace(c.PostForm("deleteAfterMinutes")); v != "" {
		if minutes, err = strconv.Atoi(v); err != nil || minutes <= 0 {
			controller.Fail(c, http.StatusBadRequest, "Invalid deleteAfterMinutes")
			return
		}
	}

	doc, err := svc.CreateDocument(c.Request.Context(), db, user, services.NewDocument{
		FileName:      header.Filename,
		ContentType:   contentTypeOf(header),
		Data:          data,
		CustomerName:  customerName,
		CustomerPhone: strings.TrimSpace(c.PostForm("customerPhone")),
		CustomerEmail: strings.TrimSpace(c.PostForm("customerEmail")),
		OrderDetails:  strings.TrimSpace(c.PostForm("orderDetails")),
		DueDate:       strings.TrimSpace(c.PostForm("dueDate")),
		OneTimeView:   formBool(c, "oneTimeView", false),
		DeleteAfter:   minutes,
		AllowDownload: formBool(c, "allowDownload", true),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrLimitReached),
			errors.Is(err, services.ErrFileTooLarge),
			errors.Is(err, services.ErrTimerNotAllowed):
			controller.Fail(c, http.StatusBadRequest, err.Error())
		default:
			controller.Internal(c, svc.Logger, "Failed to upload document", err)
		}
		return
	}

	resp, err := describe(svc, doc, true)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to render QR code", err)
		return
	}
	c.JSON(http.StatusOK, dto.UploadResponse{
		Success:  true,
		Message:  "Document uploaded successfully",
		Document: resp,
	})
}
