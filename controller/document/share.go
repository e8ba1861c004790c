package document

import (
	"errors"
	"net/http"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/services"
	"bharatprint/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// shareFailure maps a share-link error to its response.
func shareFailure(c *gin.Context, svc *services.Services, err error) {
	switch {
	case errors.Is(err, services.ErrDocumentNotFound):
		controller.Fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrDocumentExpired), errors.Is(err, services.ErrOneTimeConsumed):
		controller.Fail(c, http.StatusGone, err.Error())
	case errors.Is(err, services.ErrDownloadForbidden):
		controller.Fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		controller.Fail(c, http.StatusNotFound, "File not found")
	default:
		controller.Internal(c, svc.Logger, "Failed to open shared document", err)
	}
}

// PublicDocument is the customer-facing viewer. Each call counts as a view.
func PublicDocument(c *gin.Context, db *gorm.DB, svc *services.Services) {
	link := c.Param("shareLink")
	doc, err := svc.RevealSharedDocument(db, link)
	if err != nil {
		shareFailure(c, svc, err)
		return
	}

	svc.Logger.Info("Shared document viewed",
		zap.String("document_id", doc.ID),
		zap.Int("views", doc.ShareViewCount))
	c.JSON(http.StatusOK, dto.PublicDocumentResponse{
		Success: true,
		Document: dto.PublicDocument{
			ID:            doc.ID,
			CustomerName:  doc.CustomerName,
			OrderDetails:  doc.OrderDetails,
			DownloadURL:   "/api/documents/download/" + link,
			Expires:       services.SecondsLeft(doc, svc.Now()),
			OneTimeView:   doc.OneTimeView,
			FileName:      doc.DocumentName,
			FileType:      doc.DocumentType,
			AllowDownload: doc.AllowDownload,
		},
	})
}

func DownloadDocument(c *gin.Context, db *gorm.DB, svc *services.Services) {
	doc, data, err := svc.SharedDownload(c.Request.Context(), db, c.Param("shareLink"))
	if err != nil {
		shareFailure(c, svc, err)
		return
	}
	attach(c, doc, data)
}
