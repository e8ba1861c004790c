package document

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"bharatprint/controller"
	"bharatprint/dto"
	"bharatprint/middleware"
	"bharatprint/model"
	"bharatprint/services"
	"bharatprint/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func DocumentController(router *gin.RouterGroup, db *gorm.DB, svc *services.Services) {
	routes := router.Group("/documents")
	{
		authed := routes.Group("", middleware.AccessTokenMiddleware(db, svc.Config.JWT.Secret))
		authed.POST("/upload", func(c *gin.Context) {
			Upload(c, db, svc)
		})
		authed.GET("/list", func(c *gin.Context) {
			ListDocuments(c, db, svc)
		})
		authed.GET("/:id", func(c *gin.Context) {
			GetDocument(c, db, svc)
		})
		authed.GET("/:id/file", func(c *gin.Context) {
			GetDocumentFile(c, db, svc)
		})
		authed.DELETE("/:id", func(c *gin.Context) {
			DeleteDocument(c, db, svc)
		})

		routes.GET("/public/:shareLink", func(c *gin.Context) {
			PublicDocument(c, db, svc)
		})
		routes.GET("/download/:shareLink", func(c *gin.Context) {
			DownloadDocument(c, db, svc)
		})
		routes.POST("/customer-upload/:merchantCode", func(c *gin.Context) {
			CustomerUpload(c, db, svc)
		})
	}
	router.GET("/merchants/:merchantCode", func(c *gin.Context) {
		MerchantInfo(c, db, svc)
	})
}

// describe renders a document for its owner. The QR code is only drawn when
// withQR is set.
func describe(svc *services.Services, doc *model.Document, withQR bool) (dto.DocumentResponse, error) {
	resp := dto.NewDocumentResponse(doc, services.SecondsLeft(doc, svc.Now()))
	if doc.SharedLink == nil {
		return resp, nil
	}
	resp.SharedLink = svc.ViewURL(*doc.SharedLink)
	if withQR {
		qr, err := services.QRCodeDataURI(resp.SharedLink)
		if err != nil {
			return resp, err
		}
		resp.QRCode = qr
	}
	return resp, nil
}

func ListDocuments(c *gin.Context, db *gorm.DB, svc *services.Services) {
	user := middleware.CurrentUser(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil {
		controller.Fail(c, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		controller.Fail(c, http.StatusBadRequest, "Invalid offset")
		return
	}
	if limit < 1 {
		limit = 1
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	scope := db.Model(&model.Document{}).Where("user_id = ? AND status = ?", user.ID, model.DocumentActive)
	var total int64
	if err := scope.Count(&total).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to list documents", err)
		return
	}
	var docs []model.Document
	if err := db.Where("user_id = ? AND status = ?", user.ID, model.DocumentActive).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&docs).Error; err != nil {
		controller.Internal(c, svc.Logger, "Failed to list documents", err)
		return
	}

	out := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp, _ := describe(svc, &docs[i], false)
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"documents": out,
		"total":     total,
		"hasMore":   int64(offset+len(docs)) < total,
	})
}

// ownedDocument loads :id for the current user or writes a 404.
func ownedDocument(c *gin.Context, db *gorm.DB, svc *services.Services) (*model.Document, bool) {
	user := middleware.CurrentUser(c)
	doc, err := services.GetOwnedDocument(db, c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.Fail(c, http.StatusNotFound, "Document not found")
			return nil, false
		}
		controller.Internal(c, svc.Logger, "Failed to load document", err)
		return nil, false
	}
	return doc, true
}

func GetDocument(c *gin.Context, db *gorm.DB, svc *services.Services) {
	doc, ok := ownedDocument(c, db, svc)
	if !ok {
		return
	}
	resp, err := describe(svc, doc, true)
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to render QR code", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "document": resp})
}

// GetDocumentFile lets a merchant fetch one of their documents, honouring
// the customer's choice for portal uploads.
func GetDocumentFile(c *gin.Context, db *gorm.DB, svc *services.Services) {
	doc, ok := ownedDocument(c, db, svc)
	if !ok {
		return
	}
	if doc.Expired(svc.Now()) {
		controller.Fail(c, http.StatusGone, "Document has expired")
		return
	}
	if doc.CustomerUploaded && !doc.AllowDownload {
		controller.Fail(c, http.StatusForbidden, "Customer did not allow downloading this file")
		return
	}
	data, err := svc.Blobs.Get(c.Request.Context(), doc.FileStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			controller.Fail(c, http.StatusNotFound, "File not found")
			return
		}
		controller.Internal(c, svc.Logger, "Failed to read file", err)
		return
	}
	attach(c, doc, data)
}

func DeleteDocument(c *gin.Context, db *gorm.DB, svc *services.Services) {
	doc, ok := ownedDocument(c, db, svc)
	if !ok {
		return
	}
	if doc.Status == model.DocumentDeleted {
		controller.Fail(c, http.StatusNotFound, "Document not found")
		return
	}
	if err := svc.DeleteDocument(c.Request.Context(), db, doc); err != nil {
		controller.Internal(c, svc.Logger, "Failed to delete document", err)
		return
	}
	svc.Logger.Info("Document deleted", zap.String("document_id", doc.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document deleted"})
}

func attach(c *gin.Context, doc *model.Document, data []byte) {
	contentType := doc.DocumentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.DocumentName}))
	c.Data(http.StatusOK, contentType, data)
}
