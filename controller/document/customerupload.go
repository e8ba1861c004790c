package document

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bharatprint/controller"
	"bharatprint/model"
	"bharatprint/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	customerUploadAction = "customer_upload"
	defaultShopName      = "Print Shop"
)

func shopName(m *model.User) string {
	if m.ShopName != "" {
		return m.ShopName
	}
	return defaultShopName
}

func merchantByCode(c *gin.Context, db *gorm.DB, svc *services.Services) (*model.User, bool) {
	user, err := services.GetUserByMerchantCode(db, c.Param("merchantCode"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			controller.Fail(c, http.StatusNotFound, "Merchant not found")
			return nil, false
		}
		controller.Internal(c, svc.Logger, "Failed to find merchant", err)
		return nil, false
	}
	return user, true
}

// MerchantInfo backs the public upload portal header.
func MerchantInfo(c *gin.Context, db *gorm.DB, svc *services.Services) {
	m, ok := merchantByCode(c, db, svc)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"shopName": shopName(m),
		"city":     m.City,
	})
}

func CustomerUpload(c *gin.Context, db *gorm.DB, svc *services.Services) {
	m, ok := merchantByCode(c, db, svc)
	if !ok {
		return
	}

	if svc.Captcha != nil {
		token := c.PostForm("recaptchaToken")
		if _, err := svc.Captcha.Verify(c.Request.Context(), token, customerUploadAction); err != nil {
			svc.Logger.Warn("customer upload failed captcha", zap.String("merchant_id", m.ID), zap.Error(err))
			controller.Fail(c, http.StatusBadRequest, "reCAPTCHA verification failed")
			return
		}
	}

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

	minutes := services.DefaultDeleteMinutes
	if v := strings.TrimSpace(c.PostForm("self_destruct_minutes")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > services.MaxSelfDestructMinutes {
			controller.Fail(c, http.StatusBadRequest, "Invalid self_destruct_minutes")
			return
		}
		minutes = n
	}

	doc, err := svc.CreateCustomerUpload(c.Request.Context(), db, m, services.CustomerUpload{
		FileName:      header.Filename,
		ContentType:   contentTypeOf(header),
		Data:          data,
		SelfDestruct:  minutes,
		AllowDownload: formBool(c, "allow_merchant_download", false),
	})
	if err != nil {
		controller.Internal(c, svc.Logger, "Failed to upload document", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Document uploaded successfully",
		"documentId":     doc.ID,
		"selfDestructIn": minutes,
		"merchantShop":   shopName(m),
	})
}
