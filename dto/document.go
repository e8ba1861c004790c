package dto

import (
	"time"

	"bharatprint/model"
)

type DocumentResponse struct {
	ID               string    `json:"id"`
	DocumentName     string    `json:"documentName"`
	DocumentType     string    `json:"documentType"`
	FileSizeBytes    int64     `json:"fileSizeBytes"`
	CustomerName     string    `json:"customerName"`
	CustomerPhone    *string   `json:"customerPhone"`
	CustomerEmail    *string   `json:"customerEmail"`
	OrderDetails     *string   `json:"orderDetails"`
	DueDate          *string   `json:"dueDate"`
	SharedLink       string    `json:"sharedLink,omitempty"`
	QRCode           string    `json:"qrCode,omitempty"`
	ShareCount       int       `json:"shareCount"`
	OneTimeView      bool      `json:"oneTimeView"`
	AllowDownload    bool      `json:"allowDownload"`
	CustomerUploaded bool      `json:"customerUploaded"`
	Status           string    `json:"status"`
	ExpiresIn        int       `json:"expiresIn"`
	AutoDeleteAt     time.Time `json:"autoDeleteAt"`
	CreatedAt        time.Time `json:"createdAt"`
}

// NewDocumentResponse fills everything but the share URL and QR code.
func NewDocumentResponse(d *model.Document, expiresIn int) DocumentResponse {
	return DocumentResponse{
		ID:               d.ID,
		DocumentName:     d.DocumentName,
		DocumentType:     d.DocumentType,
		FileSizeBytes:    d.FileSizeBytes,
		CustomerName:     d.CustomerName,
		CustomerPhone:    d.CustomerPhone,
		CustomerEmail:    d.CustomerEmail,
		OrderDetails:     d.OrderDetails,
		DueDate:          d.DueDate,
		ShareCount:       d.ShareViewCount,
		OneTimeView:      d.OneTimeView,
		AllowDownload:    d.AllowDownload,
		CustomerUploaded: d.CustomerUploaded,
		Status:           d.Status,
		ExpiresIn:        expiresIn,
		AutoDeleteAt:     d.AutoDeleteAt,
		CreatedAt:        d.CreatedAt,
	}
}

// PublicDocument is what an unauthenticated viewer of a share link sees.
type PublicDocument struct {
	ID            string  `json:"id"`
	CustomerName  string  `json:"customerName"`
	OrderDetails  *string `json:"orderDetails"`
	DownloadURL   string  `json:"downloadUrl"`
	Expires       int     `json:"expires"`
	OneTimeView   bool    `json:"oneTimeView"`
	FileName      string  `json:"fileName"`
	FileType      string  `json:"fileType"`
	AllowDownload bool    `json:"allowDownload"`
}

type PublicDocumentResponse struct {
	Success  bool           `json:"success"`
	Document PublicDocument `json:"document"`
}

type UploadResponse struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message"`
	Document DocumentResponse `json:"document"`
}
