package services

import (
	"bharatprint/model"

	"gorm.io/gorm"
)

func GetUserByID(db *gorm.DB, userID string) (*model.User, error) {
	var user model.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByPhone(db *gorm.DB, phone string) (*model.User, error) {
	var user model.User
	if err := db.Where("phone_number = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByMerchantCode resolves the code printed on a shop's upload QR.
func GetUserByMerchantCode(db *gorm.DB, code string) (*model.User, error) {
	var user model.User
	if err := db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOwnedDocument returns the document only when it belongs to userID.
func GetOwnedDocument(db *gorm.DB, docID, userID string) (*model.Document, error) {
	var doc model.Document
	if err := db.Where("id = ? AND user_id = ?", docID, userID).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func GetDocumentByShareLink(db *gorm.DB, shareLink string) (*model.Document, error) {
	var doc model.Document
	if err := db.Where("shared_link = ?", shareLink).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}
