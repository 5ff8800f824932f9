package service

import (
	"fmt"
	"log"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// ConsentService записывает согласия пользователей с версиями документов.
// Запись согласия и запись аудита коммитятся одной транзакцией.
type ConsentService struct {
	db          *gorm.DB
	consentRepo repository.ConsentRecordRepository
	audit       *AuditService
	snapshots   SnapshotInvalidator
}

// NewConsentService создает новый сервис согласий
func NewConsentService(
	db *gorm.DB,
	consentRepo repository.ConsentRecordRepository,
	audit *AuditService,
	snapshots SnapshotInvalidator,
) *ConsentService {
	return &ConsentService{
		db:          db,
		consentRepo: consentRepo,
		audit:       audit,
		snapshots:   snapshots,
	}
}

// RecordConsent фиксирует явное согласие пользователя с версией документа.
// Только явное согласие валидно; повторное согласие с той же версией -> ErrConflict.
func (s *ConsentService) RecordConsent(
	userID, documentVersionID uint,
	ipAddress, userAgent, contentHash string,
	actorDisplayName string,
	now time.Time,
) error {
	if userID == 0 || documentVersionID == 0 {
		return fmt.Errorf("%w: userID and documentVersionID are required", apperrors.ErrValidation)
	}

	record := &entity.ConsentRecord{
		UserID:            userID,
		DocumentVersionID: documentVersionID,
		ConsentedAt:       now,
		ExplicitConsent:   true,
		IPAddress:         ipAddress,
		UserAgent:         userAgent,
		ContentHash:       contentHash,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.consentRepo.Create(tx, record); err != nil {
			return err
		}

		versionIDCopy := documentVersionID
		relatedType := "DocumentVersion"
		desc := fmt.Sprintf("%s consented to document version %d", actorDisplayName, documentVersionID)
		return s.audit.Log(tx, entity.AuditConsentRecorded, "User", userID, desc,
			actorDisplayName, now, &versionIDCopy, &relatedType)
	})
	if err != nil {
		return err
	}

	// Новое согласие может изменить статус — кешированный снапшот устарел
	if s.snapshots != nil {
		if invErr := s.snapshots.Invalidate(userID); invErr != nil {
			log.Printf("[ConsentService] Ошибка сброса снапшота пользователя %d: %v", userID, invErr)
		}
	}

	return nil
}
