package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
)

// ============================================================================
// Тесты для ConsentService
// ============================================================================

func TestConsentService_RecordConsent_Success(t *testing.T) {
	db, sqlMock := newMockGormDB(t)

	mockConsentRepo := new(MockConsentRepoForMembership)
	mockAuditRepo := new(MockAuditRepoForTeamSync)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	sqlMock.ExpectBegin()
	mockConsentRepo.On("Create", mock.Anything, mock.MatchedBy(func(record *entity.ConsentRecord) bool {
		return record.UserID == 42 && record.DocumentVersionID == 10 &&
			record.ExplicitConsent && record.ConsentedAt.Equal(now) &&
			record.IPAddress == "192.0.2.7" && record.ContentHash == "abc123"
	})).Return(nil)
	mockAuditRepo.On("Create", mock.Anything, mock.MatchedBy(func(entry *entity.AuditLogEntry) bool {
		return entry.Action == entity.AuditConsentRecorded &&
			entry.EntityType == "User" && entry.EntityID == 42 &&
			entry.ActorName == "Anna"
	})).Return(nil)
	sqlMock.ExpectCommit()

	// После коммита кешированный снапшот пользователя сбрасывается
	mockSnapshots := new(MockSnapshotInvalidatorForTeamSync)
	mockSnapshots.On("Invalidate", uint(42)).Return(nil)

	svc := NewConsentService(db, mockConsentRepo, NewAuditService(mockAuditRepo), mockSnapshots)

	err := svc.RecordConsent(42, 10, "192.0.2.7", "Mozilla/5.0", "abc123", "Anna", now)

	require.NoError(t, err)
	mockConsentRepo.AssertExpectations(t)
	mockAuditRepo.AssertExpectations(t)
	mockSnapshots.AssertExpectations(t)
	require.NoError(t, sqlMock.ExpectationsWereMet(), "Согласие и аудит коммитятся одной транзакцией")
}

func TestConsentService_RecordConsent_Duplicate(t *testing.T) {
	// Повторное согласие с той же версией: ErrConflict, транзакция откатывается
	db, sqlMock := newMockGormDB(t)

	mockConsentRepo := new(MockConsentRepoForMembership)
	mockAuditRepo := new(MockAuditRepoForTeamSync)

	sqlMock.ExpectBegin()
	mockConsentRepo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrConflict)
	sqlMock.ExpectRollback()

	mockSnapshots := new(MockSnapshotInvalidatorForTeamSync)

	svc := NewConsentService(db, mockConsentRepo, NewAuditService(mockAuditRepo), mockSnapshots)

	err := svc.RecordConsent(42, 10, "", "", "", "Anna", time.Now())

	require.ErrorIs(t, err, apperrors.ErrConflict)
	mockAuditRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	// Откат не трогает кеш: снапшот не устарел
	mockSnapshots.AssertNotCalled(t, "Invalidate", mock.Anything)
	require.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestConsentService_RecordConsent_Validation(t *testing.T) {
	db, _ := newMockGormDB(t)

	mockConsentRepo := new(MockConsentRepoForMembership)

	svc := NewConsentService(db, mockConsentRepo, nil, nil)

	err := svc.RecordConsent(0, 10, "", "", "", "Anna", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	err = svc.RecordConsent(42, 0, "", "", "", "Anna", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	mockConsentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
