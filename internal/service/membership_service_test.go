package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/membership-api/internal/domain/entity"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// ============================================================================
// Моки для MembershipService
// ============================================================================

// MockProfileRepoForMembership реализует repository.ProfileRepository
type MockProfileRepoForMembership struct {
	mock.Mock
}

func (m *MockProfileRepoForMembership) GetByUserID(userID uint) (*entity.Profile, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Profile), args.Error(1)
}

func (m *MockProfileRepoForMembership) GetApprovedUserIDs() ([]uint, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockProfileRepoForMembership) CountPendingApproval() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProfileRepoForMembership) SetReminderSentAt(tx *gorm.DB, userID uint, sentAt time.Time) error {
	args := m.Called(tx, userID, sentAt)
	return args.Error(0)
}

// MockRoleRepoForMembership реализует repository.RoleAssignmentRepository
type MockRoleRepoForMembership struct {
	mock.Mock
}

func (m *MockRoleRepoForMembership) HasActiveRole(userID uint, now time.Time) (bool, error) {
	args := m.Called(userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleRepoForMembership) GetActiveUserIDs(now time.Time) ([]uint, error) {
	args := m.Called(now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockRoleRepoForMembership) GetActiveUserIDsByRole(roleName string, now time.Time) ([]uint, error) {
	args := m.Called(roleName, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockConsentRepoForMembership реализует repository.ConsentRecordRepository
type MockConsentRepoForMembership struct {
	mock.Mock
}

func (m *MockConsentRepoForMembership) Create(tx *gorm.DB, record *entity.ConsentRecord) error {
	args := m.Called(tx, record)
	return args.Error(0)
}

func (m *MockConsentRepoForMembership) GetConsentedVersionIDs(userID uint) (map[uint]struct{}, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]struct{}), args.Error(1)
}

func (m *MockConsentRepoForMembership) GetConsentMapForUsers(userIDs []uint) (map[uint]map[uint]struct{}, error) {
	args := m.Called(userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]map[uint]struct{}), args.Error(1)
}

// MockDocRepoForMembership реализует repository.LegalDocumentRepository
type MockDocRepoForMembership struct {
	mock.Mock
}

func (m *MockDocRepoForMembership) GetRequiredCurrentVersions(teamID uint, now time.Time) ([]entity.DocumentVersion, error) {
	args := m.Called(teamID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.DocumentVersion), args.Error(1)
}

// ============================================================================
// Вспомогательные функции
// ============================================================================

const testVolunteersTeamID = uint(7)

func createTestMembershipService(
	profileRepo *MockProfileRepoForMembership,
	roleRepo *MockRoleRepoForMembership,
	consentRepo *MockConsentRepoForMembership,
	docRepo *MockDocRepoForMembership,
) *MembershipService {
	return NewMembershipService(profileRepo, roleRepo, consentRepo, docRepo, testVolunteersTeamID)
}

// requiredVersion строит обязательную версию документа с заданным грейс-периодом
func requiredVersion(versionID uint, effectiveFrom time.Time, gracePeriodDays int) entity.DocumentVersion {
	return entity.DocumentVersion{
		ID:              versionID,
		LegalDocumentID: 1,
		LegalDocument: entity.LegalDocument{
			ID:              1,
			Title:           "Privacy Policy",
			IsRequired:      true,
			IsActive:        true,
			GracePeriodDays: gracePeriodDays,
		},
		EffectiveFrom: effectiveFrom,
	}
}

// ============================================================================
// Тесты для ComputeStatus
// ============================================================================

func TestMembershipService_ComputeStatus_NoProfile(t *testing.T) {
	// Arrange: профиля нет вообще
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockProfileRepo.On("GetByUserID", uint(42)).Return(nil, apperrors.ErrNotFound)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	// Act
	status, err := svc.ComputeStatus(42, now)

	// Assert
	require.NoError(t, err, "Отсутствие профиля не должно быть ошибкой")
	assert.Equal(t, entity.MembershipStatusNone, status)
	mockProfileRepo.AssertExpectations(t)
	// Дальше профиля проверка не идет
	mockRoleRepo.AssertNotCalled(t, "HasActiveRole", mock.Anything, mock.Anything)
}

func TestMembershipService_ComputeStatus_Suspended(t *testing.T) {
	// Блокировка побеждает все остальные правила
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{
		UserID:      42,
		IsApproved:  true,
		IsSuspended: true,
	}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusSuspended, status)
	mockRoleRepo.AssertNotCalled(t, "HasActiveRole", mock.Anything, mock.Anything)
}

func TestMembershipService_ComputeStatus_PendingApproval(t *testing.T) {
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{
		UserID:     42,
		IsApproved: false,
	}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusPending, status)
}

func TestMembershipService_ComputeStatus_NoActiveRole(t *testing.T) {
	// Одобрен, но ни одной действующей роли -> None
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{
		UserID:     42,
		IsApproved: true,
	}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(false, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusNone, status)
	// Согласия не читаются, если роли нет
	mockDocRepo.AssertNotCalled(t, "GetRequiredCurrentVersions", mock.Anything, mock.Anything)
}

func TestMembershipService_ComputeStatus_ExpiredConsent(t *testing.T) {
	// Дедлайн согласия по обязательному документу истек -> Inactive
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Версия вступила в силу месяц назад, грейс-период 14 дней
	effectiveFrom := now.AddDate(0, -1, 0)

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 14)}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{42}).
		Return(map[uint]map[uint]struct{}{42: {}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusInactive, status, "Просроченное согласие должно давать Inactive")
	mockConsentRepo.AssertExpectations(t)
}

func TestMembershipService_ComputeStatus_Active(t *testing.T) {
	// Все правила пройдены: согласие с текущей версией есть
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	effectiveFrom := now.AddDate(0, -1, 0)

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 14)}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{42}).
		Return(map[uint]map[uint]struct{}{42: {10: {}}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusActive, status)
}

func TestMembershipService_ComputeStatus_WithinGracePeriod(t *testing.T) {
	// Версия новая, грейс-период еще не истек: отсутствие согласия не наказывается
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Вступила в силу вчера, грейс-период 14 дней
	effectiveFrom := now.AddDate(0, 0, -1)

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 14)}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusActive, status, "Внутри грейс-периода статус Active")
	// Ни одна версия не просрочена — согласия вообще не читаются
	mockConsentRepo.AssertNotCalled(t, "GetConsentMapForUsers", mock.Anything)
}

func TestMembershipService_ComputeStatus_GracePeriodBoundary(t *testing.T) {
	// Граница: ровно в момент дедлайна согласие уже считается просроченным
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	effectiveFrom := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	now := effectiveFrom.AddDate(0, 0, 14) // ровно дедлайн

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 14)}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{42}).
		Return(map[uint]map[uint]struct{}{42: {}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusInactive, status, "В момент дедлайна статус уже Inactive")
}

func TestMembershipService_ComputeStatus_ZeroGracePeriod(t *testing.T) {
	// Грейс-период 0: дедлайн наступает сразу с EffectiveFrom
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	effectiveFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	now := effectiveFrom.Add(time.Minute)

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), now).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 0)}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{42}).
		Return(map[uint]map[uint]struct{}{42: {}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	status, err := svc.ComputeStatus(42, now)

	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusInactive, status)
}

func TestMembershipService_ComputeStatus_ConsentRestoresAccess(t *testing.T) {
	// Участник правления без согласий при документе с нулевым грейс-периодом:
	// Inactive, а после записи согласия с текущей версией — снова Active
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	t0 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	mockProfileRepo.On("GetByUserID", uint(42)).Return(&entity.Profile{UserID: 42, IsApproved: true}, nil)
	mockRoleRepo.On("HasActiveRole", uint(42), t0).Return(true, nil)
	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, t0).
		Return([]entity.DocumentVersion{requiredVersion(10, t0, 0)}, nil)

	// До согласия
	before := new(MockConsentRepoForMembership)
	before.On("GetConsentMapForUsers", []uint{42}).Return(map[uint]map[uint]struct{}{42: {}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, before, mockDocRepo)
	status, err := svc.ComputeStatus(42, t0)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusInactive, status)

	// После согласия с текущей версией
	after := new(MockConsentRepoForMembership)
	after.On("GetConsentMapForUsers", []uint{42}).Return(map[uint]map[uint]struct{}{42: {10: {}}}, nil)

	svc = createTestMembershipService(mockProfileRepo, mockRoleRepo, after, mockDocRepo)
	status, err = svc.ComputeStatus(42, t0)
	require.NoError(t, err)
	assert.Equal(t, entity.MembershipStatusActive, status, "Согласие восстанавливает доступ")
}

// ============================================================================
// Тесты для пакетных выборок
// ============================================================================

func TestMembershipService_UsersWithAllRequiredConsents_NoRequiredDocs(t *testing.T) {
	// Нет обязательных документов — проходят все, согласия не читаются
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockDocRepo.On("GetRequiredCurrentVersions", uint(5), now).
		Return([]entity.DocumentVersion{}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	result, err := svc.UsersWithAllRequiredConsents([]uint{1, 2, 3}, 5, now)

	require.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Contains(t, result, uint(1))
	assert.Contains(t, result, uint(2))
	assert.Contains(t, result, uint(3))
	mockConsentRepo.AssertNotCalled(t, "GetConsentMapForUsers", mock.Anything)
}

func TestMembershipService_UsersWithAllRequiredConsents_Filtering(t *testing.T) {
	// Два обязательных документа: проходит только пользователь с обоими согласиями
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	effectiveFrom := now.AddDate(0, -2, 0)

	mockDocRepo.On("GetRequiredCurrentVersions", uint(5), now).Return([]entity.DocumentVersion{
		requiredVersion(10, effectiveFrom, 14),
		requiredVersion(20, effectiveFrom, 14),
	}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{1, 2, 3}).Return(map[uint]map[uint]struct{}{
		1: {10: {}, 20: {}},
		2: {10: {}},
		3: {},
	}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	result, err := svc.UsersWithAllRequiredConsents([]uint{1, 2, 3}, 5, now)

	require.NoError(t, err)
	assert.Len(t, result, 1, "Только пользователь 1 согласился с обеими версиями")
	assert.Contains(t, result, uint(1))
}

func TestMembershipService_UsersWithAllRequiredConsents_EmptyInput(t *testing.T) {
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	result, err := svc.UsersWithAllRequiredConsents(nil, 5, time.Now())

	require.NoError(t, err)
	assert.Empty(t, result)
	mockDocRepo.AssertNotCalled(t, "GetRequiredCurrentVersions", mock.Anything, mock.Anything)
}

func TestMembershipService_UsersWithAnyExpiredConsent_AllWithinGrace(t *testing.T) {
	// Все версии внутри грейс-периода: никто не просрочен, согласия не читаются
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	effectiveFrom := now.AddDate(0, 0, -1)

	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 30)}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	result, err := svc.UsersWithAnyExpiredConsent([]uint{1, 2}, now)

	require.NoError(t, err)
	assert.Empty(t, result)
	mockConsentRepo.AssertNotCalled(t, "GetConsentMapForUsers", mock.Anything)
}

func TestMembershipService_UsersWithAnyExpiredConsent_Mixed(t *testing.T) {
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	effectiveFrom := now.AddDate(0, -2, 0)

	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).
		Return([]entity.DocumentVersion{requiredVersion(10, effectiveFrom, 14)}, nil)
	mockConsentRepo.On("GetConsentMapForUsers", []uint{1, 2}).Return(map[uint]map[uint]struct{}{
		1: {10: {}},
		2: {},
	}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	result, err := svc.UsersWithAnyExpiredConsent([]uint{1, 2}, now)

	require.NoError(t, err)
	assert.Len(t, result, 1, "Просрочен только пользователь 2")
	assert.Contains(t, result, uint(2))
}

func TestMembershipService_GetMissingConsentVersions(t *testing.T) {
	mockProfileRepo := new(MockProfileRepoForMembership)
	mockRoleRepo := new(MockRoleRepoForMembership)
	mockConsentRepo := new(MockConsentRepoForMembership)
	mockDocRepo := new(MockDocRepoForMembership)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	effectiveFrom := now.AddDate(0, -1, 0)

	mockDocRepo.On("GetRequiredCurrentVersions", testVolunteersTeamID, now).Return([]entity.DocumentVersion{
		requiredVersion(10, effectiveFrom, 14),
		requiredVersion(20, effectiveFrom, 14),
	}, nil)
	mockConsentRepo.On("GetConsentedVersionIDs", uint(42)).Return(map[uint]struct{}{10: {}}, nil)

	svc := createTestMembershipService(mockProfileRepo, mockRoleRepo, mockConsentRepo, mockDocRepo)

	missing, err := svc.GetMissingConsentVersions(42, now)

	require.NoError(t, err)
	assert.Equal(t, []uint{20}, missing)
}
