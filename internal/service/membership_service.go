package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
)

// MembershipService вычисляет статус членства из профиля, ролей и согласий.
// Статус — чистая функция состояния хранилища и явного now: сервис ничего
// не пишет и не читает системные часы, поэтому тесты могут фиксировать
// произвольные моменты времени.
type MembershipService struct {
	profileRepo repository.ProfileRepository
	roleRepo    repository.RoleAssignmentRepository
	consentRepo repository.ConsentRecordRepository
	docRepo     repository.LegalDocumentRepository

	// globalScopeTeamID — команда, документы которой обязательны для всех.
	// По соглашению это системная команда Volunteers.
	globalScopeTeamID uint
}

// NewMembershipService создает новый сервис статусов членства
func NewMembershipService(
	profileRepo repository.ProfileRepository,
	roleRepo repository.RoleAssignmentRepository,
	consentRepo repository.ConsentRecordRepository,
	docRepo repository.LegalDocumentRepository,
	globalScopeTeamID uint,
) *MembershipService {
	return &MembershipService{
		profileRepo:       profileRepo,
		roleRepo:          roleRepo,
		consentRepo:       consentRepo,
		docRepo:           docRepo,
		globalScopeTeamID: globalScopeTeamID,
	}
}

// ComputeStatus вычисляет статус пользователя на момент now.
// Правила проверяются по порядку, первое совпадение выигрывает:
//  1. нет профиля -> None
//  2. заблокирован -> Suspended
//  3. не одобрен -> Pending
//  4. нет активной роли -> None
//  5. просрочено согласие по обязательному документу -> Inactive
//  6. иначе -> Active
//
// Отсутствие данных не ошибка; наружу уходят только сбои чтения хранилища.
func (s *MembershipService) ComputeStatus(userID uint, now time.Time) (entity.MembershipStatus, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return entity.MembershipStatusNone, nil
		}
		return "", fmt.Errorf("ошибка чтения профиля пользователя %d: %w", userID, err)
	}

	if profile.IsSuspended {
		return entity.MembershipStatusSuspended, nil
	}
	if !profile.IsApproved {
		return entity.MembershipStatusPending, nil
	}

	hasRole, err := s.roleRepo.HasActiveRole(userID, now)
	if err != nil {
		return "", fmt.Errorf("ошибка проверки ролей пользователя %d: %w", userID, err)
	}
	if !hasRole {
		return entity.MembershipStatusNone, nil
	}

	expired, err := s.hasAnyExpiredConsent(userID, now)
	if err != nil {
		return "", err
	}
	if expired {
		return entity.MembershipStatusInactive, nil
	}

	return entity.MembershipStatusActive, nil
}

// GetMissingConsentVersions возвращает ID текущих обязательных версий,
// с которыми пользователь еще не согласился (глобальный scope)
func (s *MembershipService) GetMissingConsentVersions(userID uint, now time.Time) ([]uint, error) {
	required, err := s.docRepo.GetRequiredCurrentVersions(s.globalScopeTeamID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения обязательных версий: %w", err)
	}
	if len(required) == 0 {
		return nil, nil
	}

	consented, err := s.consentRepo.GetConsentedVersionIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения согласий пользователя %d: %w", userID, err)
	}

	var missing []uint
	for _, v := range required {
		if _, ok := consented[v.ID]; !ok {
			missing = append(missing, v.ID)
		}
	}
	return missing, nil
}

// UsersWithAllRequiredConsents возвращает подмножество userIDs, у которого есть
// согласие с каждой текущей обязательной версией команды teamID.
// Обязательные версии и согласия читаются по одному запросу на всех —
// никаких обращений к хранилищу на каждого пользователя.
func (s *MembershipService) UsersWithAllRequiredConsents(userIDs []uint, teamID uint, now time.Time) (map[uint]struct{}, error) {
	result := make(map[uint]struct{})
	if len(userIDs) == 0 {
		return result, nil
	}

	required, err := s.docRepo.GetRequiredCurrentVersions(teamID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения обязательных версий команды %d: %w", teamID, err)
	}

	// Нет обязательных документов — подходят все
	if len(required) == 0 {
		for _, id := range userIDs {
			result[id] = struct{}{}
		}
		return result, nil
	}

	consentMap, err := s.consentRepo.GetConsentMapForUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка пакетного чтения согласий: %w", err)
	}

	for _, userID := range userIDs {
		consented := consentMap[userID]
		ok := true
		for _, v := range required {
			if _, has := consented[v.ID]; !has {
				ok = false
				break
			}
		}
		if ok {
			result[userID] = struct{}{}
		}
	}
	return result, nil
}

// UsersWithAnyExpiredConsent возвращает подмножество userIDs, у которого
// хотя бы по одной обязательной версии истек дедлайн согласия
// (effective_from + грейс-период <= now). Глобальный scope.
func (s *MembershipService) UsersWithAnyExpiredConsent(userIDs []uint, now time.Time) (map[uint]struct{}, error) {
	result := make(map[uint]struct{})
	if len(userIDs) == 0 {
		return result, nil
	}

	required, err := s.docRepo.GetRequiredCurrentVersions(s.globalScopeTeamID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения обязательных версий: %w", err)
	}

	var expired []entity.DocumentVersion
	for _, v := range required {
		if v.ConsentExpiredAt(now) {
			expired = append(expired, v)
		}
	}
	if len(expired) == 0 {
		return result, nil
	}

	consentMap, err := s.consentRepo.GetConsentMapForUsers(userIDs)
	if err != nil {
		return nil, fmt.Errorf("ошибка пакетного чтения согласий: %w", err)
	}

	for _, userID := range userIDs {
		consented := consentMap[userID]
		for _, v := range expired {
			if _, has := consented[v.ID]; !has {
				result[userID] = struct{}{}
				break
			}
		}
	}
	return result, nil
}

// hasAnyExpiredConsent — одиночная форма UsersWithAnyExpiredConsent
func (s *MembershipService) hasAnyExpiredConsent(userID uint, now time.Time) (bool, error) {
	set, err := s.UsersWithAnyExpiredConsent([]uint{userID}, now)
	if err != nil {
		return false, err
	}
	_, ok := set[userID]
	return ok, nil
}
