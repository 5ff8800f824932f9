package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
)

// MembershipSnapshot — консолидированное представление членства пользователя
// для читающих сервисов
type MembershipSnapshot struct {
	Status               entity.MembershipStatus `json:"status"`
	IsVolunteerMember    bool                    `json:"is_volunteer_member"`
	RequiredVersionCount int                     `json:"required_version_count"`
	MissingVersionIDs    []uint                  `json:"missing_version_ids"`
}

// SnapshotInvalidator сбрасывает кешированный снапшот пользователя.
// Сервисы, меняющие факты членства, обязаны дергать его после коммита,
// чтобы не отдавать собственное устаревшее значение до конца TTL.
type SnapshotInvalidator interface {
	Invalidate(userID uint) error
}

// SnapshotService отдает снапшоты членства с коротким кешем в Redis.
// Кеш — только ускорение читающих вызовов: TTL короткий, и свежесть
// относительно now гарантируется только в его пределах.
type SnapshotService struct {
	membership *MembershipService
	teamRepo   repository.TeamRepository
	cacheRepo  repository.CacheRepository
	cacheTTL   time.Duration
}

// NewSnapshotService создает новый сервис снапшотов
func NewSnapshotService(
	membership *MembershipService,
	teamRepo repository.TeamRepository,
	cacheRepo repository.CacheRepository,
	cacheTTL time.Duration,
) *SnapshotService {
	return &SnapshotService{
		membership: membership,
		teamRepo:   teamRepo,
		cacheRepo:  cacheRepo,
		cacheTTL:   cacheTTL,
	}
}

func snapshotCacheKey(userID uint) string {
	return fmt.Sprintf("membership:snapshot:%d", userID)
}

// GetSnapshot возвращает снапшот пользователя, по возможности из кеша
func (s *SnapshotService) GetSnapshot(userID uint, now time.Time) (*MembershipSnapshot, error) {
	key := snapshotCacheKey(userID)

	if cached, err := s.cacheRepo.Get(key); err == nil {
		var snapshot MembershipSnapshot
		if jsonErr := json.Unmarshal([]byte(cached), &snapshot); jsonErr == nil {
			return &snapshot, nil
		}
		// Битое значение в кеше не фатально, пересчитываем
		log.Printf("[SnapshotService] Битый снапшот в кеше для пользователя %d, пересчет", userID)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[SnapshotService] Ошибка чтения кеша для пользователя %d: %v", userID, err)
	}

	snapshot, err := s.computeSnapshot(userID, now)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(snapshot); jsonErr == nil {
		if cacheErr := s.cacheRepo.Set(key, payload, s.cacheTTL); cacheErr != nil {
			log.Printf("[SnapshotService] Ошибка записи кеша для пользователя %d: %v", userID, cacheErr)
		}
	}

	return snapshot, nil
}

// Invalidate сбрасывает кешированный снапшот после изменения данных пользователя
func (s *SnapshotService) Invalidate(userID uint) error {
	return s.cacheRepo.Delete(snapshotCacheKey(userID))
}

func (s *SnapshotService) computeSnapshot(userID uint, now time.Time) (*MembershipSnapshot, error) {
	status, err := s.membership.ComputeStatus(userID, now)
	if err != nil {
		return nil, err
	}

	missing, err := s.membership.GetMissingConsentVersions(userID, now)
	if err != nil {
		return nil, err
	}

	required, err := s.membership.docRepo.GetRequiredCurrentVersions(s.membership.globalScopeTeamID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения обязательных версий: %w", err)
	}

	isVolunteer := false
	team, err := s.teamRepo.GetSystemTeam(entity.SystemTeamVolunteers)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("ошибка чтения команды Volunteers: %w", err)
		}
	} else {
		for _, m := range team.Members {
			if m.UserID == userID && m.IsActive() {
				isVolunteer = true
				break
			}
		}
	}

	return &MembershipSnapshot{
		Status:               status,
		IsVolunteerMember:    isVolunteer,
		RequiredVersionCount: len(required),
		MissingVersionIDs:    missing,
	}, nil
}
