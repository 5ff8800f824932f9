package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"github.com/yourusername/membership-api/internal/pkg/metrics"
	"gorm.io/gorm"
)

// teamSyncJobName — имя актора в журнале аудита для этого задания
const teamSyncJobName = "SystemTeamSyncJob"

// EligibilityPredicate вычисляет множество пользователей, которые должны
// состоять в производной команде на момент now
type EligibilityPredicate func(now time.Time) ([]uint, error)

// TeamSyncService пересчитывает состав производных (системных) команд.
// Для каждой команды: текущие активные участники сравниваются с вычисленным
// множеством, и минимальный дифф применяется атомарно — строки участия,
// записи аудита и события outbox коммитятся одной транзакцией.
// Повторный запуск без изменений данных не делает ни одной записи.
type TeamSyncService struct {
	db          *gorm.DB
	teamRepo    repository.TeamRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	roleRepo    repository.RoleAssignmentRepository
	membership  *MembershipService
	outbox      *OutboxService
	audit       *AuditService
	snapshots   SnapshotInvalidator
	metrics     metrics.Recorder
}

// NewTeamSyncService создает новый сервис синхронизации команд
func NewTeamSyncService(
	db *gorm.DB,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	roleRepo repository.RoleAssignmentRepository,
	membership *MembershipService,
	outbox *OutboxService,
	audit *AuditService,
	snapshots SnapshotInvalidator,
	rec metrics.Recorder,
) *TeamSyncService {
	return &TeamSyncService{
		db:          db,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		roleRepo:    roleRepo,
		membership:  membership,
		outbox:      outbox,
		audit:       audit,
		snapshots:   snapshots,
		metrics:     rec,
	}
}

// SyncAll пересчитывает все производные команды по очереди.
// Каждый проход получает собственную транзакцию, поэтому последовательность —
// явное решение вызывающего, а не ограничение общего ресурса.
func (s *TeamSyncService) SyncAll(ctx context.Context, now time.Time) error {
	log.Printf("[TeamSyncService] Запуск синхронизации системных команд (%s)", entity.TriggerScheduledSync)

	if err := s.SyncVolunteersTeam(ctx, now); err != nil {
		return err
	}
	if err := s.SyncBoardTeam(ctx, now); err != nil {
		return err
	}
	if err := s.SyncTeamLeadsTeam(ctx, now); err != nil {
		return err
	}

	log.Printf("[TeamSyncService] Синхронизация системных команд завершена")
	return nil
}

// SyncVolunteersTeam пересчитывает команду Volunteers:
// все одобренные и не заблокированные пользователи со всеми обязательными согласиями
func (s *TeamSyncService) SyncVolunteersTeam(ctx context.Context, now time.Time) error {
	return s.SyncDerivedTeam(ctx, entity.SystemTeamVolunteers, func(now time.Time) ([]uint, error) {
		candidates, err := s.profileRepo.GetApprovedUserIDs()
		if err != nil {
			return nil, err
		}

		team, err := s.teamRepo.GetSystemTeam(entity.SystemTeamVolunteers)
		if err != nil {
			return nil, err
		}

		compliant, err := s.membership.UsersWithAllRequiredConsents(candidates, team.ID, now)
		if err != nil {
			return nil, err
		}

		eligible := make([]uint, 0, len(compliant))
		for id := range compliant {
			eligible = append(eligible, id)
		}
		return eligible, nil
	}, now)
}

// SyncBoardTeam пересчитывает команду Board: все пользователи с активной ролью Board
func (s *TeamSyncService) SyncBoardTeam(ctx context.Context, now time.Time) error {
	return s.SyncDerivedTeam(ctx, entity.SystemTeamBoard, func(now time.Time) ([]uint, error) {
		return s.roleRepo.GetActiveUserIDsByRole(entity.RoleBoard, now)
	}, now)
}

// SyncTeamLeadsTeam пересчитывает команду лидов: лиды всех обычных команд
func (s *TeamSyncService) SyncTeamLeadsTeam(ctx context.Context, now time.Time) error {
	return s.SyncDerivedTeam(ctx, entity.SystemTeamTeamLeads, func(now time.Time) ([]uint, error) {
		return s.teamRepo.GetLeadUserIDsOfRegularTeams()
	}, now)
}

// SyncDerivedTeam пересчитывает одну производную команду по предикату.
// Отсутствующая системная команда — не ошибка: проход просто пропускается.
func (s *TeamSyncService) SyncDerivedTeam(
	ctx context.Context,
	kind entity.SystemTeamType,
	eligible EligibilityPredicate,
	now time.Time,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	team, err := s.teamRepo.GetSystemTeam(kind)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[TeamSyncService] Системная команда %s не найдена, проход пропущен", kind)
			return nil
		}
		return fmt.Errorf("ошибка чтения системной команды %s: %w", kind, err)
	}

	eligibleIDs, err := eligible(now)
	if err != nil {
		return fmt.Errorf("ошибка вычисления состава команды %s: %w", kind, err)
	}

	return s.syncTeamMembership(ctx, team, eligibleIDs, now)
}

// syncTeamMembership применяет минимальный дифф между текущим и вычисленным составом
func (s *TeamSyncService) syncTeamMembership(ctx context.Context, team *entity.Team, eligibleIDs []uint, now time.Time) error {
	// Текущие активные участники: userID -> ID строки участия
	current := make(map[uint]uint, len(team.Members))
	for _, m := range team.Members {
		if m.IsActive() {
			current[m.UserID] = m.ID
		}
	}

	eligibleSet := make(map[uint]struct{}, len(eligibleIDs))
	for _, id := range eligibleIDs {
		eligibleSet[id] = struct{}{}
	}

	var toAdd, toRemove []uint
	for id := range eligibleSet {
		if _, ok := current[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	for id := range current {
		if _, ok := eligibleSet[id]; !ok {
			toRemove = append(toRemove, id)
		}
	}

	if len(toAdd) == 0 && len(toRemove) == 0 {
		log.Printf("[TeamSyncService] Команда %s уже актуальна", team.Name)
		return nil
	}

	// Стабильный порядок записей в журнале и очереди
	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })

	// Отображаемые имена для описаний аудита — одним запросом
	affected := append(append([]uint{}, toAdd...), toRemove...)
	names, err := s.userRepo.GetDisplayNames(affected)
	if err != nil {
		return fmt.Errorf("ошибка чтения имен пользователей: %w", err)
	}
	displayName := func(userID uint) string {
		if name, ok := names[userID]; ok {
			return name
		}
		return strconv.FormatUint(uint64(userID), 10)
	}

	relatedType := "User"

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, userID := range toAdd {
			member := &entity.TeamMember{
				TeamID:   team.ID,
				UserID:   userID,
				Role:     entity.TeamMemberRoleMember,
				JoinedAt: now,
			}
			if err := s.teamRepo.CreateMember(tx, member); err != nil {
				return err
			}

			userIDCopy := userID
			desc := fmt.Sprintf("%s added to %s by system sync", displayName(userID), team.Name)
			if err := s.audit.Log(tx, entity.AuditTeamMemberAdded, "Team", team.ID, desc,
				teamSyncJobName, now, &userIDCopy, &relatedType); err != nil {
				return err
			}

			if err := s.outbox.Enqueue(tx, entity.OutboxEventAddUserToTeamResources, team.ID, userID, now); err != nil {
				return err
			}
		}

		for _, userID := range toRemove {
			if err := s.teamRepo.MarkMemberLeft(tx, current[userID], now); err != nil {
				return err
			}

			userIDCopy := userID
			desc := fmt.Sprintf("%s removed from %s by system sync", displayName(userID), team.Name)
			if err := s.audit.Log(tx, entity.AuditTeamMemberRemoved, "Team", team.ID, desc,
				teamSyncJobName, now, &userIDCopy, &relatedType); err != nil {
				return err
			}

			if err := s.outbox.Enqueue(tx, entity.OutboxEventRemoveUserFromTeamResources, team.ID, userID, now); err != nil {
				return err
			}
		}

		return s.teamRepo.TouchUpdatedAt(tx, team.ID, now)
	})
	if err != nil {
		return fmt.Errorf("ошибка синхронизации команды %s: %w", team.Name, err)
	}

	// Снапшоты затронутых пользователей устарели сразу после коммита.
	// Ошибка сброса не откатывает синхронизацию: кеш истечет сам по TTL.
	if s.snapshots != nil {
		for _, userID := range affected {
			if err := s.snapshots.Invalidate(userID); err != nil {
				log.Printf("[TeamSyncService] Ошибка сброса снапшота пользователя %d: %v", userID, err)
			}
		}
	}

	s.metrics.RecordTeamSyncChanges(string(team.SystemTeamType), len(toAdd), len(toRemove))
	log.Printf("[TeamSyncService] Команда %s синхронизирована: добавлено %d, удалено %d",
		team.Name, len(toAdd), len(toRemove))
	return nil
}
