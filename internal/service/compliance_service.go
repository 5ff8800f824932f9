package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// complianceJobName — имя актора в журнале аудита для этого задания
const complianceJobName = "ConsentComplianceJob"

// ComplianceReport — итог одного прохода проверки согласий
type ComplianceReport struct {
	// NonCompliant — сколько пользователей с просроченными согласиями найдено
	NonCompliant int
	// AtRisk — сколько пользователей без полного набора согласий,
	// у которых дедлайн еще не наступил
	AtRisk int
	// Notified — скольким отправлено уведомление о приостановке доступа
	Notified int
	// Reminded — скольким отправлено напоминание до наступления дедлайна
	Reminded int
	// Throttled — сколько пропущено из-за недавнего напоминания
	Throttled int
	// Cancelled — проход прерван отменой контекста
	Cancelled bool
}

// ComplianceService следит за обязательными согласиями участников.
// Пользователи с просроченными согласиями получают уведомление о приостановке
// доступа (их статус вычисляется как Inactive сам по себе), пользователи внутри
// грейс-периода — напоминание. Задание лишь рассылает письма и фиксирует факт
// в аудите.
type ComplianceService struct {
	db          *gorm.DB
	roleRepo    repository.RoleAssignmentRepository
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
	membership  *MembershipService
	email       EmailService
	audit       *AuditService

	// reminderInterval — минимальный интервал между напоминаниями одному пользователю
	reminderInterval time.Duration
}

// NewComplianceService создает новый сервис проверки согласий
func NewComplianceService(
	db *gorm.DB,
	roleRepo repository.RoleAssignmentRepository,
	profileRepo repository.ProfileRepository,
	userRepo repository.UserRepository,
	membership *MembershipService,
	email EmailService,
	audit *AuditService,
	reminderInterval time.Duration,
) *ComplianceService {
	return &ComplianceService{
		db:               db,
		roleRepo:         roleRepo,
		profileRepo:      profileRepo,
		userRepo:         userRepo,
		membership:       membership,
		email:            email,
		audit:            audit,
		reminderInterval: reminderInterval,
	}
}

// Run выполняет один проход: находит участников без полного набора согласий
// пакетными запросами и уведомляет каждого. Ошибка отправки одному
// пользователю не прерывает проход.
func (s *ComplianceService) Run(ctx context.Context, now time.Time) (*ComplianceReport, error) {
	report := &ComplianceReport{}

	activeUserIDs, err := s.roleRepo.GetActiveUserIDs(now)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки пользователей с активными ролями: %w", err)
	}

	expiredSet, err := s.membership.UsersWithAnyExpiredConsent(activeUserIDs, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска просроченных согласий: %w", err)
	}
	consentedSet, err := s.membership.UsersWithAllRequiredConsents(activeUserIDs, s.membership.globalScopeTeamID, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска полных наборов согласий: %w", err)
	}

	var expiredIDs, atRiskIDs []uint
	for _, id := range activeUserIDs {
		if _, ok := expiredSet[id]; ok {
			expiredIDs = append(expiredIDs, id)
			continue
		}
		if _, ok := consentedSet[id]; !ok {
			atRiskIDs = append(atRiskIDs, id)
		}
	}
	if len(expiredIDs) == 0 && len(atRiskIDs) == 0 {
		log.Printf("[ComplianceService] Все активные участники с полным набором согласий")
		return report, nil
	}
	report.NonCompliant = len(expiredIDs)
	report.AtRisk = len(atRiskIDs)

	sort.Slice(expiredIDs, func(i, j int) bool { return expiredIDs[i] < expiredIDs[j] })
	sort.Slice(atRiskIDs, func(i, j int) bool { return atRiskIDs[i] < atRiskIDs[j] })

	affected := append(append([]uint{}, expiredIDs...), atRiskIDs...)
	users, err := s.userRepo.GetByIDs(affected)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения пользователей: %w", err)
	}
	userByID := make(map[uint]*entity.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	// Сначала просроченные: при отмене прохода уведомления о приостановке
	// важнее напоминаний
	s.notifyAll(ctx, expiredIDs, userByID, now, true, report)
	if !report.Cancelled {
		s.notifyAll(ctx, atRiskIDs, userByID, now, false, report)
	}

	log.Printf("[ComplianceService] Проход завершен: просрочено %d, в грейс-периоде %d, уведомлено %d, напомнено %d, пропущено по троттлингу %d",
		report.NonCompliant, report.AtRisk, report.Notified, report.Reminded, report.Throttled)
	return report, nil
}

func (s *ComplianceService) notifyAll(ctx context.Context, userIDs []uint, userByID map[uint]*entity.User, now time.Time, expired bool, report *ComplianceReport) {
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			report.Cancelled = true
			return
		}

		user, ok := userByID[userID]
		if !ok {
			continue
		}

		sent, err := s.notifyUser(ctx, user, now, expired)
		if err != nil {
			// Изоляция между пользователями: ошибка уведомления одного
			// не лишает уведомления остальных
			log.Printf("[ComplianceService] Ошибка уведомления пользователя %d: %v", userID, err)
			continue
		}
		switch {
		case !sent:
			report.Throttled++
		case expired:
			report.Notified++
		default:
			report.Reminded++
		}
	}
}

// notifyUser отправляет одно уведомление с троттлингом и записью в аудит.
// Для просроченных — письмо о приостановке доступа, для остальных — напоминание.
func (s *ComplianceService) notifyUser(ctx context.Context, user *entity.User, now time.Time, expired bool) (bool, error) {
	profile, err := s.profileRepo.GetByUserID(user.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if profile.LastConsentReminderSentAt != nil &&
		now.Sub(*profile.LastConsentReminderSentAt) < s.reminderInterval {
		return false, nil
	}

	missing, err := s.membership.GetMissingConsentVersions(user.ID, now)
	if err != nil {
		return false, err
	}

	// Ключ идемпотентности на пользователя и день: повтор задания в тот же
	// день не дублирует письмо
	var action entity.AuditAction
	var desc string
	if expired {
		idempotencyKey := fmt.Sprintf("access-suspended:%d:%s", user.ID, now.Format("2006-01-02"))
		if err := s.email.SendAccessSuspended(ctx, user.Email, user.DisplayName, idempotencyKey); err != nil {
			return false, err
		}
		action = entity.AuditMemberMarkedInactive
		desc = fmt.Sprintf("%s notified about access suspension over %d expired consent document(s)", user.DisplayName, len(missing))
	} else {
		idempotencyKey := fmt.Sprintf("re-consent-reminder:%d:%s", user.ID, now.Format("2006-01-02"))
		if err := s.email.SendReConsentReminder(ctx, user.Email, user.DisplayName, len(missing), idempotencyKey); err != nil {
			return false, err
		}
		action = entity.AuditConsentReminderSent
		desc = fmt.Sprintf("%s reminded about %d pending consent document(s)", user.DisplayName, len(missing))
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.profileRepo.SetReminderSentAt(tx, user.ID, now); err != nil {
			return err
		}
		return s.audit.Log(tx, action, "User", user.ID, desc,
			complianceJobName, now, nil, nil)
	})
	if err != nil {
		return false, fmt.Errorf("ошибка записи результата уведомления: %w", err)
	}

	return true, nil
}
