package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
	"gorm.io/gorm"
)

// boardDigestJobName — имя актора в журнале аудита для этого задания
const boardDigestJobName = "BoardDailyDigestJob"

// BoardDigestService собирает ежедневную сводку для правления:
// счетчики незакрытых вопросов и ростер волонтеров приложением.
type BoardDigestService struct {
	db          *gorm.DB
	teamRepo    repository.TeamRepository
	userRepo    repository.UserRepository
	profileRepo repository.ProfileRepository
	outboxRepo  repository.OutboxRepository
	membership  *MembershipService
	email       EmailService
	audit       *AuditService

	// outboxMaxRetry — предел попыток, разделяемый с воркером дренажа:
	// от него зависит граница pending/abandoned в счетчиках
	outboxMaxRetry int
}

// NewBoardDigestService создает новый сервис сводки правления
func NewBoardDigestService(
	db *gorm.DB,
	teamRepo repository.TeamRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	outboxRepo repository.OutboxRepository,
	membership *MembershipService,
	email EmailService,
	audit *AuditService,
	outboxMaxRetry int,
) *BoardDigestService {
	return &BoardDigestService{
		db:             db,
		teamRepo:       teamRepo,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		outboxRepo:     outboxRepo,
		membership:     membership,
		email:          email,
		audit:          audit,
		outboxMaxRetry: outboxMaxRetry,
	}
}

// Run собирает сводку и рассылает ее активным участникам команды Board
func (s *BoardDigestService) Run(ctx context.Context, now time.Time) error {
	board, err := s.teamRepo.GetSystemTeam(entity.SystemTeamBoard)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			log.Printf("[BoardDigestService] Команда Board не найдена, сводка пропущена")
			return nil
		}
		return fmt.Errorf("ошибка чтения команды Board: %w", err)
	}

	var recipientIDs []uint
	for _, m := range board.Members {
		if m.IsActive() {
			recipientIDs = append(recipientIDs, m.UserID)
		}
	}
	if len(recipientIDs) == 0 {
		log.Printf("[BoardDigestService] В команде Board нет активных участников, сводка пропущена")
		return nil
	}

	recipients, err := s.userRepo.GetByIDs(recipientIDs)
	if err != nil {
		return fmt.Errorf("ошибка чтения получателей сводки: %w", err)
	}

	pendingApproval, err := s.profileRepo.CountPendingApproval()
	if err != nil {
		return fmt.Errorf("ошибка подсчета неодобренных профилей: %w", err)
	}

	outboxPending, err := s.outboxRepo.CountPending(s.outboxMaxRetry)
	if err != nil {
		return fmt.Errorf("ошибка подсчета очереди outbox: %w", err)
	}
	outboxAbandoned, err := s.outboxRepo.CountAbandoned(s.outboxMaxRetry)
	if err != nil {
		return fmt.Errorf("ошибка подсчета брошенных событий: %w", err)
	}

	roster, nonCompliant, err := s.buildVolunteerRoster(now)
	if err != nil {
		return fmt.Errorf("ошибка построения ростера: %w", err)
	}

	subject := fmt.Sprintf("Board digest %s", now.Format("2006-01-02"))
	text := fmt.Sprintf(
		"Outstanding items:\n"+
			"- applications awaiting approval: %d\n"+
			"- members with expired consents: %d\n"+
			"- groupware sync events queued: %d\n"+
			"- groupware sync events abandoned: %d\n\n"+
			"The current volunteer roster is attached.\n",
		pendingApproval, nonCompliant, outboxPending, outboxAbandoned)

	sent := 0
	for _, r := range recipients {
		if ctx.Err() != nil {
			break
		}
		if err := s.email.SendBoardDigest(ctx, r.Email, subject, text, roster); err != nil {
			log.Printf("[BoardDigestService] Ошибка отправки сводки %s: %v", r.Email, err)
			continue
		}
		sent++
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		desc := fmt.Sprintf("Daily digest sent to %d of %d board members", sent, len(recipients))
		return s.audit.Log(tx, entity.AuditBoardDigestSent, "Team", board.ID, desc,
			boardDigestJobName, now, nil, nil)
	})
	if err != nil {
		return fmt.Errorf("ошибка записи аудита сводки: %w", err)
	}

	log.Printf("[BoardDigestService] Сводка отправлена %d получателям", sent)
	return nil
}

// buildVolunteerRoster строит xlsx-ростер волонтеров через StreamWriter.
// Возвращает также число участников с просроченными согласиями.
func (s *BoardDigestService) buildVolunteerRoster(now time.Time) ([]byte, int, error) {
	team, err := s.teamRepo.GetSystemTeam(entity.SystemTeamVolunteers)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, 0, nil
		}
		return nil, 0, err
	}

	var memberIDs []uint
	joinedAt := make(map[uint]time.Time, len(team.Members))
	for _, m := range team.Members {
		if m.IsActive() {
			memberIDs = append(memberIDs, m.UserID)
			joinedAt[m.UserID] = m.JoinedAt
		}
	}
	sort.Slice(memberIDs, func(i, j int) bool { return memberIDs[i] < memberIDs[j] })

	users, err := s.userRepo.GetByIDs(memberIDs)
	if err != nil {
		return nil, 0, err
	}
	userByID := make(map[uint]*entity.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	expiredSet, err := s.membership.UsersWithAnyExpiredConsent(memberIDs, now)
	if err != nil {
		return nil, 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Roster"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create stream writer: %w", err)
	}

	headers := []interface{}{"User", "Email", "Joined", "Consents"}
	if err := sw.SetRow("A1", headers); err != nil {
		return nil, 0, fmt.Errorf("failed to write headers: %w", err)
	}

	for i, userID := range memberIDs {
		user, ok := userByID[userID]
		if !ok {
			continue
		}

		consents := "ok"
		if _, expired := expiredSet[userID]; expired {
			consents = "expired"
		}

		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{user.DisplayName, user.Email, joinedAt[userID].Format("2006-01-02"), consents}
		if err := sw.SetRow(cell, row); err != nil {
			return nil, 0, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return nil, 0, fmt.Errorf("failed to flush stream writer: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, 0, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), len(expiredSet), nil
}
