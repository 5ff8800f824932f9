package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yourusername/membership-api/internal/domain/entity"
	"github.com/yourusername/membership-api/internal/domain/repository"
	"github.com/yourusername/membership-api/internal/pkg/metrics"
	"gorm.io/gorm"
)

// DrainReport — итог одного прохода дренажа очереди
type DrainReport struct {
	// Picked — сколько событий выбрано из очереди
	Picked int
	// Processed — сколько обработано успешно
	Processed int
	// Failed — сколько попыток завершились ошибкой (счетчик ретраев вырос)
	Failed int
	// Cancelled — проход прерван отменой контекста; исходы уже выполненных
	// событий все равно закоммичены
	Cancelled bool
}

// OutboxService управляет транзакционной очередью внешних эффектов.
// Enqueue ставит событие в очередь в транзакции бизнес-изменения и никогда
// не зовет внешнюю систему; DrainBatch вызывается планировщиком и выполняет
// накопленные эффекты с ретраями. Доставка at-least-once.
type OutboxService struct {
	outboxRepo repository.OutboxRepository
	groupware  GroupwareService
	metrics    metrics.Recorder
}

// NewOutboxService создает новый сервис очереди событий
func NewOutboxService(
	outboxRepo repository.OutboxRepository,
	groupware GroupwareService,
	rec metrics.Recorder,
) *OutboxService {
	return &OutboxService{
		outboxRepo: outboxRepo,
		groupware:  groupware,
		metrics:    rec,
	}
}

// Enqueue ставит событие синхронизации в очередь в транзакции вызывающего.
// Идемпотентно: если необработанное событие с тем же ключом дедупликации
// уже есть, вызов — no-op.
func (s *OutboxService) Enqueue(tx *gorm.DB, eventType string, teamID, userID uint, occurredAt time.Time) error {
	switch eventType {
	case entity.OutboxEventAddUserToTeamResources, entity.OutboxEventRemoveUserFromTeamResources:
	default:
		return fmt.Errorf("неизвестный тип события outbox %q", eventType)
	}

	event := &entity.OutboxEvent{
		EventType:        eventType,
		TeamID:           teamID,
		UserID:           userID,
		OccurredAt:       occurredAt,
		DeduplicationKey: entity.OutboxDedupKey(eventType, teamID, userID),
	}
	return s.outboxRepo.Enqueue(tx, event)
}

// DrainBatch выбирает до batchSize необработанных событий с retry_count < maxRetry,
// старые вперед, и выполняет их по одному. Ошибка одного события не прерывает
// пачку: она фиксируется в retry_count и last_error этого события. Все исходы
// коммитятся одной транзакцией в конце пачки. Пустая очередь — не ошибка.
// Наружу уходят только сбои хранилища.
func (s *OutboxService) DrainBatch(ctx context.Context, batchSize, maxRetry int) (*DrainReport, error) {
	report := &DrainReport{}

	events, err := s.outboxRepo.FindPending(batchSize, maxRetry)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки событий outbox: %w", err)
	}
	if len(events) == 0 {
		return report, nil
	}
	report.Picked = len(events)

	// attempted — события, по которым есть исход для сохранения.
	// При отмене контекста нетронутый хвост пачки остается в очереди.
	attempted := make([]*entity.OutboxEvent, 0, len(events))

	for _, event := range events {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		if err := s.dispatch(ctx, event); err != nil {
			event.MarkFailed(err)
			report.Failed++
			s.metrics.RecordSyncOperation("failure")
			log.Printf("[OutboxService] Ошибка обработки события %s (%s), попытка %d: %v",
				event.ID, event.EventType, event.RetryCount, err)
		} else {
			event.MarkProcessed(time.Now())
			report.Processed++
			s.metrics.RecordSyncOperation("success")
		}
		attempted = append(attempted, event)
	}

	if err := s.outboxRepo.SaveOutcomes(attempted); err != nil {
		return nil, fmt.Errorf("ошибка сохранения исходов пачки: %w", err)
	}

	s.recordDepth(maxRetry)

	log.Printf("[OutboxService] Дренаж завершен: выбрано %d, успешно %d, с ошибкой %d, отменен=%v",
		report.Picked, report.Processed, report.Failed, report.Cancelled)
	return report, nil
}

// dispatch выполняет один внешний эффект по типу события
func (s *OutboxService) dispatch(ctx context.Context, event *entity.OutboxEvent) error {
	switch event.EventType {
	case entity.OutboxEventAddUserToTeamResources:
		return s.groupware.AddUserToTeamResources(ctx, event.TeamID, event.UserID)
	case entity.OutboxEventRemoveUserFromTeamResources:
		return s.groupware.RemoveUserFromTeamResources(ctx, event.TeamID, event.UserID)
	default:
		return fmt.Errorf("неизвестный тип события outbox %q", event.EventType)
	}
}

// recordDepth обновляет метрики глубины очереди; сбой здесь не фатален
func (s *OutboxService) recordDepth(maxRetry int) {
	pending, err := s.outboxRepo.CountPending(maxRetry)
	if err != nil {
		log.Printf("[OutboxService] Не удалось посчитать очередь: %v", err)
		return
	}
	abandoned, err := s.outboxRepo.CountAbandoned(maxRetry)
	if err != nil {
		log.Printf("[OutboxService] Не удалось посчитать брошенные события: %v", err)
		return
	}
	s.metrics.RecordOutboxDepth(pending, abandoned)
}
