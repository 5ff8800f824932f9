package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/time/rate"
)

// GroupwareService — внешний коллаборатор синхронизации: общие диски,
// списки рассылки и прочие ресурсы команды во внешней groupware-системе.
// Реализация обязана быть идемпотентной по (team, user, operation):
// доставка событий at-least-once, повторный вызов не должен ломать состояние.
type GroupwareService interface {
	AddUserToTeamResources(ctx context.Context, teamID, userID uint) error
	RemoveUserFromTeamResources(ctx context.Context, teamID, userID uint) error
}

// StubGroupwareService — заглушка для разработки без учетных данных groupware.
// Пишет вызовы в лог и всегда успешна; идемпотентность тривиальна.
type StubGroupwareService struct{}

// NewStubGroupwareService создает заглушку groupware-сервиса
func NewStubGroupwareService() *StubGroupwareService {
	return &StubGroupwareService{}
}

func (s *StubGroupwareService) AddUserToTeamResources(ctx context.Context, teamID, userID uint) error {
	log.Printf("[GroupwareService] stub: add user=%d to team=%d resources", userID, teamID)
	return nil
}

func (s *StubGroupwareService) RemoveUserFromTeamResources(ctx context.Context, teamID, userID uint) error {
	log.Printf("[GroupwareService] stub: remove user=%d from team=%d resources", userID, teamID)
	return nil
}

// RateLimitedGroupwareService оборачивает реальный клиент лимитером запросов:
// у внешнего API есть квоты, и дренаж большой пачки не должен их выжигать.
type RateLimitedGroupwareService struct {
	inner   GroupwareService
	limiter *rate.Limiter
}

// NewRateLimitedGroupwareService создает обертку с лимитом rps запросов в секунду
func NewRateLimitedGroupwareService(inner GroupwareService, rps float64, burst int) *RateLimitedGroupwareService {
	return &RateLimitedGroupwareService{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (s *RateLimitedGroupwareService) AddUserToTeamResources(ctx context.Context, teamID, userID uint) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return s.inner.AddUserToTeamResources(ctx, teamID, userID)
}

func (s *RateLimitedGroupwareService) RemoveUserFromTeamResources(ctx context.Context, teamID, userID uint) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	return s.inner.RemoveUserFromTeamResources(ctx, teamID, userID)
}
