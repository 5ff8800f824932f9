package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/membership-api/internal/domain/entity"
)

func TestAuditService_Log_SystemActor(t *testing.T) {
	mockAuditRepo := new(MockAuditRepoForTeamSync)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var saved *entity.AuditLogEntry
	mockAuditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.AuditLogEntry")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.AuditLogEntry) }).Return(nil)

	svc := NewAuditService(mockAuditRepo)

	err := svc.Log(nil, entity.AuditTeamMemberAdded, "Team", 5, "Anna added to Board by system sync",
		"SystemTeamSyncJob", now, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, saved)
	// Системный актор: имя задания без префикса, ActorUserID пуст
	assert.Equal(t, "SystemTeamSyncJob", saved.ActorName)
	assert.Nil(t, saved.ActorUserID)
	assert.Equal(t, now, saved.OccurredAt)
}

func TestAuditService_LogAdmin_PrefixesActorName(t *testing.T) {
	mockAuditRepo := new(MockAuditRepoForTeamSync)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var saved *entity.AuditLogEntry
	mockAuditRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.AuditLogEntry")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*entity.AuditLogEntry) }).Return(nil)

	svc := NewAuditService(mockAuditRepo)

	err := svc.LogAdmin(nil, entity.AuditProfileSuspended, "User", 42, "Account suspended",
		7, "Ivan", now, nil, nil)

	require.NoError(t, err)
	require.NotNil(t, saved)
	// Имя админа денормализуется с префиксом и переживает удаление актора
	assert.Equal(t, "Admin: Ivan", saved.ActorName)
	require.NotNil(t, saved.ActorUserID)
	assert.Equal(t, uint(7), *saved.ActorUserID)
}
