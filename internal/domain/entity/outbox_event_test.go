package entity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxDedupKey(t *testing.T) {
	key := OutboxDedupKey(OutboxEventAddUserToTeamResources, 7, 42)
	assert.Equal(t, "add_user_to_team_resources:7:42", key)

	// Ключи add и remove для одной пары (team, user) различаются
	other := OutboxDedupKey(OutboxEventRemoveUserFromTeamResources, 7, 42)
	assert.NotEqual(t, key, other)
}

func TestOutboxEvent_MarkProcessed(t *testing.T) {
	lastErr := "wat"
	e := &OutboxEvent{RetryCount: 3, LastError: &lastErr}

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	e.MarkProcessed(now)

	require.NotNil(t, e.ProcessedAt)
	assert.Equal(t, now, *e.ProcessedAt)
	assert.Nil(t, e.LastError, "успешная обработка очищает последнюю ошибку")
	assert.Equal(t, 3, e.RetryCount, "счетчик попыток не сбрасывается")
}

func TestOutboxEvent_MarkFailed(t *testing.T) {
	e := &OutboxEvent{}

	e.MarkFailed(errors.New("groupware unavailable"))

	assert.Equal(t, 1, e.RetryCount)
	require.NotNil(t, e.LastError)
	assert.Equal(t, "groupware unavailable", *e.LastError)
	assert.Nil(t, e.ProcessedAt)

	e.MarkFailed(errors.New("still down"))
	assert.Equal(t, 2, e.RetryCount)
}

func TestOutboxEvent_MarkFailed_TruncatesLongError(t *testing.T) {
	e := &OutboxEvent{}

	e.MarkFailed(errors.New(strings.Repeat("x", MaxLastErrorLength+500)))

	require.NotNil(t, e.LastError)
	assert.Len(t, *e.LastError, MaxLastErrorLength)
}
