package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentVersion_ConsentDeadline(t *testing.T) {
	effective := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	v := &DocumentVersion{
		EffectiveFrom: effective,
		LegalDocument: LegalDocument{GracePeriodDays: 14},
	}

	assert.Equal(t, effective.AddDate(0, 0, 14), v.ConsentDeadline())
}

func TestDocumentVersion_ConsentExpiredAt(t *testing.T) {
	effective := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("нулевой грейс-период истекает сразу", func(t *testing.T) {
		v := &DocumentVersion{EffectiveFrom: effective, LegalDocument: LegalDocument{GracePeriodDays: 0}}
		// Дедлайн наступает ровно в EffectiveFrom
		assert.False(t, v.ConsentExpiredAt(effective.Add(-time.Second)))
		assert.True(t, v.ConsentExpiredAt(effective))
	})

	t.Run("внутри грейс-периода согласие не просрочено", func(t *testing.T) {
		v := &DocumentVersion{EffectiveFrom: effective, LegalDocument: LegalDocument{GracePeriodDays: 7}}
		assert.False(t, v.ConsentExpiredAt(effective.AddDate(0, 0, 6)))
		assert.True(t, v.ConsentExpiredAt(effective.AddDate(0, 0, 7)))
		assert.True(t, v.ConsentExpiredAt(effective.AddDate(0, 0, 30)))
	})
}
