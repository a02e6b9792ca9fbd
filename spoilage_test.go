package main

import (
	"testing"
	"time"

	"larder-backend/models"
	"larder-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestSpoilThresholds(t *testing.T) {
	// Вне сезонного режима всегда действует пара по умолчанию
	smell, ruin := services.SpoilThresholds(models.SeasonGreenleaf, false)
	assert.Equal(t, 7, smell)
	assert.Equal(t, 14, ruin)

	// В сезонном режиме пороги берутся из таблицы сезонов
	smell, ruin = services.SpoilThresholds(models.SeasonNewleaf, true)
	assert.Equal(t, 4, smell)
	assert.Equal(t, 7, ruin)

	smell, ruin = services.SpoilThresholds(models.SeasonGreenleaf, true)
	assert.Equal(t, 2, smell)
	assert.Equal(t, 5, ruin)

	smell, ruin = services.SpoilThresholds(models.SeasonLeafbare, true)
	assert.Equal(t, 7, smell)
	assert.Equal(t, 10, ruin)

	// Неизвестный сезон откатывается к порогам по умолчанию
	smell, ruin = services.SpoilThresholds("monsoon", true)
	assert.Equal(t, 7, smell)
	assert.Equal(t, 14, ruin)
}

func TestSpoilageStatus(t *testing.T) {
	// Пороги по умолчанию: запах с 7 дней, порча с 14
	assert.Equal(t, services.SpoilFresh, services.SpoilageStatus(0, models.SeasonNewleaf, false))
	assert.Equal(t, services.SpoilFresh, services.SpoilageStatus(6, models.SeasonNewleaf, false))
	assert.Equal(t, services.SpoilSmelly, services.SpoilageStatus(7, models.SeasonNewleaf, false))
	assert.Equal(t, services.SpoilSmelly, services.SpoilageStatus(13, models.SeasonNewleaf, false))
	assert.Equal(t, services.SpoilRuined, services.SpoilageStatus(14, models.SeasonNewleaf, false))

	// В сезон зеленых листьев добыча портится заметно быстрее
	assert.Equal(t, services.SpoilFresh, services.SpoilageStatus(1, models.SeasonGreenleaf, true))
	assert.Equal(t, services.SpoilSmelly, services.SpoilageStatus(2, models.SeasonGreenleaf, true))
	assert.Equal(t, services.SpoilRuined, services.SpoilageStatus(5, models.SeasonGreenleaf, true))
}

func TestAgeDays(t *testing.T) {
	now := time.Now()

	// Возраст округляется вниз до целых дней
	assert.Equal(t, 0, services.AgeDays(now.Add(-23*time.Hour), now))
	assert.Equal(t, 1, services.AgeDays(now.Add(-25*time.Hour), now))
	assert.Equal(t, 14, services.AgeDays(now.Add(-14*24*time.Hour), now))

	// Партия из будущего считается нулевого возраста
	assert.Equal(t, 0, services.AgeDays(now.Add(time.Hour), now))
}

func TestPileStatusWorstOf(t *testing.T) {
	now := time.Now()

	fresh := models.Batch{AddedAt: now.Add(-3 * 24 * time.Hour)}
	smelly := models.Batch{AddedAt: now.Add(-8 * 24 * time.Hour)}
	ruined := models.Batch{AddedAt: now.Add(-20 * 24 * time.Hour)}

	// Одна старая партия задает статус всей кучи
	status := services.PileStatus([]models.Batch{fresh, ruined}, now, models.SeasonNewleaf, false)
	assert.Equal(t, services.SpoilRuined, status)

	status = services.PileStatus([]models.Batch{fresh, smelly}, now, models.SeasonNewleaf, false)
	assert.Equal(t, services.SpoilSmelly, status)

	status = services.PileStatus([]models.Batch{fresh}, now, models.SeasonNewleaf, false)
	assert.Equal(t, services.SpoilFresh, status)

	// Тот же набор в сезонном режиме оценивается по сезонным порогам
	status = services.PileStatus([]models.Batch{fresh}, now, models.SeasonGreenleaf, true)
	assert.Equal(t, services.SpoilSmelly, status)
}
