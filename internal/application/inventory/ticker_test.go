package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDailyRun(t *testing.T) {
	loc := time.FixedZone("COT", -5*3600)

	before := time.Date(2024, 6, 15, 7, 59, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 6, 15, 8, 0, 0, 0, loc), NextDailyRun(before, 8, 0, loc))

	exact := time.Date(2024, 6, 15, 8, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2024, 6, 16, 8, 0, 0, 0, loc), NextDailyRun(exact, 8, 0, loc))

	utc := time.Date(2024, 6, 30, 14, 0, 0, 0, time.UTC) // 09:00 COT
	assert.Equal(t, time.Date(2024, 7, 1, 8, 0, 0, 0, loc), NextDailyRun(utc, 8, 0, loc))
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("08:30")
	require.NoError(t, err)
	assert.Equal(t, 8, h)
	assert.Equal(t, 30, m)

	_, _, err = ParseClock("8h")
	assert.Error(t, err)
}

func TestManualTrigger_FusionaPendientes(t *testing.T) {
	trigger := NewManualTrigger()
	assert.True(t, trigger.Fire())
	assert.False(t, trigger.Fire())

	<-trigger.C()
	assert.True(t, trigger.Fire())
}

func TestMergeTicks(t *testing.T) {
	a, b := NewManualTrigger(), NewManualTrigger()
	merged := MergeTicks(a, b)
	defer merged.Stop()

	b.Fire()
	select {
	case <-merged.C():
	case <-time.After(time.Second):
		t.Fatal("sin disparo del origen combinado")
	}
}
