package statsui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateRecordsLatestRowPerVariant(t *testing.T) {
	u := New(false, "test-run")

	u.Update(VariantUpdate{Variant: "ams", BatchID: 0, SampleSize: 10, Threshold: 1.5, Rounds: 3})
	u.Update(VariantUpdate{Variant: "gather", BatchID: 0, SampleSize: 10, Threshold: 1.5, Rounds: 0})
	u.Update(VariantUpdate{Variant: "ams", BatchID: 1, SampleSize: 20, Threshold: 2.5, Rounds: 5})

	u.mu.Lock()
	defer u.mu.Unlock()
	assert.Len(t, u.rows, 2)
	assert.Equal(t, int64(20), u.rows["ams"].SampleSize)
	assert.Equal(t, int64(10), u.rows["gather"].SampleSize)
}

func TestStartStopIsSafeWhenDisabled(t *testing.T) {
	u := New(false, "test-run")
	u.Start()
	u.Update(VariantUpdate{Variant: "ams", SampleSize: 5})
	u.Stop()
	u.Stop() // second call must not panic or block
}

func TestBuildDisplayIncludesRunIDWhenEnabled(t *testing.T) {
	u := New(true, "abc-123")
	u.Update(VariantUpdate{Variant: "ams", SampleSize: 5, BatchElapsed: time.Millisecond})
	display := u.buildDisplay()
	assert.Contains(t, display, "abc-123")
	assert.Contains(t, display, "ams")
	u.enabled = false // avoid pterm area teardown in the test
}

func TestResourceLineReturnsPositiveRSS(t *testing.T) {
	rss, _, err := ResourceLine()
	assert.NoError(t, err)
	assert.Greater(t, rss, uint64(0))
}
