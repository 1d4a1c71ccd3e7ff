package dermatology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysis_AdvanceCapsAtFull(t *testing.T) {
	a := &Analysis{Status: StatusAnalyzing, Progress: 90}

	done, err := a.Advance(17)
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, FullProgress, a.Progress)
}

func TestAnalysis_AdvanceAfterCancel(t *testing.T) {
	a := &Analysis{Status: StatusAnalyzing}
	require.NoError(t, a.Cancel(time.Now()))

	_, err := a.Advance(10)
	assert.ErrorIs(t, err, ErrAnalysisFinished)
	assert.ErrorIs(t, a.Complete(Finding{}, time.Now()), ErrAnalysisFinished)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("image/png"))
	assert.True(t, IsImage(" Image/JPEG"))
	assert.False(t, IsImage("application/pdf"))
	assert.False(t, IsImage(""))
}
