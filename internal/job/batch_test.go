package job

import (
	"context"
	"errors"
	"testing"

	"archreport/internal/archive"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, dedupe(nil))
}

func TestRunBatch_RunsEachResourceOnce(t *testing.T) {
	h := newHarness(t)
	base := Params{ReportType: "itemList", ReportFormat: "csv"}

	jobs, err := h.run.RunBatch(context.Background(), base, []string{"alpha-fonds", "beta-fonds", "alpha-fonds"}, 4)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "alpha-fonds", jobs[0].Params.ResourceID)
	assert.Equal(t, "beta-fonds", jobs[1].Params.ResourceID)
	for _, j := range jobs {
		assert.Equal(t, StateCompleted, j.State)
	}
	assert.Len(t, h.exec.Events(), 4)
}

func TestRunBatch_FailureDoesNotStopOthers(t *testing.T) {
	h := newHarness(t)
	base := Params{ReportType: "fileList", ReportFormat: "html"}

	jobs, err := h.run.RunBatch(context.Background(), base, []string{"missing", "alpha-fonds"}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, archive.ErrInvalidParameter))
	require.Len(t, jobs, 2)
	assert.Equal(t, StateFailed, jobs[0].State)
	assert.Equal(t, StateCompleted, jobs[1].State)
	assert.Equal(t, "alpha-fonds-fileList.html", jobs[1].Output)
}
