package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/filmforge/filmforge/config"
	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/mocks"
)

// orchFixture wires a BatchOrchestrator over mocks with zero delays so tests
// run instantly.
type orchFixture struct {
	jobs      *mocks.MockJobRepository
	scenes    *mocks.MockSceneRepository
	resolver  *mocks.MockProviderResolver
	text      *mocks.MockTextInvoker
	media     *mocks.MockMediaInvoker
	ledger    *mocks.MockCreditLedger
	cancels   *mocks.MockCancelStore
	persister *fakePersister
	orch      *BatchOrchestrator
}

// fakePersister returns the provider URL with a durable prefix, or a canned
// error.
type fakePersister struct {
	err   error
	calls int
}

func (f *fakePersister) Persist(_ context.Context, _, _ string, result *model.GenerationResult) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "/assets/" + result.URL, nil
}

func newOrchFixture(t *testing.T, ctrl *gomock.Controller) *orchFixture {
	t.Helper()
	f := &orchFixture{
		jobs:      mocks.NewMockJobRepository(ctrl),
		scenes:    mocks.NewMockSceneRepository(ctrl),
		resolver:  mocks.NewMockProviderResolver(ctrl),
		text:      mocks.NewMockTextInvoker(ctrl),
		media:     mocks.NewMockMediaInvoker(ctrl),
		ledger:    mocks.NewMockCreditLedger(ctrl),
		cancels:   mocks.NewMockCancelStore(ctrl),
		persister: &fakePersister{},
	}
	credits := NewCreditService(CreditServiceOptions{
		Ledger: f.ledger,
		Costs:  config.CreditConfig{SceneUnitCost: 1, ImageUnitCost: 5, VideoUnitCost: 20},
	})
	f.orch = NewBatchOrchestrator(OrchestratorOptions{
		Jobs:      f.jobs,
		Scenes:    f.scenes,
		Resolver:  f.resolver,
		Text:      f.text,
		Media:     f.media,
		Persister: f.persister,
		Credits:   credits,
		Cancels:   f.cancels,
		Engine: config.EngineConfig{
			SceneBatchSize:   5,
			MediaBatchSize:   5,
			MediaConcurrency: 2,
			BatchRetries:     1,
			MaxTokens:        4000,
		},
	})
	return f
}

func sceneJob(target int) *model.Job {
	payload, _ := json.Marshal(model.SceneBatchPayload{StoryOutline: "a heist goes wrong"})
	return &model.Job{
		ID:          "job-1",
		ProjectID:   "proj-1",
		UserID:      "user-1",
		Kind:        model.JobKindSceneBatch,
		Status:      model.JobStatusPending,
		TargetUnits: target,
		Payload:     payload,
	}
}

func draftsJSON(numbers []int) string {
	out := "["
	for i, n := range numbers {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"scene_number":%d,"title":"Scene %d","description":"Something happens in scene %d.","image_prompt":"frame %d"}`, n, n, n, n)
	}
	return out + "]"
}

func textCfg() model.ProviderConfig {
	return model.ProviderConfig{Provider: "openai", Model: "gpt-4o", Protocol: model.ProtocolSync}
}

func TestOrchestrator_SceneBatch_FullSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(0, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(false, nil)
	f.resolver.EXPECT().Resolve(ctx, gomock.Any()).Return(textCfg(), nil)
	f.scenes.EXPECT().ListForProject(ctx, "proj-1").Return(nil, nil)
	f.text.EXPECT().GenerateText(ctx, gomock.Any(), gomock.Any()).
		Return(&model.GenerationResult{Text: draftsJSON([]int{1, 2, 3, 4, 5})}, nil)
	f.scenes.EXPECT().InsertIfAbsent(ctx, "proj-1", gomock.Any()).Return(true, nil).Times(5)
	f.jobs.EXPECT().UpdateProgress(ctx, core.UpdateProgressParams{
		JobID: job.ID, Progress: 100, CompletedDelta: 5, FailedDelta: 0,
	}).Return(nil)
	f.jobs.EXPECT().Finish(ctx, core.FinishJobParams{
		JobID: job.ID, Status: model.JobStatusCompleted,
	}).Return(nil)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)
	f.jobs.EXPECT().GetByID(ctx, job.ID).
		Return(&model.Job{ID: job.ID, CompletedUnits: 5}, nil)
	f.ledger.EXPECT().Charge(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req core.ChargeRequest) (bool, error) {
			assert.Equal(t, 5, req.Amount)
			assert.Equal(t, "scene_generation", req.Category)
			return true, nil
		},
	)

	require.NoError(t, f.orch.Run(ctx, job))
}

func TestOrchestrator_SceneBatch_ResumeSkipsFinishedWork(t *testing.T) {
	// All target scenes already exist and the prior run already charged; the
	// re-run converges without touching the provider, and the ledger's unique
	// key absorbs the repeated charge.
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(5, nil)
	f.jobs.EXPECT().UpdateProgress(ctx, core.UpdateProgressParams{
		JobID: job.ID, Progress: 100,
	}).Return(nil)
	f.jobs.EXPECT().Finish(ctx, core.FinishJobParams{
		JobID: job.ID, Status: model.JobStatusCompleted,
	}).Return(nil)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)
	f.jobs.EXPECT().GetByID(ctx, job.ID).
		Return(&model.Job{ID: job.ID, CompletedUnits: 5}, nil)
	f.ledger.EXPECT().Charge(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req core.ChargeRequest) (bool, error) {
			assert.Equal(t, 5, req.Amount)
			// Already recorded for this (job, category): the insert is a no-op.
			return false, nil
		},
	)

	require.NoError(t, f.orch.Run(ctx, job))
}

func TestOrchestrator_SceneBatch_ResumeGeneratesOnlyRemainder(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(3, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(false, nil)
	f.resolver.EXPECT().Resolve(ctx, gomock.Any()).Return(textCfg(), nil)
	f.scenes.EXPECT().ListForProject(ctx, "proj-1").Return([]*model.Scene{
		{SceneNumber: 1, Title: "A", Description: "d1"},
		{SceneNumber: 2, Title: "B", Description: "d2"},
		{SceneNumber: 3, Title: "C", Description: "d3"},
	}, nil)
	f.text.EXPECT().GenerateText(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ model.ProviderConfig, req core.TextRequest) (*model.GenerationResult, error) {
			require.Len(t, req.Messages, 2)
			assert.Contains(t, req.Messages[1].Content, "Write scenes 4 through 5")
			return &model.GenerationResult{Text: draftsJSON([]int{4, 5})}, nil
		},
	)
	inserted := []int{}
	f.scenes.EXPECT().InsertIfAbsent(ctx, "proj-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, draft *model.SceneDraft) (bool, error) {
			inserted = append(inserted, draft.SceneNumber)
			return true, nil
		},
	).Times(2)
	f.jobs.EXPECT().UpdateProgress(ctx, core.UpdateProgressParams{
		JobID: job.ID, Progress: 100, CompletedDelta: 2,
	}).Return(nil)
	f.jobs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)
	// The first run persisted scenes 1-3 and crashed before its charge step,
	// so the record's counter reads 5 after this run's checkpoint; the charge
	// must cover all five units, not just this run's two.
	f.jobs.EXPECT().GetByID(ctx, job.ID).
		Return(&model.Job{ID: job.ID, CompletedUnits: 5}, nil)
	f.ledger.EXPECT().Charge(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req core.ChargeRequest) (bool, error) {
			assert.Equal(t, 5, req.Amount)
			return true, nil
		},
	)

	require.NoError(t, f.orch.Run(ctx, job))
	assert.Equal(t, []int{4, 5}, inserted)
}

func TestOrchestrator_SceneBatch_UnderDeliveryExhaustsRetriesAndFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(0, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(false, nil)
	// BatchRetries is 1: initial attempt plus one retry.
	f.resolver.EXPECT().Resolve(ctx, gomock.Any()).Return(textCfg(), nil).Times(2)
	f.scenes.EXPECT().ListForProject(ctx, "proj-1").Return(nil, nil).Times(2)
	f.text.EXPECT().GenerateText(ctx, gomock.Any(), gomock.Any()).
		Return(&model.GenerationResult{Text: draftsJSON([]int{1, 2, 3})}, nil).Times(2)

	var gotStatus model.JobStatus
	var gotDetails string
	f.jobs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.FinishJobParams) error {
			gotStatus = params.Status
			gotDetails = params.ErrorDetails
			return nil
		},
	)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)
	// Nothing persisted: no insert, no progress write, no charge.

	require.NoError(t, f.orch.Run(ctx, job))
	assert.Equal(t, model.JobStatusFailed, gotStatus)
	assert.Contains(t, gotDetails, "exhausted 1 retries")
	assert.Contains(t, gotDetails, "under-delivered")
}

func TestOrchestrator_SceneBatch_FatalProviderErrorAbortsWithoutRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(0, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(false, nil)
	f.resolver.EXPECT().Resolve(ctx, gomock.Any()).Return(textCfg(), nil)
	f.scenes.EXPECT().ListForProject(ctx, "proj-1").Return(nil, nil)
	f.text.EXPECT().GenerateText(ctx, gomock.Any(), gomock.Any()).
		Return(nil, core.ErrInvalidCredential)

	var gotStatus model.JobStatus
	f.jobs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.FinishJobParams) error {
			gotStatus = params.Status
			return nil
		},
	)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)

	require.NoError(t, f.orch.Run(ctx, job))
	assert.Equal(t, model.JobStatusFailed, gotStatus)
}

func TestOrchestrator_SceneBatch_CancellationBetweenBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(0, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(true, nil)

	var gotStatus model.JobStatus
	f.jobs.EXPECT().Finish(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.FinishJobParams) error {
			gotStatus = params.Status
			return nil
		},
	)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)

	require.NoError(t, f.orch.Run(ctx, job))
	assert.Equal(t, model.JobStatusCancelled, gotStatus)
}

func TestOrchestrator_WorkerShutdownLeavesJobProcessing(t *testing.T) {
	// A context cancellation is worker shutdown, not job failure: the record
	// must stay in processing so the stale lease hands it to another worker.
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(5)

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").
		Return(0, fmt.Errorf("query: %w", context.Canceled))
	// No Finish, no Clear, no charge.

	err := f.orch.Run(ctx, job)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOrchestrator_OwnCredentialSuppressesCharge(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newOrchFixture(t, ctrl)
	ctx := context.Background()
	job := sceneJob(2)

	ownCfg := textCfg()
	ownCfg.OwnCredential = true

	f.jobs.EXPECT().MarkProcessing(ctx, job.ID).Return(nil)
	f.scenes.EXPECT().CountForProject(ctx, "proj-1").Return(0, nil)
	f.cancels.EXPECT().IsCancelRequested(ctx, job.ID).Return(false, nil)
	f.resolver.EXPECT().Resolve(ctx, gomock.Any()).Return(ownCfg, nil)
	f.scenes.EXPECT().ListForProject(ctx, "proj-1").Return(nil, nil)
	f.text.EXPECT().GenerateText(ctx, gomock.Any(), gomock.Any()).
		Return(&model.GenerationResult{Text: draftsJSON([]int{1, 2})}, nil)
	f.scenes.EXPECT().InsertIfAbsent(ctx, "proj-1", gomock.Any()).Return(true, nil).Times(2)
	f.jobs.EXPECT().UpdateProgress(ctx, gomock.Any()).Return(nil)
	f.jobs.EXPECT().Finish(ctx, gomock.Any()).Return(nil)
	f.cancels.EXPECT().Clear(ctx, job.ID).Return(nil)
	f.jobs.EXPECT().GetByID(ctx, job.ID).
		Return(&model.Job{ID: job.ID, CompletedUnits: 2}, nil)
	// Own credential: the ledger must never be touched.

	require.NoError(t, f.orch.Run(ctx, job))
}

func TestSceneBatchRanges(t *testing.T) {
	cases := []struct {
		name      string
		existing  int
		target    int
		onlyUnits []int
		size      int
		want      [][]int
	}{
		{"fresh start", 0, 5, nil, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"resume", 3, 5, nil, 5, [][]int{{4, 5}}},
		{"done", 5, 5, nil, 5, nil},
		{"only units", 0, 10, []int{2, 7}, 5, [][]int{{2, 7}}},
		{"only units out of range filtered", 0, 5, []int{3, 99, 0}, 5, [][]int{{3}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sceneBatchRanges(tc.existing, tc.target, tc.onlyUnits, tc.size))
		})
	}
}

func TestSummarizeScenes(t *testing.T) {
	scenes := make([]*model.Scene, 0, 8)
	for i := 1; i <= 8; i++ {
		scenes = append(scenes, &model.Scene{
			SceneNumber: i,
			Title:       fmt.Sprintf("Scene %d", i),
			Description: fmt.Sprintf("Description %d", i),
		})
	}
	summary := summarizeScenes(scenes)
	// Older scenes keep titles only; the trailing window keeps descriptions.
	assert.Contains(t, summary, "1. Scene 1\n")
	assert.NotContains(t, summary, "Description 1")
	assert.Contains(t, summary, "8. Scene 8: Description 8")
	assert.Empty(t, summarizeScenes(nil))
}
