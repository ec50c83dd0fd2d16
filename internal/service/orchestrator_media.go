package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
)

// runImageBatches drives an image_batch job: scenes without an image are the
// remaining work units, processed in fixed-size waves with bounded fan-out.
func (o *BatchOrchestrator) runImageBatches(
	ctx context.Context,
	job *model.Job,
	logger *slog.Logger,
) (runResult, error) {
	var res runResult

	var payload model.ImageBatchPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return res, core.Fatal(fmt.Errorf("decode image batch payload: %w", err))
	}

	missing, err := o.scenes.ListMissingImages(ctx, job.ProjectID)
	if err != nil {
		return res, fmt.Errorf("list scenes missing images: %w", err)
	}
	units := filterScenes(missing, payload.OnlyUnits)
	persisted := job.TargetUnits - len(units)
	if persisted < 0 {
		persisted = 0
	}
	if persisted > 0 {
		logger.InfoContext(ctx, "resuming image generation",
			"existing_images", persisted, "remaining", len(units))
	}
	if len(units) == 0 {
		o.reportProgress(ctx, job, job.TargetUnits, 0, 0, logger)
		return res, nil
	}

	for _, wave := range chunkScenes(units, o.cfg.MediaBatchSize) {
		if err := o.checkCancelled(ctx, job.ID, logger); err != nil {
			return res, err
		}

		cfg, err := o.resolver.Resolve(ctx, core.ResolveRequest{
			UserID:    job.UserID,
			ProjectID: job.ProjectID,
			Type:      model.GenerationTypeImage,
		})
		if err != nil {
			return res, err
		}
		res.ownCredential = res.ownCredential || cfg.OwnCredential

		outcomes := o.fanOutMedia(ctx, fanOutParams{
			Provider: cfg,
			Scenes:   wave,
			Kind:     "image",
			Build: func(s *model.Scene) core.MediaRequest {
				return core.MediaRequest{
					Prompt:             imagePromptFor(s),
					AspectRatio:        payload.AspectRatio,
					ReferenceImageURLs: payload.ReferenceAssetURLs,
				}
			},
			Apply: func(ctx context.Context, s *model.Scene, url string) error {
				_, err := o.scenes.SetImageURL(ctx, core.SetSceneAssetParams{
					ProjectID:   job.ProjectID,
					SceneNumber: s.SceneNumber,
					URL:         url,
				})
				return err
			},
			Logger: logger,
		})

		completed, failed, fatal := o.collectOutcomes(outcomes, &res)
		persisted += completed
		o.reportProgress(ctx, job, persisted, completed, failed, logger)
		logger.InfoContext(ctx, "image wave finished",
			"completed", completed, "failed", failed)
		if fatal != nil {
			return res, fatal
		}
	}

	return res, nil
}

// runVideo drives a video job: one scene, one clip.
func (o *BatchOrchestrator) runVideo(
	ctx context.Context,
	job *model.Job,
	logger *slog.Logger,
) (runResult, error) {
	var res runResult

	var payload model.VideoPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return res, core.Fatal(fmt.Errorf("decode video payload: %w", err))
	}

	scene, err := o.scenes.GetByNumber(ctx, job.ProjectID, payload.SceneNumber)
	if err != nil {
		return res, core.Fatal(fmt.Errorf("scene %d: %w", payload.SceneNumber, err))
	}
	if scene.VideoURL != nil && *scene.VideoURL != "" {
		logger.InfoContext(ctx, "scene already has a video, nothing to do",
			"scene_number", scene.SceneNumber)
		o.reportProgress(ctx, job, job.TargetUnits, 0, 0, logger)
		return res, nil
	}

	if err := o.checkCancelled(ctx, job.ID, logger); err != nil {
		return res, err
	}

	cfg, err := o.resolver.Resolve(ctx, core.ResolveRequest{
		UserID:    job.UserID,
		ProjectID: job.ProjectID,
		Type:      model.GenerationTypeVideo,
	})
	if err != nil {
		return res, err
	}
	res.ownCredential = cfg.OwnCredential

	var refs []string
	if scene.ImageURL != nil && *scene.ImageURL != "" {
		refs = append(refs, *scene.ImageURL)
	}
	outcomes := o.fanOutMedia(ctx, fanOutParams{
		Provider: cfg,
		Scenes:   []*model.Scene{scene},
		Kind:     "video",
		Build: func(s *model.Scene) core.MediaRequest {
			return core.MediaRequest{
				Prompt:             s.Description,
				AspectRatio:        payload.AspectRatio,
				DurationSec:        payload.DurationSec,
				ReferenceImageURLs: refs,
			}
		},
		Apply: func(ctx context.Context, s *model.Scene, url string) error {
			_, err := o.scenes.SetVideoURL(ctx, core.SetSceneAssetParams{
				ProjectID:   job.ProjectID,
				SceneNumber: s.SceneNumber,
				URL:         url,
			})
			return err
		},
		Logger: logger,
	})

	completed, failed, fatal := o.collectOutcomes(outcomes, &res)
	o.reportProgress(ctx, job, completed, completed, failed, logger)
	return res, fatal
}

// fanOutParams groups parameters for one bounded-concurrency media wave.
type fanOutParams struct {
	Provider model.ProviderConfig
	Scenes   []*model.Scene
	Kind     string
	// Build composes the provider request for one unit.
	Build func(*model.Scene) core.MediaRequest
	// Apply attaches the durable asset URL to the unit's persisted row.
	Apply  func(context.Context, *model.Scene, string) error
	Logger *slog.Logger
}

// fanOutMedia runs up to MediaConcurrency unit generations concurrently. One
// unit's failure never cancels its siblings; each outcome is recorded
// individually. Launches are staggered by InterUnitDelay for provider rate
// limits.
func (o *BatchOrchestrator) fanOutMedia(ctx context.Context, p fanOutParams) []model.UnitOutcome {
	sem := semaphore.NewWeighted(int64(o.cfg.MediaConcurrency))
	outcomes := make([]model.UnitOutcome, len(p.Scenes))
	var wg sync.WaitGroup

	for i, scene := range p.Scenes {
		if i > 0 {
			if err := sleep(ctx, o.cfg.InterUnitDelay); err != nil {
				outcomes[i] = model.UnitOutcome{UnitNumber: scene.SceneNumber, Err: err}
				continue
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			outcomes[i] = model.UnitOutcome{UnitNumber: scene.SceneNumber, Err: err}
			continue
		}
		wg.Add(1)
		go func(i int, scene *model.Scene) {
			defer wg.Done()
			defer sem.Release(1)
			outcomes[i] = model.UnitOutcome{
				UnitNumber: scene.SceneNumber,
				Err:        o.generateUnit(ctx, p, scene),
			}
		}(i, scene)
	}

	wg.Wait()
	return outcomes
}

// generateUnit produces one media unit: invoke the provider, copy the payload
// into durable storage, attach the durable URL to the scene row.
func (o *BatchOrchestrator) generateUnit(
	ctx context.Context,
	p fanOutParams,
	scene *model.Scene,
) error {
	result, err := o.media.GenerateMedia(ctx, p.Provider, p.Build(scene))
	if err != nil {
		return stampUnitNumber(err, scene.SceneNumber)
	}
	url, err := o.persister.Persist(ctx, scene.ProjectID, p.Kind, result)
	if err != nil {
		return err
	}
	if err := p.Apply(ctx, scene, url); err != nil {
		return fmt.Errorf("attach %s to scene %d: %w", p.Kind, scene.SceneNumber, err)
	}
	p.Logger.DebugContext(ctx, "unit generated",
		"kind", p.Kind, "scene_number", scene.SceneNumber, "provider", result.Provider)
	return nil
}

// collectOutcomes folds a wave's outcomes into the run result. It returns the
// first fatal error, which aborts the remaining waves.
func (o *BatchOrchestrator) collectOutcomes(
	outcomes []model.UnitOutcome,
	res *runResult,
) (completed, failed int, fatal error) {
	for _, out := range outcomes {
		if out.Err == nil {
			completed++
			continue
		}
		failed++
		res.unitErrs = append(res.unitErrs, unitErrString(out))
		if fatal == nil && core.IsFatal(out.Err) {
			fatal = out.Err
		}
	}
	res.completed += completed
	res.failed += failed
	return completed, failed, fatal
}

// stampUnitNumber fills in the unit number on a provider-produced UnitError so
// the aggregated error detail names which unit failed.
func stampUnitNumber(err error, unitNumber int) error {
	var ue *core.UnitError
	if errors.As(err, &ue) && ue.UnitNumber == 0 {
		ue.UnitNumber = unitNumber
	}
	return err
}

func unitErrString(out model.UnitOutcome) string {
	var ue *core.UnitError
	if errors.As(out.Err, &ue) {
		return ue.Error()
	}
	return fmt.Sprintf("unit %d: %v", out.UnitNumber, out.Err)
}

func imagePromptFor(s *model.Scene) string {
	if s.ImagePrompt != "" {
		return s.ImagePrompt
	}
	return s.Description
}

func filterScenes(scenes []*model.Scene, onlyUnits []int) []*model.Scene {
	if len(onlyUnits) == 0 {
		return scenes
	}
	wanted := make(map[int]bool, len(onlyUnits))
	for _, n := range onlyUnits {
		wanted[n] = true
	}
	var out []*model.Scene
	for _, s := range scenes {
		if wanted[s.SceneNumber] {
			out = append(out, s)
		}
	}
	return out
}

func chunkScenes(scenes []*model.Scene, size int) [][]*model.Scene {
	if size <= 0 || len(scenes) == 0 {
		return nil
	}
	var out [][]*model.Scene
	for len(scenes) > 0 {
		n := size
		if n > len(scenes) {
			n = len(scenes)
		}
		out = append(out, scenes[:n])
		scenes = scenes[n:]
	}
	return out
}
