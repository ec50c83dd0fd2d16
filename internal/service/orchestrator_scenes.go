package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/filmforge/filmforge/internal/core"
	"github.com/filmforge/filmforge/internal/domain/model"
	"github.com/filmforge/filmforge/internal/parse"
)

// runSceneBatches drives a scene_batch job: split the remaining ordinals into
// fixed-size batches, invoke the LLM once per batch, parse, and persist. Each
// persisted batch is a checkpoint a re-run will skip over.
func (o *BatchOrchestrator) runSceneBatches(
	ctx context.Context,
	job *model.Job,
	logger *slog.Logger,
) (runResult, error) {
	var res runResult

	var payload model.SceneBatchPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return res, core.Fatal(fmt.Errorf("decode scene batch payload: %w", err))
	}

	existing, err := o.scenes.CountForProject(ctx, job.ProjectID)
	if err != nil {
		return res, fmt.Errorf("count existing scenes: %w", err)
	}
	if existing > 0 {
		logger.InfoContext(ctx, "resuming scene generation", "existing_scenes", existing)
	}

	batches := sceneBatchRanges(existing, job.TargetUnits, payload.OnlyUnits, o.cfg.SceneBatchSize)
	if len(batches) == 0 {
		o.reportProgress(ctx, job, job.TargetUnits, 0, 0, logger)
		return res, nil
	}

	persisted := existing
	for i, batch := range batches {
		if err := o.checkCancelled(ctx, job.ID, logger); err != nil {
			return res, err
		}
		if i > 0 {
			if err := sleep(ctx, o.cfg.InterBatchDelay); err != nil {
				return res, err
			}
		}

		drafts, ownKey, err := o.generateSceneBatch(ctx, job, payload, batch, logger)
		if err != nil {
			return res, err
		}
		res.ownCredential = res.ownCredential || ownKey

		inserted, err := o.persistSceneBatch(ctx, job.ProjectID, batch, drafts, logger)
		if err != nil {
			return res, err
		}
		res.completed += inserted
		persisted += inserted
		o.reportProgress(ctx, job, persisted, inserted, 0, logger)
		logger.InfoContext(ctx, "scene batch persisted",
			"batch", fmt.Sprintf("%d-%d", batch[0], batch[len(batch)-1]),
			"inserted", inserted,
		)
	}

	return res, nil
}

// generateSceneBatch resolves the text provider and invokes it for one batch,
// retrying batch-retryable failures up to the configured budget.
func (o *BatchOrchestrator) generateSceneBatch(
	ctx context.Context,
	job *model.Job,
	payload model.SceneBatchPayload,
	batch []int,
	logger *slog.Logger,
) ([]model.SceneDraft, bool, error) {
	var lastErr error
	ownKey := false

	for attempt := 0; attempt <= o.cfg.BatchRetries; attempt++ {
		if attempt > 0 {
			logger.WarnContext(ctx, "retrying scene batch",
				"attempt", attempt, "error", lastErr)
			if err := sleep(ctx, o.cfg.InterBatchDelay); err != nil {
				return nil, ownKey, err
			}
		}

		cfg, err := o.resolver.Resolve(ctx, core.ResolveRequest{
			UserID:    job.UserID,
			ProjectID: job.ProjectID,
			Type:      model.GenerationTypeText,
		})
		if err != nil {
			return nil, ownKey, err
		}
		ownKey = ownKey || cfg.OwnCredential

		prompt, err := o.buildScenePrompt(ctx, job.ProjectID, payload, batch)
		if err != nil {
			return nil, ownKey, err
		}

		result, err := o.text.GenerateText(ctx, cfg, core.TextRequest{
			Messages: []core.ChatMessage{
				{Role: "system", Content: sceneSystemPrompt},
				{Role: "user", Content: prompt},
			},
			MaxTokens: o.cfg.MaxTokens,
		})
		if err != nil {
			if core.IsFatal(err) || ctx.Err() != nil {
				return nil, ownKey, err
			}
			lastErr = err
			continue
		}

		drafts, err := parse.SceneArray(result.Text)
		if err == nil {
			err = parse.ValidateBatch(drafts, len(batch))
		}
		if err != nil {
			lastErr = core.BatchWrap("scene batch response", err)
			continue
		}
		return drafts, ownKey, nil
	}

	return nil, ownKey, fmt.Errorf("scene batch exhausted %d retries: %w", o.cfg.BatchRetries, lastErr)
}

// persistSceneBatch writes the batch's drafts under their assigned ordinals,
// skipping any ordinal that already exists.
func (o *BatchOrchestrator) persistSceneBatch(
	ctx context.Context,
	projectID string,
	batch []int,
	drafts []model.SceneDraft,
	logger *slog.Logger,
) (int, error) {
	inserted := 0
	for i, number := range batch {
		draft := drafts[i]
		draft.SceneNumber = number
		if err := draft.Validate(); err != nil {
			return inserted, core.BatchWrap("invalid scene draft", err)
		}
		ok, err := o.scenes.InsertIfAbsent(ctx, projectID, &draft)
		if err != nil {
			return inserted, fmt.Errorf("persist scene %d: %w", number, err)
		}
		if !ok {
			logger.DebugContext(ctx, "scene already exists, skipping", "scene_number", number)
			continue
		}
		inserted++
	}
	return inserted, nil
}

const sceneSystemPrompt = "You are a film scene writer. Respond with a JSON array only. " +
	"Each element must be an object with keys \"scene_number\", \"title\", " +
	"\"description\", and \"image_prompt\". No prose outside the array."

// buildScenePrompt composes the batch request, embedding a compact summary of
// previously generated scenes so narrative continuity survives batch
// boundaries.
func (o *BatchOrchestrator) buildScenePrompt(
	ctx context.Context,
	projectID string,
	payload model.SceneBatchPayload,
	batch []int,
) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Story outline:\n%s\n", payload.StoryOutline)
	if len(payload.Characters) > 0 {
		fmt.Fprintf(&b, "\nCharacters: %s\n", strings.Join(payload.Characters, ", "))
	}
	if payload.Style != "" {
		fmt.Fprintf(&b, "\nVisual style: %s\n", payload.Style)
	}

	prior, err := o.scenes.ListForProject(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("list prior scenes: %w", err)
	}
	if summary := summarizeScenes(prior); summary != "" {
		fmt.Fprintf(&b, "\nScenes written so far:\n%s", summary)
	}

	fmt.Fprintf(&b, "\nWrite scenes %d through %d (%d scenes), continuing the story.\n",
		batch[0], batch[len(batch)-1], len(batch))
	b.WriteString("Return only the JSON array.")
	return b.String(), nil
}

// summaryScenes is how many trailing scenes the continuity summary keeps in
// full; older scenes are reduced to titles.
const summaryScenes = 5

func summarizeScenes(scenes []*model.Scene) string {
	if len(scenes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, s := range scenes {
		if len(scenes)-i > summaryScenes {
			fmt.Fprintf(&b, "%d. %s\n", s.SceneNumber, s.Title)
			continue
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", s.SceneNumber, s.Title, truncate(s.Description, 200))
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sceneBatchRanges partitions the ordinals still to generate into batches of
// at most batchSize. With onlyUnits set, generation is scoped to those
// ordinals; otherwise the range resumes after the existing count.
func sceneBatchRanges(existing, target int, onlyUnits []int, batchSize int) [][]int {
	var units []int
	if len(onlyUnits) > 0 {
		for _, n := range onlyUnits {
			if n >= 1 && n <= target {
				units = append(units, n)
			}
		}
	} else {
		for n := existing + 1; n <= target; n++ {
			units = append(units, n)
		}
	}
	return chunkInts(units, batchSize)
}

func chunkInts(units []int, size int) [][]int {
	if size <= 0 || len(units) == 0 {
		return nil
	}
	var out [][]int
	for len(units) > 0 {
		n := size
		if n > len(units) {
			n = len(units)
		}
		out = append(out, units[:n])
		units = units[n:]
	}
	return out
}
