package extract

import "context"

// Observer receives pipeline outcomes without influencing them.
// Implementations are called from the single processing path and must not
// block for long.
type Observer interface {
	TaskFinished(ctx context.Context, task Task, result TaskResult)
	LanguageMissing(ctx context.Context, videoFile, language string)
	FileProcessed(ctx context.Context, videoFile string, extracted int)
}

// Observers fans events out to each non-nil observer in order.
type Observers []Observer

func (o Observers) TaskFinished(ctx context.Context, task Task, result TaskResult) {
	for _, obs := range o {
		if obs != nil {
			obs.TaskFinished(ctx, task, result)
		}
	}
}

func (o Observers) LanguageMissing(ctx context.Context, videoFile, language string) {
	for _, obs := range o {
		if obs != nil {
			obs.LanguageMissing(ctx, videoFile, language)
		}
	}
}

func (o Observers) FileProcessed(ctx context.Context, videoFile string, extracted int) {
	for _, obs := range o {
		if obs != nil {
			obs.FileProcessed(ctx, videoFile, extracted)
		}
	}
}
