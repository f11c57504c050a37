package service

import (
	"context"
	"errors"
	"time"

	"golang-finance/config"
	"golang-finance/internal/dto"
	"golang-finance/internal/repository"
	"golang-finance/pkg/logger"
	"golang-finance/pkg/utils"
)

const (
	demoDelayMin = 500 * time.Millisecond
	demoDelayMax = 1500 * time.Millisecond
)

// AnalysisGenerator produces one validated analysis. The returned prompt is
// empty on the demo path.
type AnalysisGenerator interface {
	Generate(ctx context.Context, market, ticker, timeframe string) (*dto.StockAnalysis, string, error)
}

type analysisGenerator struct {
	cfg    *config.Config
	log    *logger.Logger
	aiRepo repository.AIRepository

	demoMode     bool
	demoDelayMin time.Duration
	demoDelayMax time.Duration
}

func NewAnalysisGenerator(cfg *config.Config, log *logger.Logger, aiRepo repository.AIRepository) AnalysisGenerator {
	return &analysisGenerator{
		cfg:          cfg,
		log:          log,
		aiRepo:       aiRepo,
		demoMode:     cfg.DemoMode(),
		demoDelayMin: demoDelayMin,
		demoDelayMax: demoDelayMax,
	}
}

func (g *analysisGenerator) Generate(ctx context.Context, market, ticker, timeframe string) (*dto.StockAnalysis, string, error) {
	if g.demoMode {
		return g.generateDemo(ctx, market, ticker, timeframe)
	}

	analysisDate := time.Now().Format("2006-01-02")
	prompt := buildAnalysisPrompt(ticker, market, timeframe, analysisDate)

	var lastErr error
	for attempt := 1; attempt <= g.cfg.Analysis.MaxAttempts; attempt++ {
		if attempt > 1 {
			// Linear backoff: wait (failed attempt) * base before retrying.
			wait := time.Duration(attempt-1) * g.cfg.Analysis.RetryBaseDelay
			select {
			case <-ctx.Done():
				return nil, prompt, &GenerationError{Kind: GenerationExhausted, Err: ctx.Err()}
			case <-time.After(wait):
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, g.cfg.Gemini.Timeout)
		rawText, err := g.aiRepo.Complete(attemptCtx, prompt, g.cfg.Gemini.MaxOutputTokens)
		cancel()
		if err != nil {
			lastErr = err
			g.log.WarnContext(ctx, "Analysis generation attempt failed",
				logger.StringField("ticker", ticker),
				logger.IntField("attempt", attempt),
				logger.ErrorField(err),
			)
			continue
		}

		analysis, err := ValidateAnalysis(rawText)
		if err != nil {
			var validationErr *ValidationError
			if errors.As(err, &validationErr) && !validationErr.Retryable() {
				// The payload parsed but its content is wrong: another
				// attempt would hit the same prompt/model mismatch.
				g.log.ErrorContext(ctx, "Model returned a semantically invalid analysis",
					logger.StringField("ticker", ticker),
					logger.ErrorField(err),
				)
				return nil, prompt, &GenerationError{Kind: GenerationInvalidResponse, Err: err}
			}
			lastErr = err
			g.log.WarnContext(ctx, "Analysis response could not be parsed",
				logger.StringField("ticker", ticker),
				logger.IntField("attempt", attempt),
				logger.ErrorField(err),
			)
			continue
		}

		return analysis, prompt, nil
	}

	return nil, prompt, &GenerationError{Kind: GenerationExhausted, Err: lastErr}
}

// generateDemo delegates to the mock generator after an artificial delay so
// UI loading states behave the same in both operating modes.
func (g *analysisGenerator) generateDemo(ctx context.Context, market, ticker, timeframe string) (*dto.StockAnalysis, string, error) {
	delay := utils.RandomDuration(g.demoDelayMin, g.demoDelayMax)
	select {
	case <-ctx.Done():
		return nil, "", &GenerationError{Kind: GenerationExhausted, Err: ctx.Err()}
	case <-time.After(delay):
	}

	return GenerateMockAnalysis(ticker, market, timeframe), "", nil
}
