package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/utils"
)

// TokenSweeper periodically hard-deletes expired token rows so revoked
// and stale sessions do not pile up in the database.
type TokenSweeper struct {
	tokenRepo repos.UserTokenRepo
	log       *logger.Logger
	schedule  string
}

func NewTokenSweeper(tokenRepo repos.UserTokenRepo, log *logger.Logger) *TokenSweeper {
	return &TokenSweeper{
		tokenRepo: tokenRepo,
		log:       log,
		schedule:  utils.GetEnv("TOKEN_SWEEP_SCHEDULE", "@hourly", log),
	}
}

func (ts *TokenSweeper) Start(ctx context.Context) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(ts.schedule, func() {
		ts.sweep(ctx)
	})
	if err != nil {
		ts.log.Error("Failed to register token sweep job", "error", err)
		return nil, err
	}
	c.Start()
	ts.log.Info("Token sweeper started", "schedule", ts.schedule)
	return c, nil
}

func (ts *TokenSweeper) sweep(ctx context.Context) {
	removed, err := ts.tokenRepo.FullDeleteExpired(ctx, nil, time.Now())
	if err != nil {
		ts.log.Error("Token sweep failed", "error", err)
		return
	}
	if removed > 0 {
		ts.log.Info("Swept expired tokens", "removed", removed)
	}
}
