package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ChequeExpirer expires pending cheques whose date has passed
type ChequeExpirer interface {
	ExpireOverdueCheques(ctx context.Context) (int, error)
}

// ChequeSweepJob moves overdue PENDING cheques to EXPIRED
type ChequeSweepJob struct {
	expirer ChequeExpirer
	logger  *zap.Logger
}

// NewChequeSweepJob creates the sweep job
func NewChequeSweepJob(expirer ChequeExpirer, logger *zap.Logger) *ChequeSweepJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChequeSweepJob{expirer: expirer, logger: logger}
}

// Name implements Job
func (j *ChequeSweepJob) Name() string {
	return "cheque-sweep"
}

// Run implements Job
func (j *ChequeSweepJob) Run(ctx context.Context) error {
	expired, err := j.expirer.ExpireOverdueCheques(ctx)
	if err != nil {
		return fmt.Errorf("cheque sweep: %w", err)
	}
	if expired > 0 {
		j.logger.Info("Expired overdue cheques", zap.Int("count", expired))
	}
	return nil
}
