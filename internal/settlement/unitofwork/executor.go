package unitofwork

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

// Executor runs a multi-step mutation either inside a real database
// transaction or as plain sequential statements. The variant is chosen
// once at startup from configuration, never probed per request.
type Executor interface {
	Run(ctx context.Context, fn func(tx *gorm.DB) error) error
	Transactional() bool
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	DB() *gorm.DB
}

type txExecutor struct {
	runner txRunner
}

// NewTxExecutor returns the transactional variant; every Run is
// all-or-nothing.
func NewTxExecutor(runner txRunner) (Executor, error) {
	if runner == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &txExecutor{runner: runner}, nil
}

func (e *txExecutor) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return e.runner.WithTx(ctx, fn)
}

func (e *txExecutor) Transactional() bool {
	return true
}

type bestEffortExecutor struct {
	runner txRunner
	logg   *logger.Logger
}

// NewBestEffortExecutor returns the degraded variant for stores without
// multi-statement transactions. Steps run sequentially and a failure
// partway through leaves earlier steps applied.
func NewBestEffortExecutor(runner txRunner, logg *logger.Logger) (Executor, error) {
	if runner == nil {
		return nil, fmt.Errorf("db runner required")
	}
	return &bestEffortExecutor{runner: runner, logg: logg}, nil
}

func (e *bestEffortExecutor) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if err := fn(e.runner.DB()); err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, "best-effort settlement step failed; earlier steps are not rolled back")
		}
		return err
	}
	return nil
}

func (e *bestEffortExecutor) Transactional() bool {
	return false
}

// FromConfig selects the executor variant from the startup flag.
func FromConfig(transactions bool, runner txRunner, logg *logger.Logger) (Executor, error) {
	if transactions {
		return NewTxExecutor(runner)
	}
	if logg != nil {
		logg.Warn(context.Background(), "running settlement without transactions; partial application is possible on failure")
	}
	return NewBestEffortExecutor(runner, logg)
}
