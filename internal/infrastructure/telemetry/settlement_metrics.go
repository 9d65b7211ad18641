package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// SettlementMetrics records business counters for batches, distributions,
// advance deductions and cheques.
type SettlementMetrics struct {
	batchTransitions     *Counter
	distributionsCreated *Counter
	distributedAmount    *FloatCounter
	deductedAmount       *FloatCounter
	instrumentsGenerated *Counter
	instrumentFailures   *Counter
	chequesVoided        *Counter
	operationDuration    *Histogram
	logger               *zap.Logger
}

// NewSettlementMetrics registers the settlement instruments on meter.
func NewSettlementMetrics(meter metric.Meter, logger *zap.Logger) (*SettlementMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewSettlementMetrics: meter cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var err error
	m := &SettlementMetrics{logger: logger}
	if m.batchTransitions, err = NewCounter(meter, "settlement_batch_transitions_total", "Payment batch state transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.distributionsCreated, err = NewCounter(meter, "settlement_distributions_created_total", "Payment distributions created", "{distribution}"); err != nil {
		return nil, err
	}
	if m.distributedAmount, err = NewFloatCounter(meter, "settlement_distributed_amount_total", "Net amount distributed to growers", "CAD"); err != nil {
		return nil, err
	}
	if m.deductedAmount, err = NewFloatCounter(meter, "settlement_advance_deducted_total", "Advance amount recovered by deductions", "CAD"); err != nil {
		return nil, err
	}
	if m.instrumentsGenerated, err = NewCounter(meter, "settlement_instruments_generated_total", "Cheques and electronic payments generated", "{instrument}"); err != nil {
		return nil, err
	}
	if m.instrumentFailures, err = NewCounter(meter, "settlement_instrument_failures_total", "Distribution items that failed generation", "{item}"); err != nil {
		return nil, err
	}
	if m.chequesVoided, err = NewCounter(meter, "settlement_cheques_voided_total", "Cheques voided", "{cheque}"); err != nil {
		return nil, err
	}
	if m.operationDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "settlement_operation_duration_seconds",
		Description: "Duration of settlement service operations",
		Unit:        "s",
		Boundaries:  HTTPDurationBuckets,
	}); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordBatchTransition counts a batch entering status.
func (m *SettlementMetrics) RecordBatchTransition(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.batchTransitions.Inc(ctx, AttrBatchStatus.String(status))
}

// RecordDistributionCreated counts a distribution and its gross and deducted sums.
func (m *SettlementMetrics) RecordDistributionCreated(ctx context.Context, distributionType, method string, net, deducted decimal.Decimal) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrDistributionType.String(distributionType), AttrPaymentMethod.String(method)}
	m.distributionsCreated.Inc(ctx, attrs...)
	m.distributedAmount.Add(ctx, net.InexactFloat64(), attrs...)
	if deducted.IsPositive() {
		m.deductedAmount.Add(ctx, deducted.InexactFloat64(), attrs...)
	}
}

// RecordGeneration counts generated and failed items of one run.
func (m *SettlementMetrics) RecordGeneration(ctx context.Context, method string, generated, failed int) {
	if m == nil {
		return
	}
	if generated > 0 {
		m.instrumentsGenerated.Add(ctx, int64(generated), AttrPaymentMethod.String(method))
	}
	if failed > 0 {
		m.instrumentFailures.Add(ctx, int64(failed), AttrPaymentMethod.String(method))
		m.logger.Warn("Distribution items failed generation",
			zap.String("payment_method", method),
			zap.Int("failed", failed),
		)
	}
}

// RecordChequeVoided counts a voided cheque.
func (m *SettlementMetrics) RecordChequeVoided(ctx context.Context, reverseAccounting bool) {
	if m == nil {
		return
	}
	m.chequesVoided.Inc(ctx, AttrReverseAccount.Bool(reverseAccounting))
}

// ObserveOperation records how long a named operation took.
func (m *SettlementMetrics) ObserveOperation(ctx context.Context, operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operationDuration.RecordDuration(ctx, time.Since(started), AttrOperation.String(operation), AttrOutcome.String(outcome))
}
