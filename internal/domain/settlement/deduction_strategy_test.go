package settlement

import (
	"testing"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdvance(t *testing.T, number string, date time.Time, amount string) AdvanceCheque {
	t.Helper()
	a, err := NewAdvanceCheque(number, uuid.MustParse("6f1c2e1e-3a55-4a7a-9d57-6e0c1b9b1a01"), "G1", "Grower 1", date, dec(amount), "clerk")
	require.NoError(t, err)
	return *a
}

func TestFIFOAdvanceDeductionStrategy(t *testing.T) {
	older := newAdvance(t, "ADV-100", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "500")
	newer := newAdvance(t, "ADV-101", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), "300")
	strategy := NewFIFOAdvanceDeductionStrategy()

	t.Run("recovers oldest advance first", func(t *testing.T) {
		plan, err := strategy.Allocate(dec("650"), []AdvanceCheque{newer, older})
		require.NoError(t, err)

		require.Len(t, plan.Effects, 2)
		assert.Equal(t, older.ID, plan.Effects[0].AdvanceID)
		assert.True(t, plan.Effects[0].Applied.Equal(dec("500")))
		assert.True(t, plan.Effects[0].NewBalance.IsZero())
		assert.Equal(t, newer.ID, plan.Effects[1].AdvanceID)
		assert.True(t, plan.Effects[1].Applied.Equal(dec("150")))
		assert.True(t, plan.Effects[1].NewBalance.Equal(dec("150")))
		assert.True(t, plan.Remainder.IsZero())
		assert.True(t, plan.TotalApplied.Equal(dec("650")))

		net := dec("1000").Sub(plan.TotalApplied)
		assert.True(t, net.Equal(dec("350")))
	})

	t.Run("zero deduction yields no effects", func(t *testing.T) {
		plan, err := strategy.Allocate(decimal.Zero, []AdvanceCheque{older, newer})
		require.NoError(t, err)
		assert.Empty(t, plan.Effects)
		assert.True(t, plan.Remainder.IsZero())
	})

	t.Run("negative deduction is a validation error", func(t *testing.T) {
		_, err := strategy.Allocate(dec("-1"), []AdvanceCheque{older})
		assert.True(t, shared.IsCode(err, shared.CodeValidation))
	})

	t.Run("excess deduction is reported as remainder", func(t *testing.T) {
		plan, err := strategy.Allocate(dec("1000"), []AdvanceCheque{older, newer})
		require.NoError(t, err)
		assert.True(t, plan.TotalApplied.Equal(dec("800")))
		assert.True(t, plan.Remainder.Equal(dec("200")))
		assert.True(t, plan.HasRemainder())
	})

	t.Run("applied sum equals min of deduction and outstanding", func(t *testing.T) {
		for _, d := range []string{"0", "0.01", "499.99", "500", "500.01", "800", "800.01", "12345.67"} {
			plan, err := strategy.Allocate(dec(d), []AdvanceCheque{older, newer})
			require.NoError(t, err)
			sum := decimal.Zero
			for _, e := range plan.Effects {
				sum = sum.Add(e.Applied)
			}
			assert.True(t, sum.Equal(decimal.Min(dec(d), dec("800"))), "deduction %s", d)
			assert.True(t, sum.Add(plan.Remainder).Equal(dec(d)), "deduction %s", d)
		}
	})

	t.Run("replay against unchanged advances is identical", func(t *testing.T) {
		advances := []AdvanceCheque{newer, older}
		first, err := strategy.Allocate(dec("650"), advances)
		require.NoError(t, err)
		second, err := strategy.Allocate(dec("650"), advances)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, advances[0].CurrentAdvanceAmount.Equal(dec("300")), "inputs are not mutated")
	})

	t.Run("ties on date fall back to cheque number", func(t *testing.T) {
		day := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
		b := newAdvance(t, "ADV-200", day, "100")
		a := newAdvance(t, "ADV-199", day, "100")
		plan, err := strategy.Allocate(dec("50"), []AdvanceCheque{b, a})
		require.NoError(t, err)
		require.Len(t, plan.Effects, 1)
		assert.Equal(t, "ADV-199", plan.Effects[0].ChequeNumber)
	})

	t.Run("skips fully recovered and voided advances", func(t *testing.T) {
		spent := newAdvance(t, "ADV-050", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "100")
		spent.CurrentAdvanceAmount = decimal.Zero
		spent.Status = AdvanceStatusFullyDeducted
		voided := newAdvance(t, "ADV-051", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "100")
		require.NoError(t, voided.Void("issued in error", "u"))

		plan, err := strategy.Allocate(dec("100"), []AdvanceCheque{spent, voided, older})
		require.NoError(t, err)
		require.Len(t, plan.Effects, 1)
		assert.Equal(t, older.ID, plan.Effects[0].AdvanceID)
	})
}

func TestAdvanceCheque_ApplyAndReverse(t *testing.T) {
	adv := newAdvance(t, "ADV-100", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "500")
	plan, err := NewFIFOAdvanceDeductionStrategy().Allocate(dec("200"), []AdvanceCheque{adv})
	require.NoError(t, err)

	require.NoError(t, adv.ApplyDeduction(plan.Effects[0]))
	assert.True(t, adv.CurrentAdvanceAmount.Equal(dec("300")))
	assert.Equal(t, AdvanceStatusPartiallyDeducted, adv.Status)
	assert.True(t, adv.RecoveredAmount().Equal(dec("200")))

	err = adv.ApplyDeduction(plan.Effects[0])
	assert.True(t, shared.IsCode(err, shared.CodeConcurrentModification), "stale plan must not be applied twice")

	require.NoError(t, adv.ReverseDeduction(dec("200")))
	assert.True(t, adv.CurrentAdvanceAmount.Equal(dec("500")))
	assert.Equal(t, AdvanceStatusActive, adv.Status)

	err = adv.ReverseDeduction(dec("0.01"))
	assert.True(t, shared.IsCode(err, shared.CodeValidation), "balance cannot exceed the original advance")
}

func TestAdvanceCheque_Void(t *testing.T) {
	adv := newAdvance(t, "ADV-100", time.Now(), "500")
	adv.CurrentAdvanceAmount = dec("400")
	err := adv.Void("wrong grower", "u")
	assert.True(t, shared.IsCode(err, shared.CodeInvalidStateTransition))

	fresh := newAdvance(t, "ADV-101", time.Now(), "500")
	require.NoError(t, fresh.Void("wrong grower", "u"))
	assert.False(t, fresh.IsOutstanding())
}

func TestNewAdvanceCheque_RejectsFractionsOfACent(t *testing.T) {
	_, err := NewAdvanceCheque("ADV-1", uuid.New(), "G1", "Grower 1", time.Now(), dec("250.125"), "clerk")
	require.Error(t, err)
	assert.True(t, shared.IsCode(err, shared.CodeValidation))

	a, err := NewAdvanceCheque("ADV-2", uuid.New(), "G1", "Grower 1", time.Now(), dec("250.120"), "clerk")
	require.NoError(t, err)
	assert.True(t, a.CurrentAdvanceAmount.Equal(dec("250.12")))
}
