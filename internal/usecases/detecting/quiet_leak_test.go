package detecting

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

func defaultDetectorConfig() config.Detector {
	return config.Detector{
		QuietLeakMinOccurrences: 3,
		QuietLeakMaxUnitAmount:  20,
		QuietLeakMinCumulative:  50,
		TaxDragMinEffectiveRate: 0.09,
		TaxDragMinSpend:         100,
		SpikeOutlierMultiplier:  2.0,
		SpikeMonthlyIncreasePct: 50,
		DuplicateWindowHours:    24,
	}
}

func makeTx(id, merchant string, date time.Time, total, tax float64) domain.Transaction {
	tx := domain.Transaction{
		ID:          id,
		UserID:      "user01",
		Date:        date,
		TotalAmount: decimal.NewFromFloat(total),
		TaxAmount:   decimal.NewFromFloat(tax),
		Type:        domain.TransactionTypeExpense,
	}
	if merchant != "" {
		tx.Merchant = &merchant
	}
	return tx
}

func repeatTx(idPrefix, merchant string, start time.Time, daysApart, count int, amount float64) []domain.Transaction {
	transactions := make([]domain.Transaction, 0, count)
	for i := 0; i < count; i++ {
		transactions = append(transactions, makeTx(
			idPrefix+string(rune('a'+i)),
			merchant,
			start.AddDate(0, 0, i*daysApart),
			amount,
			0,
		))
	}
	return transactions
}

func TestDetectQuietLeaks(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		transactions []domain.Transaction
		cfg          config.Detector
		validate     func(t *testing.T, candidates []domain.InsightCandidate)
	}{
		{
			name:         "Dez cobranças de $5.50 somam $55 - deve qualificar com severidade 2",
			transactions: repeatTx("cf", "Coffee Shop", start, 3, 10, 5.50),
			cfg:          defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, domain.InsightTypeQuietLeak, candidates[0].Type)
				assert.Equal(t, 2, candidates[0].SeverityScore)
				assert.Len(t, candidates[0].SupportingTransactionIDs, 10)
				assert.Contains(t, candidates[0].Title, "Coffee Shop")
			},
		},
		{
			name:         "Acumulado abaixo do mínimo - não deve qualificar",
			transactions: repeatTx("cf", "Coffee Shop", start, 3, 4, 5.50),
			cfg:          defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Uma cobrança acima do teto unitário desqualifica o grupo inteiro",
			transactions: append(
				repeatTx("cf", "Coffee Shop", start, 3, 9, 5.50),
				makeTx("cfbig", "Coffee Shop", start.AddDate(0, 0, 28), 25.00, 0),
			),
			cfg: defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name:         "Acumulado exatamente no mínimo ainda qualifica",
			transactions: repeatTx("cf", "Coffee Shop", start, 2, 10, 5.00),
			cfg:          defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, 2, candidates[0].SeverityScore)
			},
		},
		{
			name:         "Menos ocorrências que o mínimo - não deve qualificar",
			transactions: repeatTx("cf", "Coffee Shop", start, 3, 2, 30.00),
			cfg:          defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Variações de caixa e espaços caem no mesmo grupo",
			transactions: append(
				repeatTx("cfa", "Coffee Shop", start, 3, 5, 5.50),
				repeatTx("cfb", "  coffee shop ", start.AddDate(0, 0, 1), 3, 5, 5.50)...,
			),
			cfg: defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Len(t, candidates[0].SupportingTransactionIDs, 10)
			},
		},
		{
			name: "Fórmula pode produzir severidade 0 com limiares customizados",
			transactions: repeatTx("cf", "Coffee Shop", start, 3, 4, 5.50),
			cfg: func() config.Detector {
				cfg := defaultDetectorConfig()
				cfg.QuietLeakMinCumulative = 20
				return cfg
			}(),
			validate: func(t *testing.T, candidades []domain.InsightCandidate) {
				// 4 x $5.50 = $22: floor(22/25) = 0
				assert.Len(t, candidades, 1)
				assert.Equal(t, 0, candidades[0].SeverityScore)
			},
		},
		{
			name:         "Transações sem estabelecimento caem no bucket Unknown",
			transactions: repeatTx("nk", "", start, 3, 10, 5.50),
			cfg:          defaultDetectorConfig(),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Contains(t, candidates[0].Title, domain.UnknownMerchant)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, DetectQuietLeaks(tt.transactions, tt.cfg))
		})
	}
}

func TestDetectQuietLeaksExplanation(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	candidates := DetectQuietLeaks(repeatTx("cf", "Coffee Shop", start, 3, 10, 5.50), defaultDetectorConfig())

	assert.Len(t, candidates, 1)
	explanation := candidates[0].Explanation
	assert.NotEmpty(t, explanation.Reason)
	assert.NotEmpty(t, explanation.Suggestion)
	assert.Len(t, explanation.Thresholds, 3)

	byName := map[string]domain.ThresholdCheck{}
	for _, check := range explanation.Thresholds {
		byName[check.Name] = check
	}
	assert.Equal(t, 10.0, byName["occurrences"].Actual)
	assert.Equal(t, 3.0, byName["occurrences"].Threshold)
	assert.Equal(t, 5.50, byName["max_unit_amount"].Actual)
	assert.Equal(t, 20.0, byName["max_unit_amount"].Threshold)
	assert.InDelta(t, 55.0, byName["cumulative_total"].Actual, 1e-9)
	assert.Equal(t, 50.0, byName["cumulative_total"].Threshold)
}

func TestDetectQuietLeaksSupportingIDsOrderedByDate(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	transactions := []domain.Transaction{
		makeTx("late", "Coffee Shop", start.AddDate(0, 0, 20), 18.00, 0),
		makeTx("early", "Coffee Shop", start, 18.00, 0),
		makeTx("middle", "Coffee Shop", start.AddDate(0, 0, 10), 18.00, 0),
	}

	candidates := DetectQuietLeaks(transactions, defaultDetectorConfig())

	assert.Len(t, candidates, 1)
	assert.Equal(t, []string{"early", "middle", "late"}, candidates[0].SupportingTransactionIDs)
}
