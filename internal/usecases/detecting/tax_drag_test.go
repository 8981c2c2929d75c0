package detecting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

func TestDetectTaxDrag(t *testing.T) {
	date := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		transactions []domain.Transaction
		validate     func(t *testing.T, candidates []domain.InsightCandidate)
	}{
		{
			name: "Taxa efetiva logo abaixo do limiar - não deve qualificar",
			transactions: []domain.Transaction{
				// 112 / 1247 = 8.98%
				makeTx("e1", "Electronics Store", date, 1247.00, 112.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Taxa efetiva logo acima do limiar - severidade 1",
			transactions: []domain.Transaction{
				// 115 / 1247 = 9.22%: floor((0.0922 - 0.08) * 100) = 1
				makeTx("e1", "Electronics Store", date, 1247.00, 115.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, domain.InsightTypeTaxDrag, candidates[0].Type)
				assert.Equal(t, 1, candidates[0].SeverityScore)
			},
		},
		{
			name: "Taxa acumulada por estabelecimento, não por transação",
			transactions: []domain.Transaction{
				// Individualmente abaixo do gasto mínimo; somadas: 130/1300 = 10%
				makeTx("e1", "Electronics Store", date, 650.00, 65.00),
				makeTx("e2", "Electronics Store", date.AddDate(0, 0, 5), 650.00, 65.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Len(t, candidates[0].SupportingTransactionIDs, 2)
				assert.Equal(t, 2, candidates[0].SeverityScore)
			},
		},
		{
			name: "Gasto abaixo do mínimo - não deve qualificar mesmo com taxa alta",
			transactions: []domain.Transaction{
				makeTx("e1", "Corner Store", date, 50.00, 10.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Gasto total zero não divide por zero",
			transactions: []domain.Transaction{
				makeTx("e1", "Refund Store", date, 0, 5.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Taxa muito alta satura a severidade em 10",
			transactions: []domain.Transaction{
				// 300 / 1000 = 30%: floor((0.30 - 0.08) * 100) = 22, clamp 10
				makeTx("e1", "Import Store", date, 1000.00, 300.00),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, domain.SeverityMax, candidates[0].SeverityScore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, DetectTaxDrag(tt.transactions, defaultDetectorConfig()))
		})
	}
}

func TestDetectTaxDragThresholds(t *testing.T) {
	date := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	candidates := DetectTaxDrag([]domain.Transaction{
		makeTx("e1", "Electronics Store", date, 1000.00, 100.00),
	}, defaultDetectorConfig())

	assert.Len(t, candidates, 1)
	byName := map[string]domain.ThresholdCheck{}
	for _, check := range candidates[0].Explanation.Thresholds {
		byName[check.Name] = check
	}
	assert.InDelta(t, 0.10, byName["effective_rate"].Actual, 1e-9)
	assert.Equal(t, 0.09, byName["effective_rate"].Threshold)
	assert.InDelta(t, 1000.0, byName["total_spend"].Actual, 1e-9)
	assert.Equal(t, 100.0, byName["total_spend"].Threshold)
}
