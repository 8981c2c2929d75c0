package detecting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

func TestDetectOutlierSpikes(t *testing.T) {
	date := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		transactions []domain.Transaction
		validate     func(t *testing.T, candidates []domain.InsightCandidate)
	}{
		{
			name:         "Janela vazia não produz candidatos",
			transactions: nil,
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Média zero não divide por zero",
			transactions: []domain.Transaction{
				makeTx("z1", "Store", date, 0, 0),
				makeTx("z2", "Store", date, 0, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Transação acima do dobro da média qualifica",
			transactions: []domain.Transaction{
				// média = 150/5 = 30; corte = 60; 110/30 = 3.67x
				makeTx("s1", "Store", date, 10, 0),
				makeTx("s2", "Store", date, 10, 0),
				makeTx("s3", "Store", date, 10, 0),
				makeTx("s4", "Store", date, 10, 0),
				makeTx("big", "Electronics Store", date, 110, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, domain.InsightTypeSpike, candidates[0].Type)
				// floor((3.6667 - 1) * 2) = 5
				assert.Equal(t, 5, candidates[0].SeverityScore)
				assert.Equal(t, []string{"big"}, candidates[0].SupportingTransactionIDs)
			},
		},
		{
			name: "Transação exatamente no corte não qualifica",
			transactions: []domain.Transaction{
				// média = 100/4 = 25; corte = 50; 50 não é maior que 50
				makeTx("s1", "Store", date, 20, 0),
				makeTx("s2", "Store", date, 20, 0),
				makeTx("s3", "Store", date, 10, 0),
				makeTx("s4", "Store", date, 50, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Razão muito alta satura a severidade em 10",
			transactions: append(
				repeatTx("sm", "Store", date, 0, 10, 1.00),
				makeTx("huge", "Jewelry Store", date, 1000, 0),
			),
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Len(t, candidates, 1)
				assert.Equal(t, domain.SeverityMax, candidates[0].SeverityScore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, detectOutlierSpikes(tt.transactions, defaultDetectorConfig()))
		})
	}
}

func TestDetectMonthlySpikes(t *testing.T) {
	january := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	february := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	march := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		transactions []domain.Transaction
		validate     func(t *testing.T, candidates []domain.InsightCandidate)
	}{
		{
			name: "Alta de 80% frente ao mês anterior qualifica",
			transactions: []domain.Transaction{
				makeTx("j1", "Coffee Shop", january, 50, 0),
				makeTx("j2", "Coffee Shop", january.AddDate(0, 0, 5), 50, 0),
				makeTx("f1", "Coffee Shop", february, 90, 0),
				makeTx("f2", "Coffee Shop", february.AddDate(0, 0, 5), 90, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				// (180 - 100) / 100 = 80%: floor((80 - 50) / 10) = 3
				assert.Len(t, candidates, 1)
				assert.Equal(t, 3, candidates[0].SeverityScore)
				assert.ElementsMatch(t, []string{"f1", "f2"}, candidates[0].SupportingTransactionIDs)
			},
		},
		{
			name: "Alta exatamente no limiar não qualifica",
			transactions: []domain.Transaction{
				makeTx("j1", "Coffee Shop", january, 100, 0),
				makeTx("f1", "Coffee Shop", february, 150, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Meses não consecutivos não são comparados",
			transactions: []domain.Transaction{
				makeTx("j1", "Coffee Shop", january, 100, 0),
				makeTx("m1", "Coffee Shop", march, 500, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Mês base com total zero é pulado",
			transactions: []domain.Transaction{
				makeTx("j1", "Coffee Shop", january, 0, 0),
				makeTx("f1", "Coffee Shop", february, 500, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
		{
			name: "Estabelecimentos diferentes não se misturam",
			transactions: []domain.Transaction{
				makeTx("j1", "Coffee Shop", january, 100, 0),
				makeTx("f1", "Book Store", february, 500, 0),
			},
			validate: func(t *testing.T, candidates []domain.InsightCandidate) {
				assert.Empty(t, candidates)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, detectMonthlySpikes(tt.transactions, defaultDetectorConfig()))
		})
	}
}

func TestNextMonth(t *testing.T) {
	assert.Equal(t, "2026-02", nextMonth("2026-01"))
	assert.Equal(t, "2027-01", nextMonth("2026-12"))
	assert.Equal(t, "", nextMonth("inválido"))
}
