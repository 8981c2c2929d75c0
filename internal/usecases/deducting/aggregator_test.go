package deducting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

func float64Ptr(f float64) *float64 {
	return &f
}

func TestBuildDeductionSummaryUsesBestMatchOnly(t *testing.T) {
	engine := newTestEngine(t)
	uc := domain.UserContext{IsFreelancer: boolPtr(true)}

	// Casa com viagem (melhor) e com desenvolvimento profissional
	transactions := []domain.Transaction{
		makeTx("t1", "Travel Agency", "flight and hotel for conference", 800.00),
	}

	summary := engine.BuildDeductionSummary(transactions, uc, nil)

	assert.Len(t, summary.Deductions, 1)
	assert.Equal(t, domain.CategoryBusinessTravel, summary.Deductions[0].Category)
	assert.True(t, summary.Deductions[0].TotalSpend.Equal(decimal.NewFromFloat(800.00)))
	assert.Equal(t, []string{"t1"}, summary.Deductions[0].Transactions)
}

func TestBuildDeductionSummaryTaxRate(t *testing.T) {
	engine := newTestEngine(t)
	uc := domain.UserContext{IsFreelancer: boolPtr(true)}
	transactions := []domain.Transaction{
		makeTx("t1", "Uber", "", 100.00),
	}

	tests := []struct {
		name            string
		rate            *float64
		expectedSavings string
	}{
		{
			name:            "Taxa não informada cai no padrão de 25%",
			rate:            nil,
			expectedSavings: "25.00",
		},
		{
			name:            "Taxa explícita de 0% é respeitada, não substituída",
			rate:            float64Ptr(0),
			expectedSavings: "0.00",
		},
		{
			name:            "Taxa explícita de 32% é aplicada",
			rate:            float64Ptr(0.32),
			expectedSavings: "32.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := engine.BuildDeductionSummary(transactions, uc, tt.rate)

			assert.Len(t, summary.Deductions, 1)
			assert.Equal(t, "100.00", summary.Deductions[0].PotentialDeduction.StringFixed(2))
			assert.Equal(t, tt.expectedSavings, summary.EstimatedTaxSavings.StringFixed(2))
		})
	}
}

func TestBuildDeductionSummaryAggregatesByCategory(t *testing.T) {
	engine := newTestEngine(t)
	uc := domain.UserContext{IsFreelancer: boolPtr(true)}

	transactions := []domain.Transaction{
		makeTx("u1", "Uber", "", 45.00),
		makeTx("u2", "Uber", "", 23.40),
		makeTx("l1", "Lyft", "", 18.00),
		makeTx("g1", "GitHub", "assinatura mensal", 10.00),
	}

	summary := engine.BuildDeductionSummary(transactions, uc, nil)

	assert.Len(t, summary.Deductions, 2)

	// Maior potencial primeiro: viagem ($86.40) antes de software ($10.00)
	travel := summary.Deductions[0]
	assert.Equal(t, domain.CategoryBusinessTravel, travel.Category)
	assert.Equal(t, "86.40", travel.TotalSpend.StringFixed(2))
	assert.Equal(t, "86.40", travel.PotentialDeduction.StringFixed(2))
	assert.Len(t, travel.Transactions, 3)
	// Uber aparece duas vezes, Lyft uma: a sugestão aponta o mais frequente
	assert.Contains(t, travel.Suggestion, "Uber")

	software := summary.Deductions[1]
	assert.Equal(t, domain.CategorySoftwareTools, software.Category)
	assert.Equal(t, "10.00", software.TotalSpend.StringFixed(2))

	assert.Equal(t, "96.40", summary.TotalPotentialDeduction.StringFixed(2))
	assert.Equal(t, "24.10", summary.EstimatedTaxSavings.StringFixed(2))
}

func TestBuildDeductionSummaryConfidenceIsMeanOfBestMatches(t *testing.T) {
	engine := newTestEngine(t)
	uc := domain.UserContext{IsFreelancer: boolPtr(true)}

	transactions := []domain.Transaction{
		makeTx("u1", "Uber", "", 45.00),
		makeTx("u2", "Uber", "", 23.40),
	}

	summary := engine.BuildDeductionSummary(transactions, uc, nil)

	assert.Len(t, summary.Deductions, 1)
	// Ambos os matches têm confiança 0.6667; média arredondada em duas casas
	assert.Equal(t, 0.67, summary.Deductions[0].Confidence)
}

func TestBuildDeductionSummaryEmptyWindow(t *testing.T) {
	engine := newTestEngine(t)

	summary := engine.BuildDeductionSummary(nil, domain.UserContext{}, nil)

	assert.Empty(t, summary.Deductions)
	assert.True(t, summary.TotalPotentialDeduction.IsZero())
	assert.True(t, summary.EstimatedTaxSavings.IsZero())
}
