package domain

import (
	"github.com/shopspring/decimal"
)

// Categorias de dedução conhecidas pelo motor
const (
	CategoryBusinessTravel     = "BUSINESS_TRAVEL"
	CategoryHomeOffice         = "HOME_OFFICE"
	CategoryHealthInsurance    = "HEALTH_INSURANCE"
	CategorySoftwareTools      = "SOFTWARE_TOOLS"
	CategoryProfessionalDevel  = "PROFESSIONAL_DEVELOPMENT"
	CategoryCharitableDonation = "CHARITABLE_DONATION"
)

// Limites da escala de confiança das deduções
const (
	ConfidenceMin = 0.0
	ConfidenceMax = 0.95
)

// DeductionRule é uma regra estática da tabela de deduções.
// Requires lista flags de contexto que, quando explicitamente false,
// desqualificam a regra (ausência não desqualifica).
type DeductionRule struct {
	ID               string        `json:"id" yaml:"id"`
	Category         string        `json:"category" yaml:"category"`
	Keywords         []string      `json:"keywords" yaml:"keywords"`
	DeductionPercent float64       `json:"deductionPercent" yaml:"deduction_percent"`
	IRSCategory      string        `json:"irsCategory" yaml:"irs_category"`
	BaseConfidence   float64       `json:"baseConfidence" yaml:"base_confidence"`
	Requires         []ContextFlag `json:"requires,omitempty" yaml:"requires,omitempty"`
}

// DeductionMatch é o resultado efêmero do casamento de uma transação
// contra uma regra
type DeductionMatch struct {
	TransactionID      string          `json:"transactionId"`
	Category           string          `json:"category"`
	IRSCategory        string          `json:"irsCategory"`
	Confidence         float64         `json:"confidence"`
	DeductionPercent   float64         `json:"deductionPercent"`
	PotentialDeduction decimal.Decimal `json:"potentialDeduction"`
	MatchedKeywords    []string        `json:"matchedKeywords"`
}

// DeductionCategorySummary agrega os melhores matches de uma categoria
type DeductionCategorySummary struct {
	Category           string          `json:"category"`
	IRSCategory        string          `json:"irsCategory"`
	TotalSpend         decimal.Decimal `json:"totalSpend"`
	PotentialDeduction decimal.Decimal `json:"potentialDeduction"`
	EstimatedSavings   decimal.Decimal `json:"estimatedSavings"`
	Confidence         float64         `json:"confidence"`
	Suggestion         string          `json:"suggestion"`
	Transactions       []string        `json:"transactions"`
}

// DeductionSummaryResponse é a resposta completa do agregador
type DeductionSummaryResponse struct {
	Deductions              []DeductionCategorySummary `json:"deductions"`
	TotalPotentialDeduction decimal.Decimal            `json:"totalPotentialDeduction"`
	EstimatedTaxSavings     decimal.Decimal            `json:"estimatedTaxSavings"`
}
