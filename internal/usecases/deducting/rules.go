package deducting

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

//go:embed rules.yaml
var embeddedRules []byte

type ruleTable struct {
	Rules []domain.DeductionRule `yaml:"rules"`
}

// LoadDefaultRules carrega a tabela de regras embutida no binário
func LoadDefaultRules() ([]domain.DeductionRule, error) {
	table := ruleTable{}
	if err := yaml.Unmarshal(embeddedRules, &table); err != nil {
		return nil, fmt.Errorf("erro ao carregar a tabela de regras de dedução: %w", err)
	}
	if len(table.Rules) == 0 {
		return nil, fmt.Errorf("tabela de regras de dedução vazia")
	}
	return table.Rules, nil
}

// Ajuste de confiança por flag de contexto: +0.05 quando a flag
// relevante é explicitamente true, -0.05 quando não foi informada ou é
// false. O switch é fechado de propósito: toda categoria nova precisa
// declarar aqui como trata o contexto do usuário.
func contextAdjustment(category string, uc domain.UserContext) float64 {
	var flag *bool
	switch category {
	case domain.CategoryBusinessTravel:
		flag = uc.IsFreelancer
	case domain.CategoryHomeOffice:
		flag = uc.WorksFromHome
	case domain.CategoryHealthInsurance:
		flag = uc.IsFreelancer
	case domain.CategorySoftwareTools:
		flag = uc.IsFreelancer
	case domain.CategoryProfessionalDevel:
		flag = uc.IsFreelancer
	case domain.CategoryCharitableDonation:
		// Doações não dependem de contexto
		return 0
	default:
		return 0
	}

	if flag != nil && *flag {
		return contextAdjustmentStep
	}
	return -contextAdjustmentStep
}
