package deducting

import (
	"sort"
	"strings"

	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/domain"
)

// Pesos da fórmula de confiança (ver documentação do motor de deduções)
const (
	coverageWeight        = 0.4
	merchantMatchBonus    = 0.1
	multiDescriptionBonus = 0.05
	contextAdjustmentStep = 0.05
)

// Engine casa transações contra a tabela estática de regras de dedução.
// É um pipeline paralelo ao de insights: mesmo desenho, consumidor
// diferente.
type Engine struct {
	cfg   config.Deduction
	rules []domain.DeductionRule
}

// NewEngine cria o motor com a tabela de regras embutida
func NewEngine(cfg config.Deduction) (*Engine, error) {
	rules, err := LoadDefaultRules()
	if err != nil {
		return nil, err
	}
	return NewEngineWithRules(cfg, rules), nil
}

// NewEngineWithRules cria o motor com uma tabela arbitrária (testes e
// tabelas customizadas)
func NewEngineWithRules(cfg config.Deduction, rules []domain.DeductionRule) *Engine {
	return &Engine{cfg: cfg, rules: rules}
}

// MatchTransaction avalia uma transação contra todas as regras e retorna
// os matches com confiança acima do piso configurado, em ordem
// decrescente de confiança. Função pura: sem I/O, sem estado mutável.
func (e *Engine) MatchTransaction(tx domain.Transaction, uc domain.UserContext) []domain.DeductionMatch {
	merchant := ""
	if tx.Merchant != nil {
		merchant = strings.ToLower(*tx.Merchant)
	}
	description := strings.ToLower(tx.DescriptionOrEmpty())

	matches := make([]domain.DeductionMatch, 0)
	for _, rule := range e.rules {
		if !e.eligible(rule, uc) {
			continue
		}

		matched := make([]string, 0, len(rule.Keywords))
		merchantMatched := false
		descriptionMatchCount := 0
		for _, keyword := range rule.Keywords {
			kw := strings.ToLower(keyword)
			inMerchant := merchant != "" && strings.Contains(merchant, kw)
			inDescription := description != "" && strings.Contains(description, kw)
			if inMerchant {
				merchantMatched = true
			}
			if inDescription {
				descriptionMatchCount++
			}
			if inMerchant || inDescription {
				matched = append(matched, keyword)
			}
		}

		// Sem keyword casada não há match, independente da confiança base
		if len(matched) == 0 || len(rule.Keywords) == 0 {
			continue
		}

		coverage := float64(len(matched)) / float64(len(rule.Keywords))

		confidence := rule.BaseConfidence + coverage*coverageWeight
		if merchantMatched {
			confidence += merchantMatchBonus
		}
		if descriptionMatchCount > 1 {
			confidence += multiDescriptionBonus
		}
		confidence += contextAdjustment(rule.Category, uc)
		confidence = clampConfidence(confidence)

		if confidence < e.cfg.MinConfidence {
			continue
		}

		matches = append(matches, domain.DeductionMatch{
			TransactionID:      tx.ID,
			Category:           rule.Category,
			IRSCategory:        rule.IRSCategory,
			Confidence:         confidence,
			DeductionPercent:   rule.DeductionPercent,
			PotentialDeduction: tx.TotalAmount.Mul(decimalFromFloat(rule.DeductionPercent)).Round(2),
			MatchedKeywords:    matched,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Category < matches[j].Category
	})

	return matches
}

// eligible verifica as flags obrigatórias da regra: um false explícito
// desqualifica, ausência (nil) não
func (e *Engine) eligible(rule domain.DeductionRule, uc domain.UserContext) bool {
	for _, flag := range rule.Requires {
		value := uc.Flag(flag)
		if value != nil && !*value {
			return false
		}
	}
	return true
}

func clampConfidence(confidence float64) float64 {
	if confidence < domain.ConfidenceMin {
		return domain.ConfidenceMin
	}
	if confidence > domain.ConfidenceMax {
		return domain.ConfidenceMax
	}
	return confidence
}
