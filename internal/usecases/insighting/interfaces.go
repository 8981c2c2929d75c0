package insighting

import (
	"time"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

// QueryOptions são as opções de leitura de insights
type QueryOptions struct {
	// ForceRefresh ignora o TTL e força a regeneração do conjunto
	ForceRefresh bool
	// UserContext acompanha a chamada para os consumidores adjacentes
	// (deduções); os detectores de insights não o utilizam
	UserContext domain.UserContext
}

// InsightsResult é a resposta do ciclo de vida de insights. FromCache
// indica que a execução persistida ainda estava dentro do TTL e foi
// devolvida sem regeneração.
type InsightsResult struct {
	RunID       string           `json:"runId"`
	GeneratedAt time.Time        `json:"generatedAt"`
	FromCache   bool             `json:"fromCache"`
	Insights    []domain.Insight `json:"insights"`
}

// Insighter é a interface do gerenciador de ciclo de vida de insights
type Insighter interface {
	GetInsights(userID string, rangeDays int, opts QueryOptions) (*InsightsResult, error)
	UpdateInsightState(userID, insightID string, patch domain.InsightStatePatch) (*domain.Insight, error)
}
