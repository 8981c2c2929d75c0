package domain

import (
	"time"
)

// InsightType enumera os detectores do pipeline
type InsightType string

const (
	InsightTypeQuietLeak InsightType = "QUIET_LEAK"
	InsightTypeTaxDrag   InsightType = "TAX_DRAG"
	InsightTypeSpike     InsightType = "SPIKE"
	InsightTypeDuplicate InsightType = "DUPLICATE"
)

// Limites da escala de severidade
const (
	SeverityMin = 0
	SeverityMax = 10
)

// ThresholdCheck espelha uma condição de qualificação do detector, com o
// valor observado e o limiar usado, para que a UI explique o "porquê"
// sem recalcular nada
type ThresholdCheck struct {
	Name      string  `json:"name"`
	Actual    float64 `json:"actual"`
	Threshold float64 `json:"threshold"`
}

// Explanation é a justificativa estruturada anexada a cada insight
type Explanation struct {
	Reason     string           `json:"reason"`
	Thresholds []ThresholdCheck `json:"thresholds"`
	Suggestion string           `json:"suggestion"`
}

// InsightCandidate é o resultado efêmero de um detector em uma execução.
// Candidatos não têm identidade durável: o fingerprint (derivado do tipo
// e da chave de agrupamento, nunca de IDs de transação) é o que permite
// reconciliar com execuções anteriores.
type InsightCandidate struct {
	Type                     InsightType `json:"type"`
	Title                    string      `json:"title"`
	Summary                  string      `json:"summary"`
	SeverityScore            int         `json:"severityScore"`
	SupportingTransactionIDs []string    `json:"supportingTransactionIds"`
	Fingerprint              string      `json:"fingerprint"`
	Explanation              Explanation `json:"explanation"`
}

// Insight é um candidato persistido dentro de uma execução, acrescido do
// estado aplicado pelo usuário. O ID é estável apenas dentro da execução.
// Invariante: dismissed e pinned são mutuamente exclusivos.
type Insight struct {
	ID                       string      `json:"id"`
	RunID                    string      `json:"runId"`
	Type                     InsightType `json:"type"`
	Title                    string      `json:"title"`
	Summary                  string      `json:"summary"`
	SeverityScore            int         `json:"severityScore"`
	SupportingTransactionIDs []string    `json:"supportingTransactionIds"`
	Fingerprint              string      `json:"fingerprint"`
	Explanation              Explanation `json:"explanation"`
	Dismissed                bool        `json:"dismissed"`
	Pinned                   bool        `json:"pinned"`
}

// InsightRun é uma execução completa do pipeline para (usuário, janela).
// Execuções substituídas permanecem no banco para auditoria; apenas a
// mais recente por (userId, rangeDays) é autoritativa para leituras.
type InsightRun struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RangeDays int       `json:"rangeDays"`
	CreatedAt time.Time `json:"createdAt"`
	Insights  []Insight `json:"insights"`
}

// InsightStatePatch é a atualização parcial de estado de um insight.
// Campos nil não são alterados.
type InsightStatePatch struct {
	Dismissed *bool `json:"dismissed,omitempty"`
	Pinned    *bool `json:"pinned,omitempty"`
}

// Apply aplica o patch sobre os flags atuais garantindo a exclusão mútua:
// marcar um flag como true sempre limpa o outro, sem estado transitório
// em que ambos fiquem verdadeiros
func (p InsightStatePatch) Apply(dismissed, pinned bool) (bool, bool) {
	if p.Dismissed != nil {
		dismissed = *p.Dismissed
		if dismissed {
			pinned = false
		}
	}
	if p.Pinned != nil {
		pinned = *p.Pinned
		if pinned {
			dismissed = false
		}
	}
	return dismissed, pinned
}

// IsEmpty indica se o patch não altera nenhum campo
func (p InsightStatePatch) IsEmpty() bool {
	return p.Dismissed == nil && p.Pinned == nil
}
