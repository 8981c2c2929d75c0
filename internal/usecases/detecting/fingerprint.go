package detecting

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

// Fingerprint deriva a chave estável de um candidato a partir do tipo do
// insight e da chave de agrupamento do detector (estabelecimento
// normalizado, mês etc). A chave nunca usa IDs de transação ou de banco:
// eles mudam conforme novas transações chegam, e o fingerprint precisa
// sobreviver à regeneração completa do conjunto de insights.
func Fingerprint(insightType domain.InsightType, groupingKey string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", insightType, groupingKey)))
	return hex.EncodeToString(sum[:])[:16]
}
