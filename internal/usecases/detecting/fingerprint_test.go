package detecting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bfroz/tax-insights-api/internal/domain"
)

func TestFingerprint(t *testing.T) {
	first := Fingerprint(domain.InsightTypeQuietLeak, "coffee shop")
	second := Fingerprint(domain.InsightTypeQuietLeak, "coffee shop")

	assert.Equal(t, first, second)
	assert.Len(t, first, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", first)
}

func TestFingerprintVariesByTypeAndKey(t *testing.T) {
	base := Fingerprint(domain.InsightTypeQuietLeak, "coffee shop")

	assert.NotEqual(t, base, Fingerprint(domain.InsightTypeTaxDrag, "coffee shop"))
	assert.NotEqual(t, base, Fingerprint(domain.InsightTypeQuietLeak, "book store"))
}

// O fingerprint precisa sobreviver à regeneração: a mesma condição
// detectada sobre transações com IDs completamente diferentes produz a
// mesma chave.
func TestFingerprintIgnoresTransactionIDs(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	firstRun := DetectQuietLeaks(repeatTx("aa", "Coffee Shop", start, 3, 10, 5.50), defaultDetectorConfig())
	secondRun := DetectQuietLeaks(repeatTx("zz", "Coffee Shop", start, 3, 10, 5.50), defaultDetectorConfig())

	assert.Len(t, firstRun, 1)
	assert.Len(t, secondRun, 1)
	assert.Equal(t, firstRun[0].Fingerprint, secondRun[0].Fingerprint)
	assert.NotEqual(t, firstRun[0].SupportingTransactionIDs, secondRun[0].SupportingTransactionIDs)
}
