package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/pkg/apiErrors"
	"github.com/bfroz/tax-insights-api/pkg/log"
)

// GetTransactionsByIDs resolve um lote de IDs de transação — é o
// drill-down dos supportingTransactionIds de um insight
func GetTransactionsByIDs(transactionRepo repository.TransactionRepository) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())

		userID := httprouter.ParamsFromContext(r.Context()).ByName("userId")
		if userID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "userId não informado", nil)
			return
		}

		rawIDs := r.URL.Query().Get("ids")
		if rawIDs == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "informe os IDs em ?ids=a,b,c", nil)
			return
		}

		ids := make([]string, 0)
		for _, id := range strings.Split(rawIDs, ",") {
			if trimmed := strings.TrimSpace(id); trimmed != "" {
				ids = append(ids, trimmed)
			}
		}

		transactions, err := transactionRepo.GetByIDs(userID, ids)
		if err != nil {
			logger.WithFields(log.Fields{
				"user_id": userID,
				"error":   err.Error(),
			}).Error("transactions: failed to resolve batch lookup")

			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "erro ao buscar transações", nil)
			return
		}

		logger.WithFields(log.Fields{
			"user_id":   userID,
			"requested": len(ids),
			"found":     len(transactions),
		}).Info("transactions: batch lookup resolved")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(transactions); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
