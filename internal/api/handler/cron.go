package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/bfroz/tax-insights-api/internal/scheduler"
	"github.com/bfroz/tax-insights-api/pkg/apiErrors"
)

// Tipos de cron job que podem ser disparadas manualmente
const (
	CronJobTypeRunRetention = "run-retention"
)

// CronJobServices contém os serviços de cron disponíveis para execução manual
type CronJobServices struct {
	RunRetentionService *scheduler.RunRetentionService
}

// RunCronJob dispara manualmente uma cron job específica
func RunCronJob(services CronJobServices) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cronType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if cronType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de cron job não especificado", nil)
			return
		}

		switch cronType {
		case CronJobTypeRunRetention:
			if services.RunRetentionService == nil {
				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Serviço de retenção não disponível", nil)
				return
			}
			services.RunRetentionService.TriggerManualPurge()

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de cron job desconhecido", nil)
			return
		}

		logrus.WithField("cron_type", cronType).Info("Cron job disparada manualmente")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "started",
			"type":   cronType,
		})
	}
}
