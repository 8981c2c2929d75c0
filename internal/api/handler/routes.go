package handler

import (
	"net/http"

	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/internal/api/handler/router"
	"github.com/bfroz/tax-insights-api/internal/usecases/deducting"
	"github.com/bfroz/tax-insights-api/internal/usecases/insighting"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

func Insights(service insighting.Insighter) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/users/:userId/insights",
			Method:  http.MethodGet,
			Handler: GetInsights(service),
		},
		{
			Path:    "/v1/users/:userId/insights/:insightId",
			Method:  http.MethodPatch,
			Handler: UpdateInsightState(service),
		},
	}
}

func Deductions(engine *deducting.Engine, transactionRepo repository.TransactionRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/users/:userId/deductions",
			Method:  http.MethodGet,
			Handler: GetDeductionSummary(engine, transactionRepo),
		},
	}
}

func Transactions(transactionRepo repository.TransactionRepository) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/users/:userId/transactions",
			Method:  http.MethodGet,
			Handler: GetTransactionsByIDs(transactionRepo),
		},
	}
}

func CronJobs(services CronJobServices) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/cron/:type",
			Method:  http.MethodPost,
			Handler: RunCronJob(services),
		},
	}
}
