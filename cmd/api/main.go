package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bfroz/tax-insights-api/infrastructure/database/postgres"
	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/internal/api"
	"github.com/bfroz/tax-insights-api/internal/config"
	"github.com/bfroz/tax-insights-api/internal/scheduler"
	"github.com/bfroz/tax-insights-api/internal/usecases/deducting"
	"github.com/bfroz/tax-insights-api/internal/usecases/detecting"
	"github.com/bfroz/tax-insights-api/internal/usecases/insighting"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	transactionRepo := repository.NewTransactionRepository(pgConn)
	insightRunRepo := repository.NewInsightRunRepository(pgConn)

	// Pipeline de detectores com os limiares da configuração
	pipeline := detecting.NewPipeline(cfg.Detector)

	insightService := insighting.NewService(cfg, pipeline, transactionRepo, insightRunRepo)

	// Motor de deduções com a tabela de regras embutida
	deductionEngine, err := deducting.NewEngine(cfg.Deduction)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao carregar a tabela de regras de dedução")
	}

	// Agendador de retenção de execuções substituídas
	runRetentionService := scheduler.NewRunRetentionService(insightRunRepo, cfg)
	if err := runRetentionService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de retenção de execuções")
	} else {
		logrus.Info("Agendador de retenção de execuções iniciado com sucesso")
	}

	server, err := api.New(
		cfg,
		insightService,
		deductionEngine,
		transactionRepo,
		runRetentionService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
