// Package scheduler contém os serviços de agendamento de manutenção
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/bfroz/tax-insights-api/infrastructure/repository"
	"github.com/bfroz/tax-insights-api/internal/config"
)

// RunRetentionService remove periodicamente execuções de insights
// substituídas e antigas. A execução mais recente de cada (usuário,
// janela) nunca é removida: ela é a autoritativa para leituras e para o
// PATCH de estado.
type RunRetentionService struct {
	scheduler     *gocron.Scheduler
	runRepo       repository.InsightRunRepository
	config        config.RunRetention
	purgeRunning  bool
	purgeMutex    sync.Mutex
	lastPurgeAt   time.Time
	lastPurgedNum int64
}

func NewRunRetentionService(
	runRepo repository.InsightRunRepository,
	cfg *config.Config,
) *RunRetentionService {
	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule":  cfg.RunRetention.CronSchedule,
		"retention_days": cfg.RunRetention.RetentionDays,
	}).Info("Configuração do agendador de retenção de execuções carregada")

	return &RunRetentionService{
		scheduler: scheduler,
		runRepo:   runRepo,
		config:    cfg.RunRetention,
	}
}

func (s *RunRetentionService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Cron de retenção de execuções desabilitada por configuração")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Iniciando cron de retenção de execuções de insights")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		if err := s.PurgeSupersededRuns(); err != nil {
			logrus.WithError(err).Error("Erro na limpeza de execuções substituídas")
		}
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar limpeza de execuções substituídas: %w", err)
	}

	// Executar o cron em uma goroutine separada
	s.scheduler.StartAsync()

	// Parar o cron quando o contexto for cancelado
	go func() {
		<-ctx.Done()
		logrus.Info("Parando cron de retenção de execuções")
		s.scheduler.Stop()
	}()

	return nil
}

// PurgeSupersededRuns remove as execuções substituídas mais antigas que
// a janela de retenção configurada
func (s *RunRetentionService) PurgeSupersededRuns() error {
	s.purgeMutex.Lock()
	defer s.purgeMutex.Unlock()

	if s.purgeRunning {
		logrus.Warn("Limpeza de execuções substituídas já está em execução")
		return nil
	}

	s.purgeRunning = true
	defer func() {
		s.purgeRunning = false
		s.lastPurgeAt = time.Now()
	}()

	logrus.WithField("retention_days", s.config.RetentionDays).Info("Iniciando limpeza de execuções substituídas")

	deleted, err := s.runRepo.DeleteSupersededOlderThan(s.config.RetentionDays)
	if err != nil {
		return err
	}
	s.lastPurgedNum = deleted

	logrus.WithField("deleted_runs", deleted).Info("Limpeza de execuções substituídas concluída")

	return nil
}

// TriggerManualPurge dispara a limpeza fora do agendamento (endpoint de cron)
func (s *RunRetentionService) TriggerManualPurge() {
	go func() {
		if err := s.PurgeSupersededRuns(); err != nil {
			logrus.WithError(err).Error("Erro na limpeza manual de execuções substituídas")
		}
	}()
}
