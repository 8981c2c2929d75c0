package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App          App          `mapstructure:",squash"`
	Server       Server       `mapstructure:",squash"`
	Database     Database     `mapstructure:",squash"`
	Detector     Detector     `mapstructure:",squash"`
	Deduction    Deduction    `mapstructure:",squash"`
	InsightCache InsightCache `mapstructure:",squash"`
	RunRetention RunRetention `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

// Detector concentra os limiares dos detectores de insights.
// Ficam na configuração (e não em constantes de pacote) para que testes
// possam variar os limiares sem efeito colateral global.
type Detector struct {
	QuietLeakMinOccurrences int     `mapstructure:"quiet_leak_min_occurrences"`
	QuietLeakMaxUnitAmount  float64 `mapstructure:"quiet_leak_max_unit_amount"`
	QuietLeakMinCumulative  float64 `mapstructure:"quiet_leak_min_cumulative"`
	TaxDragMinEffectiveRate float64 `mapstructure:"tax_drag_min_effective_rate"`
	TaxDragMinSpend         float64 `mapstructure:"tax_drag_min_spend"`
	SpikeOutlierMultiplier  float64 `mapstructure:"spike_outlier_multiplier"`
	SpikeMonthlyIncreasePct float64 `mapstructure:"spike_monthly_increase_pct"`
	DuplicateWindowHours    int     `mapstructure:"duplicate_window_hours"`
}

// Deduction concentra os parâmetros do motor de deduções
type Deduction struct {
	MinConfidence        float64 `mapstructure:"deduction_min_confidence"`
	DefaultEffectiveRate float64 `mapstructure:"deduction_default_effective_rate"`
}

// InsightCache controla o TTL brando da última execução persistida
type InsightCache struct {
	TTLSeconds int `mapstructure:"insight_cache_ttl_seconds"`
}

// TTL retorna o TTL do cache como duração
func (c InsightCache) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// RunRetention controla o job de limpeza de execuções substituídas
type RunRetention struct {
	CronSchedule  string `mapstructure:"run_retention_cron"`
	RetentionDays int    `mapstructure:"run_retention_days"`
	Enabled       bool   `mapstructure:"run_retention_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/taxtracker")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	// Limiar dos detectores (ver documentação do pipeline)
	viper.SetDefault("QUIET_LEAK_MIN_OCCURRENCES", 3)
	viper.SetDefault("QUIET_LEAK_MAX_UNIT_AMOUNT", 20.0)
	viper.SetDefault("QUIET_LEAK_MIN_CUMULATIVE", 50.0)
	viper.SetDefault("TAX_DRAG_MIN_EFFECTIVE_RATE", 0.09)
	viper.SetDefault("TAX_DRAG_MIN_SPEND", 100.0)
	viper.SetDefault("SPIKE_OUTLIER_MULTIPLIER", 2.0)
	viper.SetDefault("SPIKE_MONTHLY_INCREASE_PCT", 50.0)
	viper.SetDefault("DUPLICATE_WINDOW_HOURS", 24)

	// Motor de deduções
	viper.SetDefault("DEDUCTION_MIN_CONFIDENCE", 0.45)
	viper.SetDefault("DEDUCTION_DEFAULT_EFFECTIVE_RATE", 0.25)

	// Cache de insights (TTL brando, em segundos)
	viper.SetDefault("INSIGHT_CACHE_TTL_SECONDS", 60)

	// Retenção de execuções substituídas
	viper.SetDefault("RUN_RETENTION_CRON", "0 5 * * *") // Todos os dias às 5h da manhã
	viper.SetDefault("RUN_RETENTION_DAYS", 90)
	viper.SetDefault("RUN_RETENTION_ENABLED", false)

	viper.SetDefault("LOG_LEVEL", "debug")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	// Configurar valores padrão
	SetDefaults()

	// Configurar o Viper
	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv() // Isso permite que o Viper leia variáveis de ambiente

	// Tentar ler o arquivo .env com o Viper (opcional, já que usamos godotenv)
	if err := viper.ReadInConfig(); err != nil {
		logrus.Info("Usando variáveis carregadas pelo godotenv (viper não conseguiu ler .env):", err)
	} else {
		logrus.Info("Arquivo .env lido pelo Viper com sucesso")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../.env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		err := godotenv.Load(location)
		if err == nil {
			logrus.Info("Arquivo .env carregado com sucesso de:", location)
			return
		}
	}

	logrus.Warn("Não foi possível carregar o arquivo .env de nenhuma localização conhecida")
}
