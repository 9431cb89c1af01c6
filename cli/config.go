package cli

import (
	"os"
	"time"

	coach "github.com/absmach/coach"
	"github.com/absmach/coach/pkg/checkpoint"
	"github.com/absmach/coach/pkg/ledger"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const pathEnv = ".env"

type envConfig struct {
	LogLevel     string `env:"COACH_LOG_LEVEL"     envDefault:"info"`
	RunID        string `env:"COACH_RUN_ID"`
	RunName      string `env:"COACH_RUN_NAME"`
	HTTPAddress  string `env:"COACH_HTTP_ADDRESS"  envDefault:":7070"`
	ArtifactsDir string `env:"COACH_ARTIFACTS_DIR" envDefault:"./checkpoint"`
	Seed         int64  `env:"COACH_SEED"          envDefault:"0"`
	Monitor      bool   `env:"COACH_MONITOR"       envDefault:"false"`

	Architecture string  `env:"COACH_ARCH"    envDefault:"mlp"`
	Hidden       int     `env:"COACH_HIDDEN"  envDefault:"64"`
	Dropout      float64 `env:"COACH_DROPOUT" envDefault:"0"`

	Classes      int     `env:"COACH_CLASSES"       envDefault:"10"`
	Features     int     `env:"COACH_FEATURES"      envDefault:"32"`
	Samples      int     `env:"COACH_SAMPLES"       envDefault:"4096"`
	TestFraction float64 `env:"COACH_TEST_FRACTION" envDefault:"0.2"`
	TrainBatch   int     `env:"COACH_TRAIN_BATCH"   envDefault:"128"`
	TestBatch    int     `env:"COACH_TEST_BATCH"    envDefault:"100"`

	Epochs       int     `env:"COACH_EPOCHS"        envDefault:"300"`
	StartEpoch   int     `env:"COACH_START_EPOCH"   envDefault:"0"`
	LearningRate float64 `env:"COACH_LR"            envDefault:"0.1"`
	Momentum     float64 `env:"COACH_MOMENTUM"      envDefault:"0.9"`
	WeightDecay  float64 `env:"COACH_WEIGHT_DECAY"  envDefault:"5e-4"`
	Schedule     []int   `env:"COACH_SCHEDULE"      envDefault:"150,225"`
	Gamma        float64 `env:"COACH_GAMMA"         envDefault:"0.1"`
	Resume       bool    `env:"COACH_RESUME"        envDefault:"false"`
	BestPolicy   string  `env:"COACH_BEST_POLICY"   envDefault:"strict"`

	MQTTAddress  string        `env:"COACH_MQTT_ADDRESS"`
	MQTTQoS      uint8         `env:"COACH_MQTT_QOS"      envDefault:"2"`
	MQTTTimeout  time.Duration `env:"COACH_MQTT_TIMEOUT"  envDefault:"30s"`
	MQTTTopic    string        `env:"COACH_MQTT_TOPIC"    envDefault:"coach/progress"`
	MQTTUsername string        `env:"COACH_MQTT_USERNAME"`
	MQTTPassword string        `env:"COACH_MQTT_PASSWORD"`

	Checkpoint checkpoint.Config
	Ledger     ledger.Config
}

func loadEnvConfig() (envConfig, error) {
	if _, err := os.Stat(pathEnv); err == nil {
		_ = godotenv.Load(pathEnv)
	}

	cfg := envConfig{}
	if err := env.Parse(&cfg); err != nil {
		return envConfig{}, err
	}

	return cfg, nil
}

func loadExperiment(path string) (*coach.Config, error) {
	return coach.LoadConfig(path)
}

// applyExperiment overlays a TOML experiment file on top of the
// environment. Only fields the file names are overridden.
func (cfg *envConfig) applyExperiment(exp *coach.Config) {
	if exp == nil {
		return
	}

	if exp.Optimization.Epochs != nil {
		cfg.Epochs = *exp.Optimization.Epochs
	}
	if exp.Optimization.StartEpoch != nil {
		cfg.StartEpoch = *exp.Optimization.StartEpoch
	}
	if exp.Optimization.LearningRate != nil {
		cfg.LearningRate = *exp.Optimization.LearningRate
	}
	if exp.Optimization.Momentum != nil {
		cfg.Momentum = *exp.Optimization.Momentum
	}
	if exp.Optimization.WeightDecay != nil {
		cfg.WeightDecay = *exp.Optimization.WeightDecay
	}
	if exp.Optimization.Schedule != nil {
		cfg.Schedule = exp.Optimization.Schedule
	}
	if exp.Optimization.Gamma != nil {
		cfg.Gamma = *exp.Optimization.Gamma
	}

	if exp.Architecture.Name != nil {
		cfg.Architecture = *exp.Architecture.Name
	}
	if exp.Architecture.Hidden != nil {
		cfg.Hidden = *exp.Architecture.Hidden
	}
	if exp.Architecture.Dropout != nil {
		cfg.Dropout = *exp.Architecture.Dropout
	}

	if exp.Dataset.Classes != nil {
		cfg.Classes = *exp.Dataset.Classes
	}
	if exp.Dataset.Features != nil {
		cfg.Features = *exp.Dataset.Features
	}
	if exp.Dataset.Samples != nil {
		cfg.Samples = *exp.Dataset.Samples
	}
	if exp.Dataset.TestFraction != nil {
		cfg.TestFraction = *exp.Dataset.TestFraction
	}
	if exp.Dataset.TrainBatch != nil {
		cfg.TrainBatch = *exp.Dataset.TrainBatch
	}
	if exp.Dataset.TestBatch != nil {
		cfg.TestBatch = *exp.Dataset.TestBatch
	}
}
