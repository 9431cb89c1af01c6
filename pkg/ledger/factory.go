package ledger

import "fmt"

type Config struct {
	Type  string `env:"COACH_LEDGER_TYPE" envDefault:"file"`
	Path  string `env:"COACH_LEDGER_PATH" envDefault:"./checkpoint/progress.txt"`
	Title string `env:"COACH_LEDGER_TITLE"`
}

func NewLedger(cfg Config) (Ledger, error) {
	switch cfg.Type {
	case "file":
		return NewFileLedger(cfg.Path, cfg.Title)
	case "sqlite":
		return NewSQLiteLedger(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported ledger type: %s", cfg.Type)
	}
}
