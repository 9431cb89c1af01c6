package checkpoint

import "fmt"

type Config struct {
	Type       string `env:"COACH_CHECKPOINT_TYPE"   envDefault:"file"`
	Dir        string `env:"COACH_CHECKPOINT_DIR"    envDefault:"./checkpoint"`
	BadgerPath string `env:"COACH_CHECKPOINT_BADGER" envDefault:"./checkpoint/badger"`
}

func NewStore(cfg Config) (Store, error) {
	switch cfg.Type {
	case "file":
		return NewFileStore(cfg.Dir)
	case "badger":
		return NewBadgerStore(cfg.BadgerPath)
	default:
		return nil, fmt.Errorf("unsupported checkpoint store type: %s", cfg.Type)
	}
}
