package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/fxamacker/cbor/v2"
)

const (
	latestFile = "latest.ckpt"
	bestFile   = "best.ckpt"
)

type fileStore struct {
	dir string
}

// NewFileStore keeps each slot in its own file under dir. Writes go to a
// temporary file first and are renamed into place, so a crash mid-write
// leaves the previous slot content intact.
func NewFileStore(dir string) (Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty checkpoint directory", pkgerrors.ErrInvalidData)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}

	return &fileStore{dir: dir}, nil
}

func (s *fileStore) Save(_ context.Context, cp Checkpoint) error {
	payload, err := cbor.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := s.writeSlot(latestFile, payload); err != nil {
		return err
	}
	if cp.IsBest {
		if err := s.writeSlot(bestFile, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *fileStore) Load(_ context.Context, slot Slot) (Checkpoint, error) {
	name, err := slotFile(slot)
	if err != nil {
		return Checkpoint{}, err
	}

	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Checkpoint{}, fmt.Errorf("%s checkpoint: %w", slot, pkgerrors.ErrNotFound)
		}

		return Checkpoint{}, fmt.Errorf("read %s checkpoint: %w", slot, err)
	}

	var cp Checkpoint
	if err := cbor.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("decode %s checkpoint: %w", slot, err)
	}

	return cp, nil
}

func (s *fileStore) Close() error {
	return nil
}

func (s *fileStore) writeSlot(name string, payload []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)

		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("close checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)

		return fmt.Errorf("publish checkpoint: %w", err)
	}

	return nil
}

func slotFile(slot Slot) (string, error) {
	switch slot {
	case SlotLatest:
		return latestFile, nil
	case SlotBest:
		return bestFile, nil
	default:
		return "", fmt.Errorf("%w: slot %q", pkgerrors.ErrInvalidData, slot)
	}
}
