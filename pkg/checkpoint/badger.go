package checkpoint

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/absmach/coach/pkg/errors"
	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

const keyPrefix = "checkpoint/"

type badgerStore struct {
	db *badger.DB
}

// NewBadgerStore keeps both slots in an embedded badger database. Each
// slot is its own key, written in its own transaction, so the slots fail
// independently.
func NewBadgerStore(path string) (Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger checkpoint store: %w", err)
	}

	return &badgerStore{db: db}, nil
}

func (s *badgerStore) Save(_ context.Context, cp Checkpoint) error {
	payload, err := cbor.Marshal(cp)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}

	if err := s.set(SlotLatest, payload); err != nil {
		return err
	}
	if cp.IsBest {
		if err := s.set(SlotBest, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *badgerStore) Load(_ context.Context, slot Slot) (Checkpoint, error) {
	if slot != SlotLatest && slot != SlotBest {
		return Checkpoint{}, fmt.Errorf("%w: slot %q", pkgerrors.ErrInvalidData, slot)
	}

	var cp Checkpoint
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + string(slot)))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &cp)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return Checkpoint{}, fmt.Errorf("%s checkpoint: %w", slot, pkgerrors.ErrNotFound)
		}

		return Checkpoint{}, fmt.Errorf("load %s checkpoint: %w", slot, err)
	}

	return cp, nil
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

func (s *badgerStore) set(slot Slot, payload []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+string(slot)), payload)
	})
	if err != nil {
		return fmt.Errorf("write %s checkpoint: %w", slot, err)
	}

	return nil
}
