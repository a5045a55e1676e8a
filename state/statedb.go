// Package state holds the journaled world state the engine mutates while a
// batch is processed: native balances, template bindings, instance storage,
// sequence queues, escrow and stake entries.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"slices"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/hash"
	"github.com/spacemeshos/go-entrypoint/sql"
	"github.com/spacemeshos/go-entrypoint/sql/accounts"
	"github.com/spacemeshos/go-entrypoint/sql/escrow"
	"github.com/spacemeshos/go-entrypoint/sql/sequences"
	"github.com/spacemeshos/go-entrypoint/sql/stakes"
	"github.com/spacemeshos/go-entrypoint/sql/storage"
)

var (
	// ErrInsufficientFunds is returned when a balance would become negative.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrOverflow is returned when a balance would exceed uint64.
	ErrOverflow = errors.New("state: balance overflow")
	// ErrAccountExists is returned when spawning over an address bound to a template.
	ErrAccountExists = errors.New("state: account exists")
)

// StateDB caches state objects loaded from the committed state and records every
// modification in a journal so that any suffix of modifications can be reverted.
//
// StateDB is not safe for concurrent use.
type StateDB struct {
	loader  Loader
	objects map[types.Address]*stateObj
	journal *journal

	// Errors from the loader are memoized here, the engine and templates can't deal
	// with them in the middle of the execution. The first one is returned by Error and Commit.
	dbErr error
}

// New creates state on top of the loader.
func New(loader Loader) *StateDB {
	return &StateDB{
		loader:  loader,
		objects: map[types.Address]*stateObj{},
		journal: newJournal(),
	}
}

// NewFromDB creates state on top of the database.
func NewFromDB(db sql.Executor) *StateDB {
	return New(DBLoader{Executor: db})
}

// setError remembers the first non-nil error it is called with.
func (s *StateDB) setError(err error) {
	if s.dbErr == nil {
		s.dbErr = err
	}
}

// Error returns db error if it occurred.
func (s *StateDB) Error() error {
	return s.dbErr
}

func (s *StateDB) getStateObj(address types.Address) *stateObj {
	if obj, exist := s.objects[address]; exist {
		return obj
	}
	account, err := s.loader.Account(address)
	if err != nil {
		s.setError(fmt.Errorf("load account %v: %w", address, err))
	}
	account.Address = address
	balance, err := s.loader.Escrow(address)
	if err != nil {
		s.setError(fmt.Errorf("load escrow %v: %w", address, err))
	}
	stake, err := s.loader.Stake(address)
	if err != nil {
		s.setError(fmt.Errorf("load stake %v: %w", address, err))
	}
	obj := newObject(account, balance, stake)
	s.objects[address] = obj
	return obj
}

// Exist reports whether the address is bound to a template.
func (s *StateDB) Exist(address types.Address) bool {
	return s.getStateObj(address).account.HasCode()
}

// GetAccount returns a copy of the account.
func (s *StateDB) GetAccount(address types.Address) types.Account {
	account := s.getStateObj(address).account
	if account.Template != nil {
		template := *account.Template
		account.Template = &template
	}
	account.State = slices.Clone(account.State)
	return account
}

// GetBalance returns native balance of the address.
func (s *StateDB) GetBalance(address types.Address) uint64 {
	return s.getStateObj(address).account.Balance
}

// AddBalance adds amount to the native balance.
func (s *StateDB) AddBalance(address types.Address, amount uint64) error {
	obj := s.getStateObj(address)
	sum, carry := bits.Add64(obj.account.Balance, amount, 0)
	if carry != 0 {
		return fmt.Errorf("%w: %v", ErrOverflow, address)
	}
	s.setBalance(obj, sum)
	return nil
}

// SubBalance subtracts amount from the native balance.
func (s *StateDB) SubBalance(address types.Address, amount uint64) error {
	obj := s.getStateObj(address)
	if obj.account.Balance < amount {
		return fmt.Errorf("%w: %v has %d, needs %d", ErrInsufficientFunds, address, obj.account.Balance, amount)
	}
	s.setBalance(obj, obj.account.Balance-amount)
	return nil
}

func (s *StateDB) setBalance(obj *stateObj, balance uint64) {
	prev := obj.account.Balance
	s.journal.append(journalEntry{address: obj.address, revert: func(obj *stateObj) {
		obj.account.Balance = prev
	}})
	obj.account.Balance = balance
}

// Spawn binds address to the template with immutable instance state.
func (s *StateDB) Spawn(address, template types.Address, state []byte) error {
	obj := s.getStateObj(address)
	if obj.account.HasCode() {
		return fmt.Errorf("%w: %v", ErrAccountExists, address)
	}
	s.journal.append(journalEntry{address: address, revert: func(obj *stateObj) {
		obj.account.Template = nil
		obj.account.State = nil
	}})
	obj.account.Template = &template
	obj.account.State = slices.Clone(state)
	return nil
}

// GetStorage returns value stored by the instance under key, nil if missing.
func (s *StateDB) GetStorage(address types.Address, key types.Hash32) []byte {
	obj := s.getStateObj(address)
	if value, exist := obj.storage[key]; exist {
		return value
	}
	value, err := s.loader.Storage(address, key)
	if err != nil {
		s.setError(fmt.Errorf("load storage %v/%v: %w", address, key, err))
	}
	obj.storage[key] = value
	return value
}

// SetStorage stores a copy of value under key, empty value deletes the key.
func (s *StateDB) SetStorage(address types.Address, key types.Hash32, value []byte) {
	prev := s.GetStorage(address, key)
	obj := s.objects[address]
	s.journal.append(journalEntry{address: address, revert: func(obj *stateObj) {
		obj.storage[key] = prev
	}})
	if len(value) == 0 {
		obj.storage[key] = nil
	} else {
		obj.storage[key] = slices.Clone(value)
	}
}

// GetSequence returns the next expected counter of the queue.
func (s *StateDB) GetSequence(address types.Address, key types.SequenceKey) uint64 {
	obj := s.getStateObj(address)
	if counter, exist := obj.sequences[key]; exist {
		return counter
	}
	counter, err := s.loader.Sequence(address, key)
	if err != nil {
		s.setError(fmt.Errorf("load sequence %v: %w", address, err))
	}
	obj.sequences[key] = counter
	return counter
}

// SetSequence updates the next expected counter of the queue.
func (s *StateDB) SetSequence(address types.Address, key types.SequenceKey, counter uint64) {
	prev := s.GetSequence(address, key)
	s.journal.append(journalEntry{address: address, revert: func(obj *stateObj) {
		obj.sequences[key] = prev
	}})
	s.objects[address].sequences[key] = counter
}

// GetEscrow returns prepaid balance of the address.
func (s *StateDB) GetEscrow(address types.Address) uint64 {
	return s.getStateObj(address).escrow
}

// SetEscrow updates prepaid balance of the address.
func (s *StateDB) SetEscrow(address types.Address, balance uint64) {
	obj := s.getStateObj(address)
	prev := obj.escrow
	s.journal.append(journalEntry{address: address, revert: func(obj *stateObj) {
		obj.escrow = prev
	}})
	obj.escrow = balance
}

// GetStake returns stake of the address.
func (s *StateDB) GetStake(address types.Address) types.Stake {
	return s.getStateObj(address).stake
}

// SetStake updates stake of the address.
func (s *StateDB) SetStake(address types.Address, stake types.Stake) {
	obj := s.getStateObj(address)
	prev := obj.stake
	s.journal.append(journalEntry{address: address, revert: func(obj *stateObj) {
		obj.stake = prev
	}})
	obj.stake = stake
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	return s.journal.length()
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	if revid < 0 || revid > s.journal.length() {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	s.journal.revert(s, revid)
}

// Dirty returns addresses with changes that survived reverts, sorted.
func (s *StateDB) Dirty() []types.Address {
	dirty := make([]types.Address, 0, len(s.journal.dirties))
	for address := range s.journal.dirties {
		dirty = append(dirty, address)
	}
	slices.SortFunc(dirty, func(a, b types.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return dirty
}

// Commit writes dirty objects using the executor and returns digest of the written changes.
// The journal is cleared, the state remains usable.
func (s *StateDB) Commit(db sql.Executor) (types.Hash32, error) {
	if s.dbErr != nil {
		return types.Hash32{}, s.dbErr
	}
	hasher := hash.GetHasher()
	defer func() {
		hasher.Reset()
		hash.PutHasher(hasher)
	}()
	buf := make([]byte, 8)
	writeUint := func(v uint64) {
		binary.LittleEndian.PutUint64(buf, v)
		hasher.Write(buf)
	}
	for _, address := range s.Dirty() {
		obj := s.objects[address]
		if err := accounts.Update(db, &obj.account); err != nil {
			return types.Hash32{}, err
		}
		if err := escrow.Set(db, address, obj.escrow); err != nil {
			return types.Hash32{}, err
		}
		if err := stakes.Set(db, address, obj.stake); err != nil {
			return types.Hash32{}, err
		}
		hasher.Write(address[:])
		writeUint(obj.account.Balance)
		if obj.account.Template != nil {
			hasher.Write(obj.account.Template[:])
			hasher.Write(obj.account.State)
		}
		writeUint(obj.escrow)
		writeUint(obj.stake.Amount)
		writeUint(uint64(obj.stake.UnstakeDelay))
		if !obj.stake.WithdrawReady.IsZero() {
			writeUint(uint64(obj.stake.WithdrawReady.UnixNano()))
		}

		keys := make([]types.Hash32, 0, len(obj.storage))
		for key := range obj.storage {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, func(a, b types.Hash32) int {
			return bytes.Compare(a[:], b[:])
		})
		for _, key := range keys {
			value := obj.storage[key]
			if err := storage.Set(db, address, key, value); err != nil {
				return types.Hash32{}, err
			}
			hasher.Write(key[:])
			hasher.Write(value)
		}

		queues := make([]types.SequenceKey, 0, len(obj.sequences))
		for key := range obj.sequences {
			queues = append(queues, key)
		}
		slices.SortFunc(queues, func(a, b types.SequenceKey) int {
			return bytes.Compare(a[:], b[:])
		})
		for _, key := range queues {
			if err := sequences.Set(db, address, key, obj.sequences[key]); err != nil {
				return types.Hash32{}, err
			}
			hasher.Write(key[:])
			writeUint(obj.sequences[key])
		}
	}
	var root types.Hash32
	hasher.Sum(root[:0])
	s.journal.reset()
	return root, nil
}
