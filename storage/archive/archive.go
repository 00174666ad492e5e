package archive

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog"

	"github.com/orbitnet/orbit/consensus"
	"github.com/orbitnet/orbit/model/orbit"
)

// ErrNotFound is returned when the archive holds no entry for a height.
var ErrNotFound = errors.New("not found in archive")

// key prefixes
const (
	codeFinalized = 0x01
	codeCatchUp   = 0x02
)

// finalizedBundle is the stored record per finalized height.
type finalizedBundle struct {
	Proposal     *orbit.BlockProposal
	Finalization *orbit.Finalization
}

// Archive persists finalized history beyond the validated pool's retention
// window. Catch-up package construction and restarting replicas read from
// here; the consensus pool itself owns no persistent state.
type Archive struct {
	log zerolog.Logger
	db  *badger.DB
}

var _ consensus.FinalizationConsumer = (*Archive)(nil)
var _ consensus.CatchUpConsumer = (*Archive)(nil)

// NewArchive wraps a badger instance.
func NewArchive(log zerolog.Logger, db *badger.DB) *Archive {
	return &Archive{
		log: log.With().Str("component", "archive").Logger(),
		db:  db,
	}
}

// OnFinalized persists the finalized block and its certificate. Implements
// the driver's finalized-height callback; persistence failures are logged,
// never propagated back into consensus.
func (a *Archive) OnFinalized(proposal *orbit.BlockProposal, fin *orbit.Finalization) {
	err := a.StoreFinalized(proposal, fin)
	if err != nil {
		a.log.Error().Err(err).
			Uint64("height", uint64(fin.Height)).
			Msg("could not archive finalized block")
	}
}

// StoreFinalized writes the finalized block and certificate at its height.
// Overwrites are tolerated: finalized content at a height never changes.
func (a *Archive) StoreFinalized(proposal *orbit.BlockProposal, fin *orbit.Finalization) error {
	if proposal.ID() != fin.BlockID {
		return fmt.Errorf("finalization %v does not certify block %v", fin.BlockID, proposal.ID())
	}
	return a.db.Update(insert(heightKey(codeFinalized, fin.Height), finalizedBundle{
		Proposal:     proposal,
		Finalization: fin,
	}))
}

// FinalizedByHeight retrieves the finalized block and certificate at the
// given height. Returns ErrNotFound when the height was never archived.
func (a *Archive) FinalizedByHeight(height orbit.Height) (*orbit.BlockProposal, *orbit.Finalization, error) {
	var bundle finalizedBundle
	err := a.db.View(retrieve(heightKey(codeFinalized, height), &bundle))
	if err != nil {
		return nil, nil, err
	}
	return bundle.Proposal, bundle.Finalization, nil
}

// OnCatchUpPackage persists a validated catch-up package. Implements the
// driver's catch-up callback; persistence failures are logged, never
// propagated back into consensus.
func (a *Archive) OnCatchUpPackage(cup *orbit.CatchUpPackage) {
	err := a.StoreCatchUp(cup)
	if err != nil {
		a.log.Error().Err(err).
			Uint64("height", uint64(cup.Height)).
			Msg("could not archive catch-up package")
	}
}

// StoreCatchUp writes a catch-up package at its height.
func (a *Archive) StoreCatchUp(cup *orbit.CatchUpPackage) error {
	return a.db.Update(insert(heightKey(codeCatchUp, cup.Height), cup))
}

// NewestCatchUp retrieves the catch-up package with the highest height.
// Returns ErrNotFound when none was archived yet.
func (a *Archive) NewestCatchUp() (*orbit.CatchUpPackage, error) {
	var cup orbit.CatchUpPackage
	err := a.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte{codeCatchUp}
		it := tx.NewIterator(opts)
		defer it.Close()

		// seek to the highest possible key under the prefix
		it.Seek(heightKey(codeCatchUp, ^orbit.Height(0)))
		if !it.Valid() {
			return ErrNotFound
		}
		return it.Item().Value(func(val []byte) error {
			return cbor.Unmarshal(val, &cup)
		})
	})
	if err != nil {
		return nil, err
	}
	return &cup, nil
}

// heightKey builds a prefix+big-endian-height key, so iteration order over a
// prefix is height order.
func heightKey(code byte, height orbit.Height) []byte {
	key := make([]byte, 9)
	key[0] = code
	binary.BigEndian.PutUint64(key[1:], uint64(height))
	return key
}

// insert encodes the entity with CBOR and writes it under the key.
func insert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		val, err := cbor.Marshal(entity)
		if err != nil {
			return fmt.Errorf("could not encode entity: %w", err)
		}
		err = tx.Set(key, val)
		if err != nil {
			return fmt.Errorf("could not store data: %w", err)
		}
		return nil
	}
}

// retrieve reads the value under the key and decodes it into the entity.
func retrieve(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, entity)
		})
	}
}
