package orbit

import (
	"time"
)

// Block is one candidate payload for a round. Blocks reference their parent
// by ID and form a tree rooted at genesis; before finalization multiple
// blocks may coexist at one height, after finalization exactly one survives.
type Block struct {
	Height    Height
	Parent    Identifier
	Payload   Identifier
	Timestamp time.Time
}

// ID returns the content hash of the block. The timestamp is part of the
// identity: two proposals for the same payload at different times are
// distinct blocks.
func (b *Block) ID() Identifier {
	return makeArtifactID(KindBlockProposal, struct {
		Height    Height
		Parent    Identifier
		Payload   Identifier
		Timestamp int64
	}{b.Height, b.Parent, b.Payload, b.Timestamp.UnixNano()})
}

// GenesisBlock returns the root of the block tree.
func GenesisBlock() *Block {
	return &Block{
		Height:    0,
		Parent:    ZeroID,
		Payload:   ZeroID,
		Timestamp: time.Unix(0, 0).UTC(),
	}
}

// BlockProposal is a block plus the proposer's signature and the rank the
// proposer held when it proposed.
type BlockProposal struct {
	Block      *Block
	ProposerID Identifier
	Rank       Rank
	Sig        Signature
}

// ID of a proposal is the ID of the proposed block; the pool deduplicates
// re-broadcast proposals of the same block on this.
func (p *BlockProposal) ID() Identifier {
	return p.Block.ID()
}

func (p *BlockProposal) ArtifactHeight() Height { return p.Block.Height }
func (p *BlockProposal) Kind() ArtifactKind     { return KindBlockProposal }
