package signature

import (
	"fmt"

	"github.com/orbitnet/orbit/model/orbit"
)

// Domain separation tags for protocol signatures. Every share type signs
// over a different domain so shares can never be replayed across artifact
// kinds.
const (
	protocolPrefix  = "ORBIT-"
	protocolVersion = "-V00"

	domainRandomBeacon = "Random_Beacon"
	domainRandomTape   = "Random_Tape"
	domainProposal     = "Block_Proposal"
	domainNotarization = "Notarization"
	domainFinalization = "Finalization"
	domainCatchUp      = "Catch_Up"
)

func tag(domain string) string {
	return protocolPrefix + domain + protocolVersion
}

type signedBody struct {
	Tag     string
	Height  orbit.Height
	Subject orbit.Identifier
}

func payload(domain string, height orbit.Height, subject orbit.Identifier) []byte {
	id := orbit.MakeID(signedBody{Tag: tag(domain), Height: height, Subject: subject})
	return id[:]
}

// BeaconPayload is the message signed by random beacon shares at a height;
// the subject is the parent beacon's ID, chaining the beacon.
func BeaconPayload(height orbit.Height, parent orbit.Identifier) []byte {
	return payload(domainRandomBeacon, height, parent)
}

// TapePayload is the message signed by random tape shares at a height.
func TapePayload(height orbit.Height) []byte {
	return payload(domainRandomTape, height, orbit.ZeroID)
}

// ProposalPayload is the message the block maker signs: the block's ID.
func ProposalPayload(block *orbit.Block) []byte {
	return payload(domainProposal, block.Height, block.ID())
}

// NotarizationPayload is the message signed by notarization shares.
func NotarizationPayload(height orbit.Height, blockID orbit.Identifier) []byte {
	return payload(domainNotarization, height, blockID)
}

// FinalizationPayload is the message signed by finalization shares.
func FinalizationPayload(height orbit.Height, blockID orbit.Identifier) []byte {
	return payload(domainFinalization, height, blockID)
}

// CatchUpPayload is the message signed by catch-up shares.
func CatchUpPayload(height orbit.Height, blockID orbit.Identifier) []byte {
	return payload(domainCatchUp, height, blockID)
}

// SignedPayload returns the message the given artifact's signature covers.
// For aggregate artifacts this is the common message all contributing shares
// signed.
func SignedPayload(artifact orbit.Artifact) ([]byte, error) {
	switch a := artifact.(type) {
	case *orbit.RandomBeaconShare:
		return BeaconPayload(a.Height, a.Parent), nil
	case *orbit.RandomBeacon:
		return BeaconPayload(a.Height, a.Parent), nil
	case *orbit.RandomTapeShare:
		return TapePayload(a.Height), nil
	case *orbit.RandomTape:
		return TapePayload(a.Height), nil
	case *orbit.BlockProposal:
		return ProposalPayload(a.Block), nil
	case *orbit.NotarizationShare:
		return NotarizationPayload(a.Height, a.BlockID), nil
	case *orbit.Notarization:
		return NotarizationPayload(a.Height, a.BlockID), nil
	case *orbit.FinalizationShare:
		return FinalizationPayload(a.Height, a.BlockID), nil
	case *orbit.Finalization:
		return FinalizationPayload(a.Height, a.BlockID), nil
	case *orbit.CatchUpShare:
		return CatchUpPayload(a.Height, a.BlockID), nil
	case *orbit.CatchUpPackage:
		return CatchUpPayload(a.Height, a.BlockID), nil
	}
	return nil, fmt.Errorf("unknown artifact type %T", artifact)
}
