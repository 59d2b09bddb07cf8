package market

import "math/big"

// InstructionKind tags the asset movement an instruction describes.
type InstructionKind string

const (
	// InstrNativeTransfer pays native coins to a recipient.
	InstrNativeTransfer InstructionKind = "native_transfer"
	// InstrTokenTransfer instructs a token contract to pay a recipient.
	InstrTokenTransfer InstructionKind = "token_transfer"
	// InstrNFTTransfer moves one NFT to a recipient.
	InstrNFTTransfer InstructionKind = "nft_transfer"
)

// Instruction is an asset movement the engine wants executed. The engine
// never moves funds itself: the dispatcher forwards instructions to the
// external transfer subsystem after the call commits.
type Instruction struct {
	Kind          InstructionKind
	To            string
	Denom         string
	Amount        *big.Int
	TokenContract string
	Collection    string
	TokenID       string
}

func nativeTransfer(to, denom string, amount *big.Int) Instruction {
	return Instruction{Kind: InstrNativeTransfer, To: to, Denom: denom, Amount: new(big.Int).Set(amount)}
}

func tokenTransfer(contract, to string, amount *big.Int) Instruction {
	return Instruction{Kind: InstrTokenTransfer, TokenContract: contract, To: to, Amount: new(big.Int).Set(amount)}
}

func nftTransfer(collection, tokenID, to string) Instruction {
	return Instruction{Kind: InstrNFTTransfer, Collection: collection, TokenID: tokenID, To: to}
}

// refundInstruction pays a removed bid back to its bidder, as a native
// transfer when the bid escrowed coins and a token transfer otherwise.
func refundInstruction(bidder, denom, tokenContract string, amount *big.Int) Instruction {
	if tokenContract == "" {
		return nativeTransfer(bidder, denom, amount)
	}
	return tokenTransfer(tokenContract, bidder, amount)
}
