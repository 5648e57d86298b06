package xrpl

// AMMInfoResult holds the pool fields of an amm_info response that the quote
// pipeline consumes. Reserves are polymorphic amounts; TradingFee is in units
// of 1/100,000 (so 500 = 0.5%).
type AMMInfoResult struct {
	Amount      Amount       `json:"amount"`
	Amount2     Amount       `json:"amount2"`
	TradingFee  int          `json:"trading_fee"`
	Account     string       `json:"account"`
	AuctionSlot *AuctionSlot `json:"auction_slot,omitempty"`
	VoteSlots   []VoteSlot   `json:"vote_slots,omitempty"`
}

// AuctionSlot is the discounted-fee slot of an AMM instance. Carried through
// for display; the quote math only uses the headline trading fee.
type AuctionSlot struct {
	Account    string `json:"account"`
	Expiration string `json:"expiration"`
	TimeSlot   int    `json:"time_interval"`
	Price      Amount `json:"price"`
}

// VoteSlot is one liquidity provider's fee vote on an AMM instance.
type VoteSlot struct {
	Account    string `json:"account"`
	TradingFee int    `json:"trading_fee"`
	VoteWeight int    `json:"vote_weight"`
}

// BookOffer is a single resting order from a book_offers response. The funded
// fields, when present, bound what the maker can actually honor; their absence
// means the offer is assumed fully backed.
type BookOffer struct {
	Account           string  `json:"Account"`
	TakerPays         Amount  `json:"TakerPays"`
	TakerGets         Amount  `json:"TakerGets"`
	Quality           string  `json:"quality,omitempty"`
	TakerPaysFunded   *Amount `json:"taker_pays_funded,omitempty"`
	TakerGetsFunded   *Amount `json:"taker_gets_funded,omitempty"`
	OwnerFunds        string  `json:"owner_funds,omitempty"`
	Sequence          uint32  `json:"Sequence"`
	Flags             uint32  `json:"Flags"`
	BookDirectory     string  `json:"BookDirectory,omitempty"`
	PreviousTxnLgrSeq uint32  `json:"PreviousTxnLgrSeq,omitempty"`
}
