package ports

import "context"

// TxAmount is one asset bundle on a transaction input or output. Quantity is
// a decimal string in base units, as indexers report it.
type TxAmount struct {
	Unit     string `json:"unit"`
	Quantity string `json:"quantity"`
}

// TxIO is a transaction input or output record.
type TxIO struct {
	Address string     `json:"address"`
	Amount  []TxAmount `json:"amount"`
}

// TxUTXOs is the indexer's view of a transaction's inputs and outputs.
type TxUTXOs struct {
	Hash    string `json:"hash"`
	Inputs  []TxIO `json:"inputs"`
	Outputs []TxIO `json:"outputs"`
}

// LedgerIndexer is a read-only client over the ledger's transaction history.
// Implementations must bound the lookup with the request context.
type LedgerIndexer interface {
	TransactionUTXOs(ctx context.Context, txHash string) (TxUTXOs, error)
}
