package chain

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt is the confirmation record for a mined transaction.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
}

// CancelledWhilePendingError reports that the caller cancelled while a
// broadcast transaction was still unconfirmed. The transaction cannot be
// retracted and may still land on chain.
type CancelledWhilePendingError struct {
	TxHash common.Hash
}

func (e *CancelledWhilePendingError) Error() string {
	return fmt.Sprintf("cancelled while transaction %s was pending; it may still be mined", e.TxHash.Hex())
}

var receiptPollInterval = 2 * time.Second

// WaitReceipt blocks until the transaction is mined or the timeout
// elapses, polling the node at a fixed interval. Cancellation of ctx is
// surfaced as a CancelledWhilePendingError since the submitted transaction
// stays in flight regardless.
func WaitReceipt(ctx context.Context, client Client, txHash common.Hash, timeout time.Duration) (*Receipt, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var receipt *types.Receipt
	err := retry.Do(
		func() error {
			r, err := client.TransactionReceipt(waitCtx, txHash)
			if err != nil {
				return err
			}
			receipt = r
			return nil
		},
		retry.Context(waitCtx),
		retry.Attempts(0),
		retry.Delay(receiptPollInterval),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &CancelledWhilePendingError{TxHash: txHash}
		}
		if waitCtx.Err() != nil {
			return nil, fmt.Errorf("timed out after %s waiting for transaction %s: %w", timeout, txHash.Hex(), err)
		}
		return nil, fmt.Errorf("failed to fetch receipt for %s: %w", txHash.Hex(), err)
	}

	return &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
		Success:     receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}
