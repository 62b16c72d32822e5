package chain

import "fmt"

// NetworkError wraps a submission failure that happened before the transaction
// entered the chain: dial problems, nonce/gas estimation failures, node
// rejection. Nothing was transferred.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network rejected %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RevertError indicates the transaction was mined but execution reverted.
// The transfer did not take effect.
type RevertError struct {
	TxHash string
	Reason string
}

func (e *RevertError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("contract reverted tx %s", e.TxHash)
	}
	return fmt.Sprintf("contract reverted tx %s: %s", e.TxHash, e.Reason)
}
