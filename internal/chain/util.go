package chain

import (
	"encoding/json"
	"fmt"
	"strings"
)

func isAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

// formatTxError renders the node's structured transaction error into a
// stable detail string for the receipt.
func formatTxError(txErr interface{}) string {
	if txErr == nil {
		return ""
	}
	if b, err := json.Marshal(txErr); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", txErr)
}
