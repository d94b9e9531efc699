package transactions

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vitwit/custody/types"
)

// PackCallData ABI-encodes a call of method with args and returns it as
// 0x-prefixed hex, ready for ContractCallParams.CallData.
func PackCallData(abiJSON, method string, args ...interface{}) (string, error) {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		return "", &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: "invalid contract abi",
			Err:     err,
		}
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return "", &types.CustodyError{
			Code:    types.ErrInvalidPayload,
			Message: fmt.Sprintf("failed to pack call to %s", method),
			Err:     err,
		}
	}
	return hexutil.Encode(data), nil
}
