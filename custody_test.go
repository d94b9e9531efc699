package custody

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitwit/custody/settlement"
	"github.com/vitwit/custody/transactions"
	"github.com/vitwit/custody/types"
)

type fakeClient struct {
	created  []*types.TransactionRequest
	statuses []types.TransactionStatus
	polls    int
	closed   bool
}

func (f *fakeClient) CreateTransaction(_ context.Context, req *types.TransactionRequest) (*types.CreateTransactionResponse, error) {
	f.created = append(f.created, req)
	return &types.CreateTransactionResponse{ID: "tx-42", Status: types.StatusSubmitted}, nil
}

func (f *fakeClient) GetTransactionByID(_ context.Context, id string) (*types.TransactionResponse, error) {
	st := f.statuses[min(f.polls, len(f.statuses)-1)]
	f.polls++
	tx := &types.TransactionResponse{ID: id, Status: st}
	if st == types.StatusCompleted {
		tx.TxHash = "0xabc"
		tx.FeeInfo = &types.FeeInfo{NetworkFee: "100"}
		tx.NetAmount = "900"
	}
	return tx, nil
}

func (f *fakeClient) Close() { f.closed = true }

func testConfig() *types.Config {
	return &types.Config{
		RawVaultID:       "4",
		RawAssetID:       "FLR",
		ContractWalletID: "contract-wallet",
		WaitMaxDuration:  3 * time.Second,
		WaitPollInterval: time.Second,
	}
}

var instantSleep = settlement.SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() })

func TestSendRawMessage(t *testing.T) {
	client := &fakeClient{}
	c, err := New(client, testConfig())
	require.NoError(t, err)

	handle, err := SendRawMessage(context.Background(), c, map[string]string{"msg": "0x01"})
	require.NoError(t, err)
	assert.Equal(t, "tx-42", handle.ID)

	require.Len(t, client.created, 1)
	req := client.created[0]
	assert.Equal(t, types.OperationRaw, req.Operation)
	assert.Equal(t, "FLR", req.AssetID)
	assert.Equal(t, "4", req.Source.ID)

	_, err = SendRawMessage[any](context.Background(), c, nil)
	assert.True(t, types.HasCode(err, types.ErrInvalidPayload))
	assert.Len(t, client.created, 1)
}

func TestSendContractCall(t *testing.T) {
	client := &fakeClient{}
	c, err := New(client, testConfig())
	require.NoError(t, err)

	_, err = c.SendContractCall(context.Background(), transactions.ContractCallParams{
		Token:         "ETH",
		SourceVaultID: 11,
		Amount:        decimal.RequireFromString("0.5"),
		CallData:      "0xdeadbeef",
	})
	require.NoError(t, err)

	req := client.created[0]
	assert.Equal(t, "11", req.Source.ID)
	assert.Equal(t, "0.5", req.Amount)
	assert.Equal(t, "contract-wallet", req.Destination.ID)
}

func TestWaitForCompletion_UsesConfiguredPolicy(t *testing.T) {
	client := &fakeClient{statuses: []types.TransactionStatus{types.StatusPendingSignature}}
	c, err := New(client, testConfig(), WithWaitOptions(settlement.WithSleeper(instantSleep)))
	require.NoError(t, err)

	_, err = c.WaitForCompletion(context.Background(), &types.CreateTransactionResponse{ID: "tx-42"})
	assert.True(t, types.HasCode(err, types.ErrWaitTimeout))
	assert.Contains(t, err.Error(), "after 4 tries in 3 seconds")
	assert.Equal(t, 4, client.polls)
}

func TestWaitForCompletion_Completed(t *testing.T) {
	client := &fakeClient{statuses: []types.TransactionStatus{types.StatusBroadcasting, types.StatusCompleted}}
	c, err := New(client, testConfig(),
		WithWaitPolicy(10*time.Second, 2*time.Second),
		WithWaitOptions(settlement.WithSleeper(instantSleep)),
	)
	require.NoError(t, err)
	assert.Equal(t, settlement.Policy{MaxWait: 10 * time.Second, Interval: 2 * time.Second}, c.Settlement().Waiter().Policy())

	res, err := c.WaitForCompletion(context.Background(), &types.CreateTransactionResponse{ID: "tx-42"})
	require.NoError(t, err)
	assert.Equal(t, "0xabc", res.TxHash)
	assert.Equal(t, "100", res.Fee.String())
	assert.Equal(t, "900", res.NetAmount.String())
	assert.Equal(t, 2, res.Attempts)
}

func TestLookupsAndClose(t *testing.T) {
	client := &fakeClient{statuses: []types.TransactionStatus{types.StatusQueued}}
	c, err := New(client, testConfig())
	require.NoError(t, err)

	st, err := c.TransactionStatus(context.Background(), "tx-42")
	require.NoError(t, err)
	assert.Equal(t, types.StatusQueued, st)

	tx, err := c.Transaction(context.Background(), "tx-42")
	require.NoError(t, err)
	assert.Equal(t, "tx-42", tx.ID)

	assert.Same(t, client, c.Client())
	c.Close()
	assert.True(t, client.closed)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(nil, testConfig())
	assert.True(t, types.HasCode(err, types.ErrConfigError))

	_, err = New(&fakeClient{}, nil)
	assert.True(t, types.HasCode(err, types.ErrConfigError))

	_, err = NewFromConfig(&types.Config{APIKey: "k"})
	assert.True(t, types.HasCode(err, types.ErrConfigError))
}
