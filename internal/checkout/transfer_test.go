package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/domain"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

type transferBackend struct {
	calls  int
	got    domain.TransferRequest
	result *domain.TransferResult
	err    error
}

func (b *transferBackend) Transfer(_ context.Context, req domain.TransferRequest) (*domain.TransferResult, error) {
	b.calls++
	b.got = req
	return b.result, b.err
}

func TestTransfer_SuccessResetsFormAndRefreshesOnce(t *testing.T) {
	api := &transferBackend{result: &domain.TransferResult{Transaction: &domain.Transaction{ID: 7}}}
	refreshes := 0
	ctrl := NewTransferController("s1", api, func(context.Context) { refreshes++ }, nil, nil)

	_, err := ctrl.Submit(context.Background(), TransferForm{FromAccountNumber: "100", ToAccountNumber: "200", Amount: "50"})
	require.NoError(t, err)

	assert.Equal(t, 1, refreshes)
	state := ctrl.State()
	assert.Equal(t, TransferForm{}, state.Form)
	assert.True(t, state.Succeeded)
	assert.Equal(t, domain.AccountNumber("100"), api.got.FromAccountNumber)
	assert.Equal(t, "50", api.got.Amount.String())
}

func TestTransfer_ServerRejectionKeepsForm(t *testing.T) {
	api := &transferBackend{err: &backend.RemoteError{Status: 400, Message: "insufficient funds"}}
	refreshes := 0
	ctrl := NewTransferController("s1", api, func(context.Context) { refreshes++ }, nil, nil)
	form := TransferForm{FromAccountNumber: "100", ToAccountNumber: "200", Amount: "50"}

	_, err := ctrl.Submit(context.Background(), form)
	require.Error(t, err)

	state := ctrl.State()
	assert.Equal(t, form, state.Form)
	assert.Equal(t, "insufficient funds", state.Message)
	assert.False(t, state.Succeeded)
	assert.Zero(t, refreshes)
}

func TestTransfer_GenericMessageWithoutServerText(t *testing.T) {
	api := &transferBackend{err: &backend.RemoteError{Status: 500}}
	ctrl := NewTransferController("s1", api, nil, nil, nil)

	_, err := ctrl.Submit(context.Background(), TransferForm{FromAccountNumber: "1", ToAccountNumber: "2", Amount: "1.25"})
	require.Error(t, err)
	assert.Equal(t, transferFailedMessage, ctrl.State().Message)
}

func TestTransfer_MalformedInputNeverReachesBackend(t *testing.T) {
	api := &transferBackend{}
	ctrl := NewTransferController("s1", api, nil, nil, nil)

	for _, f := range []TransferForm{
		{FromAccountNumber: "abc", ToAccountNumber: "200", Amount: "50"},
		{FromAccountNumber: "100", ToAccountNumber: "", Amount: "50"},
		{FromAccountNumber: "100", ToAccountNumber: "200", Amount: "fifty"},
		{FromAccountNumber: "100", ToAccountNumber: "200", Amount: "0"},
		{FromAccountNumber: "100", ToAccountNumber: "200", Amount: "-5"},
	} {
		_, err := ctrl.Submit(context.Background(), f)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationRejected), "%+v", f)
		assert.Equal(t, f, ctrl.State().Form)
	}
	assert.Zero(t, api.calls)
}
