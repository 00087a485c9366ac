package mocks

import (
	"context"

	"github.com/huutrungle2001/moral-duel-api/internal/ai"
	"github.com/huutrungle2001/moral-duel-api/internal/ledger"
)

// MockLedger is a simple mock for the ledger client
type MockLedger struct {
	SubmitCommitmentFunc     func(ctx context.Context, caseID uint, verdictHash string) (string, error)
	SubmitPayoutFunc         func(ctx context.Context, walletAddress string, amount int64) (string, error)
	GetTransactionStatusFunc func(ctx context.Context, txID string) (*ledger.TxStatus, error)
	GetNetworkInfoFunc       func(ctx context.Context) (*ledger.NetworkInfo, error)
}

func (m *MockLedger) SubmitCommitment(ctx context.Context, caseID uint, verdictHash string) (string, error) {
	if m.SubmitCommitmentFunc != nil {
		return m.SubmitCommitmentFunc(ctx, caseID, verdictHash)
	}
	return "0xmocktx", nil
}

func (m *MockLedger) SubmitPayout(ctx context.Context, walletAddress string, amount int64) (string, error) {
	if m.SubmitPayoutFunc != nil {
		return m.SubmitPayoutFunc(ctx, walletAddress, amount)
	}
	return "0xmockpayout", nil
}

func (m *MockLedger) GetTransactionStatus(ctx context.Context, txID string) (*ledger.TxStatus, error) {
	if m.GetTransactionStatusFunc != nil {
		return m.GetTransactionStatusFunc(ctx, txID)
	}
	return &ledger.TxStatus{TxID: txID, Status: ledger.TxStatusConfirmed, Confirmations: 1}, nil
}

func (m *MockLedger) GetNetworkInfo(ctx context.Context) (*ledger.NetworkInfo, error) {
	if m.GetNetworkInfoFunc != nil {
		return m.GetNetworkInfoFunc(ctx)
	}
	return &ledger.NetworkInfo{Network: "testnet", Healthy: true}, nil
}

// MockGenerator is a simple mock for the AI case generator
type MockGenerator struct {
	GenerateCaseFunc func(ctx context.Context) (*ai.GeneratedCase, error)
	JudgeCaseFunc    func(ctx context.Context, title, caseContext string) (*ai.GeneratedCase, error)
}

func (m *MockGenerator) GenerateCase(ctx context.Context) (*ai.GeneratedCase, error) {
	if m.GenerateCaseFunc != nil {
		return m.GenerateCaseFunc(ctx)
	}
	return &ai.GeneratedCase{
		Title:            "The Trolley Problem",
		Context:          "Five lives against one.",
		VerdictSide:      "YES",
		VerdictReasoning: "Minimizing harm outweighs the act/omission distinction.",
		Confidence:       0.8,
	}, nil
}

func (m *MockGenerator) JudgeCase(ctx context.Context, title, caseContext string) (*ai.GeneratedCase, error) {
	if m.JudgeCaseFunc != nil {
		return m.JudgeCaseFunc(ctx, title, caseContext)
	}
	return &ai.GeneratedCase{
		Title:            title,
		Context:          caseContext,
		VerdictSide:      "NO",
		VerdictReasoning: "The consent given was not informed.",
		Confidence:       0.6,
	}, nil
}
