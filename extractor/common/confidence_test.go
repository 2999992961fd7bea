package common

import (
	"testing"
	"time"
)

func TestCalculateConfidence_FullResult(t *testing.T) {
	result := &ParseResult{
		Success: true,
		Transactions: []Transaction{
			testTx(1, "A", "1.00"),
			testTx(2, "B", "2.00"),
			testTx(3, "C", "3.00"),
		},
		Period:  &StatementPeriod{EndDate: time.Date(2024, 12, 27, 0, 0, 0, 0, time.Local)},
		Summary: &Summary{},
		Account: &AccountInfo{AccountNumber: "1005"},
	}
	if got := CalculateConfidence(result); got != 83 {
		t.Errorf("Expected confidence 83, got %d", got)
	}
}

func TestCalculateConfidence_TransactionsOnly(t *testing.T) {
	result := &ParseResult{Success: true}
	for i := 1; i <= 10; i++ {
		result.Transactions = append(result.Transactions, testTx(i, "X", "1.00"))
	}
	if got := CalculateConfidence(result); got != 50 {
		t.Errorf("Expected confidence 50, got %d", got)
	}
}

func TestCalculateConfidence_TransactionSaturation(t *testing.T) {
	result := &ParseResult{Success: true}
	for i := 0; i < 50; i++ {
		result.Transactions = append(result.Transactions, testTx(1+i%28, "X", "1.00"))
	}
	if got := CalculateConfidence(result); got != 60 {
		t.Errorf("Expected confidence 60, got %d", got)
	}
}

func TestCalculateConfidence_Failed(t *testing.T) {
	result := FailedResult("amex", "empty statement text")
	if got := CalculateConfidence(&result); got != 0 {
		t.Errorf("Expected confidence 0 for failed parse, got %d", got)
	}
}

func TestCalculateConfidence_Nil(t *testing.T) {
	if got := CalculateConfidence(nil); got != 0 {
		t.Errorf("Expected confidence 0 for nil result, got %d", got)
	}
}
