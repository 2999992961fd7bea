package bangkokbank

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsil-design/joot-statements/extractor/common"
)

// Synthetic passbook-style statement with fake data. Buddhist Era dates,
// CR/DR columns with a running balance, one indented continuation line.
func getTestStatement() string {
	return strings.Join([]string{
		"BANGKOK BANK",
		"Bualuang Savings Account Statement",
		"เลขที่บัญชี / ACCOUNT NO.: XXX-X-XX123-4",
		"ตั้งแต่ 01/07/2568 ถึง 31/07/2568",
		"ยอดยกมา / BEGINNING BALANCE: 45,123.45",
		"",
		"01/07/2568  เงินเดือน SALARY ACME CO LTD  52,000.00 CR  97,123.45",
		"03/07/2568  ATM WITHDRAWAL  3,000.00 DR  94,123.45",
		"05/07/2568  BILL PAYMENT  1,200.50 DR  92,922.95",
		"   TRUE INTERNET JULY",
		"15/07/2568  ค่าธรรมเนียม FEE SMS ALERT  20.00 DR  92,902.95",
		"31/07/2568  ดอกเบี้ย INTEREST  45.10 CR  92,948.05",
		"ยอดคงเหลือ / ENDING BALANCE: 92,948.05",
	}, "\n")
}

func TestCanParse(t *testing.T) {
	p := New()
	if !p.CanParse(getTestStatement()) {
		t.Error("Expected statement to be recognized")
	}
	if p.CanParse("KRUNGSRI SAVINGS STATEMENT") {
		t.Error("Expected foreign statement not to be recognized")
	}
}

func TestParse_Period(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	require.True(t, result.Success)
	require.NotNil(t, result.Period)

	// Buddhist Era 2568 is 2025 in the common calendar.
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.Local), result.Period.StartDate)
	assert.Equal(t, time.Date(2025, time.July, 31, 0, 0, 0, 0, time.Local), result.Period.EndDate)
}

func TestParse_Summary(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	require.NotNil(t, result.Summary)
	require.NotNil(t, result.Summary.PreviousBalance)
	assert.Equal(t, "45123.45", result.Summary.PreviousBalance.String())
	require.NotNil(t, result.Summary.NewBalance)
	assert.Equal(t, "92948.05", result.Summary.NewBalance.String())
}

func TestParse_Account(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	require.NotNil(t, result.Account)
	assert.Equal(t, "1234", result.Account.AccountNumber)
	assert.Equal(t, "Savings Account", result.Account.CardType)
}

func TestParse_Transactions(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	require.Len(t, result.Transactions, 5)

	types := []common.TransactionType{}
	for _, tx := range result.Transactions {
		assert.Equal(t, "THB", tx.Currency)
		types = append(types, tx.Type)
	}
	assert.Equal(t, []common.TransactionType{
		common.TypeIncome,
		common.TypeCharge,
		common.TypePayment,
		common.TypeFee,
		common.TypeInterest,
	}, types)
}

func TestParse_SalaryDeposit(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	require.NotEmpty(t, result.Transactions)

	salary := result.Transactions[0]
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.Local), salary.Date)
	assert.Equal(t, "52000", salary.Amount.String())
	assert.Equal(t, common.TypeIncome, salary.Type)
	assert.Equal(t, "Income", salary.Category)
}

func TestParse_ContinuationLine(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})

	var bill *common.Transaction
	for i := range result.Transactions {
		if result.Transactions[i].Type == common.TypePayment {
			bill = &result.Transactions[i]
			break
		}
	}
	require.NotNil(t, bill, "expected a bill payment transaction")
	assert.Equal(t, "BILL PAYMENT TRUE INTERNET JULY", bill.Description)
	assert.Equal(t, "1200.5", bill.Amount.String())
}

func TestParse_Confidence(t *testing.T) {
	result := New().Parse(getTestStatement(), common.Options{})
	// Base 40 + period 15 + summary 15 + account 10 + 5 transactions.
	assert.Equal(t, 85, result.Confidence)
}

func TestParse_UnrecognizedText(t *testing.T) {
	result := New().Parse("KRUNGSRI SAVINGS STATEMENT", common.Options{})
	assert.False(t, result.Success)
	assert.Len(t, result.Errors, 1)
}
