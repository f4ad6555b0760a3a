package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryPeriod is the bucket width used by balance-history reconstruction.
type HistoryPeriod string

const (
	PeriodDaily   HistoryPeriod = "daily"
	PeriodWeekly  HistoryPeriod = "weekly"
	PeriodMonthly HistoryPeriod = "monthly"
)

// DailySpend is one day's aggregated outflow for an account.
type DailySpend struct {
	Day    time.Time       `db:"day" json:"day"`
	Amount decimal.Decimal `db:"amount" json:"amount"`
}

// BalancePoint is a reconstructed balance snapshot at a bucket start date.
type BalancePoint struct {
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// StatementEntry is one transaction leg as seen from the statement account,
// with a signed amount (inflow positive, outflow negative) and the running
// balance after the entry is applied.
type StatementEntry struct {
	TxID           string          `json:"tx_id"`
	TxTime         time.Time       `json:"tx_time"`
	Type           TransactionType `json:"type"`
	CounterUser    *int64          `json:"counter_user_id"`    // The other party, if any
	CounterAccount *int64          `json:"counter_account_id"` //
	Amount         decimal.Decimal `json:"amount"`             // Signed
	Balance        decimal.Decimal `json:"balance"`            // Opening balance + cumulative signed amounts
}

// Statement is the account activity over a window, anchored at the opening
// balance: the net of all transactions strictly before the window start.
type Statement struct {
	AccountID      int64            `json:"account_id"`
	Start          time.Time        `json:"start"`
	End            time.Time        `json:"end"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Entries        []StatementEntry `json:"entries"`
}
