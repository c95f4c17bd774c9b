package core

import "github.com/shopspring/decimal"

// TransactionSummary aggregates a set of transactions the way the summary
// cards above the transaction list do.
type TransactionSummary struct {
	TotalVolume decimal.Decimal `json:"total_volume"`
	BuyOrders   int             `json:"buy_orders"`
	SellOrders  int             `json:"sell_orders"`
	Count       int             `json:"count"`
}

// Summarize computes volume and direction counts. Amounts are summed
// regardless of currency.
func Summarize(txs []Transaction) TransactionSummary {
	s := TransactionSummary{TotalVolume: decimal.Zero}
	for _, tx := range txs {
		s.TotalVolume = s.TotalVolume.Add(tx.Amount)
		switch tx.Direction {
		case Buy:
			s.BuyOrders++
		case Sell:
			s.SellOrders++
		}
	}
	s.Count = len(txs)
	return s
}

// Overview is the dashboard's stat card set.
type Overview struct {
	TotalUsers     int             `json:"total_users"`
	ActiveUsers    int             `json:"active_users"`
	ActiveAccounts int             `json:"active_accounts"`
	SignalSources  int             `json:"signal_sources"`
	ActiveSources  int             `json:"active_sources"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	Transactions   int             `json:"transactions"`
}

func BuildOverview(users []Person, accounts []Account, sources []Source, txs []Transaction) Overview {
	o := Overview{
		TotalUsers:    len(users),
		SignalSources: len(sources),
	}
	for _, u := range users {
		if u.Active {
			o.ActiveUsers++
		}
	}
	for _, a := range accounts {
		if a.Status == AccountActive {
			o.ActiveAccounts++
		}
	}
	for _, s := range sources {
		if s.Status == SourceActive {
			o.ActiveSources++
		}
	}
	sum := Summarize(txs)
	o.TotalVolume = sum.TotalVolume
	o.Transactions = sum.Count
	return o
}
