package http

import "signaldesk/internal/core"

type accountView struct {
	core.Account
	BalanceDisplay string `json:"balance_display"`
}

type transactionView struct {
	core.Transaction
	AmountDisplay string `json:"amount_display"`
}

func personView(p core.Person) any { return p }

func sourceView(s core.Source) any { return s }

func newAccountView(a core.Account) any {
	return accountView{Account: a, BalanceDisplay: core.FormatMoney(a.Balance, a.Currency)}
}

func newTransactionView(t core.Transaction) any {
	return transactionView{Transaction: t, AmountDisplay: core.FormatMoney(t.Amount, t.Currency)}
}

type listResponse struct {
	Items []any `json:"items"`
	Count int   `json:"count"`
	Total int   `json:"total"`
}
