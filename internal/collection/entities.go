package collection

import (
	"strconv"
	"time"

	"signaldesk/internal/core"
)

// Kinds as they appear in URLs, storage rows and change events.
const (
	KindUsers        = "users"
	KindAccounts     = "accounts"
	KindSources      = "sources"
	KindTransactions = "transactions"
)

var Kinds = []string{KindUsers, KindAccounts, KindSources, KindTransactions}

func PersonSchema() Schema[core.Person] {
	return Schema[core.Person]{
		Kind:  KindUsers,
		ID:    func(p core.Person) string { return p.ID },
		SetID: func(p *core.Person, id string) { p.ID = id },
		Searchable: func(p core.Person) []string {
			return []string{p.FirstName, p.LastName, p.Email}
		},
		Categories: map[string]Category[core.Person]{
			"role": Equals(func(p core.Person) string { return string(p.Role) },
				string(core.RoleUser), string(core.RoleAdmin), string(core.RoleSuperAdmin)),
			"type": Equals(func(p core.Person) string { return string(p.Type) },
				string(core.PersonIndividual), string(core.PersonCorporate)),
			"active": Equals(func(p core.Person) string { return strconv.FormatBool(p.Active) },
				"true", "false"),
		},
		Toggles: map[string]func(*core.Person){
			"active": func(p *core.Person) { p.Active = !p.Active },
			"role":   func(p *core.Person) { p.Role = p.Role.Next() },
		},
		Normalize: (*core.Person).Normalize,
		Validate:  core.Person.Validate,
	}
}

func AccountSchema() Schema[core.Account] {
	return Schema[core.Account]{
		Kind:  KindAccounts,
		ID:    func(a core.Account) string { return a.ID },
		SetID: func(a *core.Account, id string) { a.ID = id },
		Searchable: func(a core.Account) []string {
			return []string{strconv.FormatInt(a.Number, 10), a.Owner, a.Source, a.Currency}
		},
		Categories: map[string]Category[core.Account]{
			"status": Equals(func(a core.Account) string { return string(a.Status) },
				string(core.AccountActive), string(core.AccountDeactivated)),
			"currency": Equals(func(a core.Account) string { return a.Currency }),
		},
		Toggles: map[string]func(*core.Account){
			"status": func(a *core.Account) { a.Status = a.Status.Toggle() },
		},
		Normalize: (*core.Account).Normalize,
		Validate:  core.Account.Validate,
	}
}

func SourceSchema() Schema[core.Source] {
	return Schema[core.Source]{
		Kind:  KindSources,
		ID:    func(s core.Source) string { return s.ID },
		SetID: func(s *core.Source, id string) { s.ID = id },
		Searchable: func(s core.Source) []string {
			return []string{s.Name, s.Platform}
		},
		Categories: map[string]Category[core.Source]{
			"status": Equals(func(s core.Source) string { return string(s.Status) },
				string(core.SourceActive), string(core.SourceInactive)),
			"platform": Equals(func(s core.Source) string { return s.Platform }),
		},
		Toggles: map[string]func(*core.Source){
			"status": func(s *core.Source) { s.Status = s.Status.Toggle() },
		},
		Normalize: (*core.Source).Normalize,
		Validate:  core.Source.Validate,
	}
}

func TransactionSchema() Schema[core.Transaction] {
	return Schema[core.Transaction]{
		Kind:  KindTransactions,
		ID:    func(t core.Transaction) string { return t.ID },
		SetID: func(t *core.Transaction, id string) { t.ID = id },
		Searchable: func(t core.Transaction) []string {
			return []string{t.Symbol, t.AccountID, t.SourceID, t.Currency, string(t.Direction)}
		},
		Categories: map[string]Category[core.Transaction]{
			"direction": Equals(func(t core.Transaction) string { return string(t.Direction) },
				string(core.Buy), string(core.Sell)),
			"currency": Equals(func(t core.Transaction) string { return t.Currency }),
			"range": {
				Values: []string{string(core.RangeAll), string(core.RangeToday), string(core.RangeWeek), string(core.RangeMonth)},
				Match: func(t core.Transaction, value string, now time.Time) bool {
					r, err := core.ParseTimeRange(value)
					return err == nil && r.Contains(t.CreatedAt, now)
				},
			},
		},
		Normalize: (*core.Transaction).Normalize,
		Validate:  core.Transaction.Validate,
	}
}
