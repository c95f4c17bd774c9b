// Package seed provides the initial records of every collection, either
// from a YAML fixture file or from the built-in literal set.
package seed

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"signaldesk/internal/core"
)

// Fixtures holds the seed records of the four collections.
type Fixtures struct {
	Users        []core.Person      `yaml:"users"`
	Accounts     []core.Account     `yaml:"accounts"`
	Sources      []core.Source      `yaml:"sources"`
	Transactions []core.Transaction `yaml:"transactions"`
}

// Load reads fixtures from a YAML file.
func Load(path string) (Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Fixtures{}, err
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Fixtures{}, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return f, nil
}

// LoadOrDefault reads path when it exists and falls back to Default
// otherwise. An empty path means Default.
func LoadOrDefault(path string) (Fixtures, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return f, err
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Default returns the built-in literal records.
func Default() Fixtures {
	return Fixtures{
		Users: []core.Person{
			{ID: "1", FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", PhoneNumber: "+1234567890",
				Role: core.RoleUser, Type: core.PersonIndividual, Active: true, CreatedAt: day(2024, 1, 15)},
			{ID: "2", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", PhoneNumber: "+1234567891",
				Role: core.RoleAdmin, Type: core.PersonIndividual, Active: true, CreatedAt: day(2024, 1, 10)},
		},
		Accounts: []core.Account{
			{ID: "1", Number: 12345678, Balance: decimal.RequireFromString("15750.50"), Currency: "USD", Status: core.AccountActive,
				PersonID: "1", SourceID: "1", Owner: "John Doe", Source: "TradingView", CreatedAt: day(2024, 1, 15)},
			{ID: "2", Number: 87654321, Balance: decimal.RequireFromString("8900.25"), Currency: "EUR", Status: core.AccountActive,
				PersonID: "2", SourceID: "2", Owner: "Jane Smith", Source: "MetaTrader", CreatedAt: day(2024, 1, 10)},
		},
		Sources: []core.Source{
			{ID: "1", Name: "TradingView Alerts", Platform: "TradingView", Status: core.SourceActive, Signals: 1250, CreatedAt: day(2024, 1, 15)},
			{ID: "2", Name: "MetaTrader Expert Advisor", Platform: "MetaTrader 5", Status: core.SourceActive, Signals: 890, CreatedAt: day(2024, 1, 10)},
			{ID: "3", Name: "Custom API Source", Platform: "REST API", Status: core.SourceInactive, Signals: 0, CreatedAt: day(2024, 1, 8)},
		},
		Transactions: []core.Transaction{
			{ID: "1", Amount: decimal.RequireFromString("1250.00"), Direction: core.Buy, Symbol: "EURUSD", AccountID: "12345678",
				SourceID: "TradingView", Currency: "USD", CreatedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
			{ID: "2", Amount: decimal.RequireFromString("800.50"), Direction: core.Sell, Symbol: "GBPUSD", AccountID: "87654321",
				SourceID: "MetaTrader", Currency: "EUR", CreatedAt: time.Date(2024, 1, 15, 9, 15, 0, 0, time.UTC)},
			{ID: "3", Amount: decimal.RequireFromString("2100.75"), Direction: core.Buy, Symbol: "USDJPY", AccountID: "12345678",
				SourceID: "TradingView", Currency: "USD", CreatedAt: time.Date(2024, 1, 14, 16, 45, 0, 0, time.UTC)},
		},
	}
}
