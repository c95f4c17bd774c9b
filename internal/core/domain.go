package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

const (
	PersonIndividual PersonType = "Individual"
	PersonCorporate  PersonType = "Corporate"
)

const (
	AccountActive      AccountStatus = "ACTIVE"
	AccountDeactivated AccountStatus = "DEACTIVATED"
)

const (
	SourceActive   SourceStatus = "Active"
	SourceInactive SourceStatus = "Inactive"
)

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

type (
	Role          string
	PersonType    string
	AccountStatus string
	SourceStatus  string
	Direction     string

	Person struct {
		ID          string     `json:"id" yaml:"id"`
		FirstName   string     `json:"first_name" yaml:"first_name"`
		LastName    string     `json:"last_name" yaml:"last_name"`
		Email       string     `json:"email" yaml:"email"`
		PhoneNumber string     `json:"phone_number" yaml:"phone_number"`
		Role        Role       `json:"role" yaml:"role"`
		Type        PersonType `json:"type" yaml:"type"`
		Active      bool       `json:"active" yaml:"active"`
		CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	}

	Account struct {
		ID        string          `json:"id" yaml:"id"`
		Number    int64           `json:"number" yaml:"number"`
		Balance   decimal.Decimal `json:"balance" yaml:"balance"`
		Currency  string          `json:"currency" yaml:"currency"`
		Status    AccountStatus   `json:"status" yaml:"status"`
		PersonID  string          `json:"person_id" yaml:"person_id"`
		SourceID  string          `json:"source_id" yaml:"source_id"`
		Owner     string          `json:"owner" yaml:"owner"`
		Source    string          `json:"source" yaml:"source"`
		CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	}

	Source struct {
		ID        string       `json:"id" yaml:"id"`
		Name      string       `json:"name" yaml:"name"`
		Platform  string       `json:"platform" yaml:"platform"`
		Status    SourceStatus `json:"status" yaml:"status"`
		Signals   int          `json:"signals" yaml:"signals"`
		CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	}

	Transaction struct {
		ID        string          `json:"id" yaml:"id"`
		Amount    decimal.Decimal `json:"amount" yaml:"amount"`
		Direction Direction       `json:"direction" yaml:"direction"`
		Symbol    string          `json:"symbol" yaml:"symbol"`
		AccountID string          `json:"account_id" yaml:"account_id"`
		SourceID  string          `json:"source_id" yaml:"source_id"`
		Currency  string          `json:"currency" yaml:"currency"`
		CreatedAt time.Time       `json:"created_at" yaml:"created_at"`
	}
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrValidation    = errors.New("validation failed")
	ErrDuplicateID   = errors.New("duplicate id")
	ErrUnknownFilter = errors.New("unknown filter")
	ErrUnknownField  = errors.New("unknown field")
	ErrUnauthorized  = errors.New("unauthorized")
)

// invalid wraps ErrValidation so callers can match it with errors.Is.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Next cycles USER -> ADMIN -> SUPERADMIN -> USER.
func (r Role) Next() Role {
	switch r {
	case RoleUser:
		return RoleAdmin
	case RoleAdmin:
		return RoleSuperAdmin
	default:
		return RoleUser
	}
}

func (t PersonType) Valid() bool {
	return t == PersonIndividual || t == PersonCorporate
}

func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountDeactivated
}

func (s AccountStatus) Toggle() AccountStatus {
	if s == AccountActive {
		return AccountDeactivated
	}
	return AccountActive
}

func (s SourceStatus) Valid() bool {
	return s == SourceActive || s == SourceInactive
}

func (s SourceStatus) Toggle() SourceStatus {
	if s == SourceActive {
		return SourceInactive
	}
	return SourceActive
}

func (d Direction) Valid() bool {
	return d == Buy || d == Sell
}

// FullName joins first and last name the way owners are displayed on accounts.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Normalize fills defaults for fields a draft may leave empty.
func (p *Person) Normalize(now time.Time) {
	p.Email = strings.TrimSpace(p.Email)
	if p.Role == "" {
		p.Role = RoleUser
	}
	p.Role = Role(strings.ToUpper(string(p.Role)))
	if p.Type == "" {
		p.Type = PersonIndividual
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return invalid("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return invalid("last_name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return invalid("email %q is not valid", p.Email)
	}
	if !p.Role.Valid() {
		return invalid("role %q is not one of USER, ADMIN, SUPERADMIN", p.Role)
	}
	if !p.Type.Valid() {
		return invalid("type %q is not one of Individual, Corporate", p.Type)
	}
	return nil
}

func (a *Account) Normalize(now time.Time) {
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	if a.Status == "" {
		a.Status = AccountActive
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
}

func (a Account) Validate() error {
	if a.Number <= 0 {
		return invalid("number must be positive")
	}
	if a.Balance.IsNegative() {
		return invalid("balance cannot be negative")
	}
	if err := ValidateCurrency(a.Currency); err != nil {
		return err
	}
	if !a.Status.Valid() {
		return invalid("status %q is not one of ACTIVE, DEACTIVATED", a.Status)
	}
	return nil
}

func (s *Source) Normalize(now time.Time) {
	if s.Status == "" {
		s.Status = SourceActive
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(s.Platform) == "" {
		return invalid("platform is required")
	}
	if !s.Status.Valid() {
		return invalid("status %q is not one of Active, Inactive", s.Status)
	}
	if s.Signals < 0 {
		return invalid("signals cannot be negative")
	}
	return nil
}

func (t *Transaction) Normalize(now time.Time) {
	t.Direction = Direction(strings.ToUpper(string(t.Direction)))
	t.Currency = strings.ToUpper(strings.TrimSpace(t.Currency))
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
}

func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return invalid("amount must be positive")
	}
	if !t.Direction.Valid() {
		return invalid("direction %q is not one of BUY, SELL", t.Direction)
	}
	if strings.TrimSpace(t.Symbol) == "" {
		return invalid("symbol is required")
	}
	return ValidateCurrency(t.Currency)
}
