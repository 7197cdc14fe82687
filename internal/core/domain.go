package core

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const (
	Water UtilityType = "water"
	Gas   UtilityType = "gas"
)

const (
	ReadingRead    ReadingStatus = "LIDO"
	ReadingPending ReadingStatus = "PENDENTE"
	ReadingError   ReadingStatus = "ERRO"
)

const (
	RoleOwner  ResidentRole = "Proprietário"
	RoleTenant ResidentRole = "Inquilino"
)

const (
	RegistrationPending  RegistrationStatus = "PENDENTE"
	RegistrationApproved RegistrationStatus = "APROVADO"
	RegistrationRejected RegistrationStatus = "REJEITADO"
)

type (
	UtilityType        string
	ReadingStatus      string
	ResidentRole       string
	RegistrationStatus string

	// Unit is one residential apartment tracked for metering.
	// Number may be non-numeric ("COND. AB"); (Number, Block) is the
	// effective identity for display and sorting.
	Unit struct {
		ID           string
		Number       string
		Block        string
		ResidentName string
		ResidentRole ResidentRole
	}

	// Reading is one water-or-gas meter entry for a unit. Current is nil
	// until a value is entered; the billing month is derived from Date.
	Reading struct {
		ID       string
		UnitID   string
		Type     UtilityType
		Previous Volume
		Current  *Volume
		Date     time.Time
		Status   ReadingStatus
	}

	// ReferenceMonth scopes all reconciliation queries.
	ReferenceMonth struct {
		Year  int
		Month time.Month
	}

	// CoResident is an additional occupant declared on a registration.
	CoResident struct {
		Name      string
		CPF       string
		BirthDate string
		Phone     string
	}

	// RegistrationRequest is a resident profile awaiting administrative
	// review. On approval the name and role are copied onto the unit.
	RegistrationRequest struct {
		ID                       string
		UnitID                   string
		FullName                 string
		CPF                      string
		BirthDate                string
		Phone                    string
		ResidentRole             ResidentRole
		GarageSpot               string
		IsFinancialResponsible   bool
		FinancialResponsibleName string
		FinancialResponsibleCPF  string
		OwnerName                string
		OwnerPhone               string
		CoResidents              []CoResident
		Status                   RegistrationStatus
		CreatedAt                time.Time
	}
)

var (
	ErrInvalidValue      = errors.New("invalid meter value")
	ErrEmptyNumber       = errors.New("empty unit number")
	ErrEmptyResidentName = errors.New("empty resident name")
	ErrInvalidRole       = errors.New("invalid resident role")
	ErrInvalidType       = errors.New("invalid utility type")
	ErrInvalidCPF        = errors.New("invalid CPF")
	ErrInvalidPhone      = errors.New("invalid phone")
	ErrNoUnitSelected    = errors.New("no unit selected")

	ErrFinancialResponsibleRequired = errors.New("financial responsible name required")
	ErrEmptyCoResidentName          = errors.New("empty co-resident name")
)

// MonthOf returns the reference month a timestamp belongs to.
func MonthOf(t time.Time) ReferenceMonth {
	return ReferenceMonth{Year: t.Year(), Month: t.Month()}
}

// Contains reports whether t falls inside the reference month.
func (m ReferenceMonth) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Prev returns the month immediately before m.
func (m ReferenceMonth) Prev() ReferenceMonth {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(first.AddDate(0, -1, 0))
}

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// Label renders the month as shown in report headers, e.g. "Setembro 2023".
func (m ReferenceMonth) Label() string {
	if m.Month < time.January || m.Month > time.December {
		return ""
	}
	return monthNames[m.Month-1] + " " + strconv.Itoa(m.Year)
}

// Label is the type name shown in individual reports.
func (t UtilityType) Label() string {
	if t == Water {
		return "Água"
	}
	return "Gás"
}

// Decimals is the display precision for the utility type: water meters
// are read to 2 decimal places, gas meters to 3.
func (t UtilityType) Decimals() int {
	if t == Water {
		return 2
	}
	return 3
}

func (t UtilityType) Validate() error {
	switch t {
	case Water, Gas:
		return nil
	}
	return ErrInvalidType
}

func (r ResidentRole) Validate() error {
	switch r {
	case RoleOwner, RoleTenant:
		return nil
	}
	return ErrInvalidRole
}

func (u Unit) Validate() error {
	if strings.TrimSpace(u.Number) == "" {
		return ErrEmptyNumber
	}
	if strings.TrimSpace(u.ResidentName) == "" {
		return ErrEmptyResidentName
	}
	return u.ResidentRole.Validate()
}

// Consumption is the period delta for the reading. A missing current
// value counts as zero consumption; a current value below the previous
// one yields a negative delta, which is allowed after confirmation.
func (r Reading) Consumption() Volume {
	if r.Current == nil {
		return Volume{}
	}
	return Volume{Milli: r.Current.Milli - r.Previous.Milli}
}

func (r Reading) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.UnitID == "" {
		return ErrNoUnitSelected
	}
	if r.Previous.Milli < 0 {
		return ErrInvalidValue
	}
	if r.Current != nil && r.Current.Milli < 0 {
		return ErrInvalidValue
	}
	if r.Date.IsZero() {
		return errors.New("reading date cannot be zero")
	}
	return nil
}

// ValidateCPF checks the 11-digit Brazilian CPF checksum. Formatting
// characters are stripped before validation.
func ValidateCPF(cpf string) bool {
	digits := make([]int, 0, 11)
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, int(r-'0'))
		}
	}
	if len(digits) != 11 {
		return false
	}
	allSame := true
	for _, d := range digits[1:] {
		if d != digits[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return false
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += digits[i] * (pos + 1 - i)
		}
		check := (sum * 10) % 11
		if check == 10 {
			check = 0
		}
		if check != digits[pos] {
			return false
		}
	}
	return true
}

// ValidatePhone accepts Brazilian numbers: area code plus 8 or 9 digits.
func ValidatePhone(phone string) bool {
	n := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n >= 10 && n <= 11
}

func (reg RegistrationRequest) Validate() error {
	if reg.UnitID == "" {
		return ErrNoUnitSelected
	}
	if strings.TrimSpace(reg.FullName) == "" {
		return ErrEmptyResidentName
	}
	if !ValidateCPF(reg.CPF) {
		return ErrInvalidCPF
	}
	if !ValidatePhone(reg.Phone) {
		return ErrInvalidPhone
	}
	if err := reg.ResidentRole.Validate(); err != nil {
		return err
	}
	if !reg.IsFinancialResponsible && strings.TrimSpace(reg.FinancialResponsibleName) == "" {
		return ErrFinancialResponsibleRequired
	}
	for _, cr := range reg.CoResidents {
		if strings.TrimSpace(cr.Name) == "" {
			return ErrEmptyCoResidentName
		}
		if cr.CPF != "" && !ValidateCPF(cr.CPF) {
			return ErrInvalidCPF
		}
	}
	return nil
}

// SaveWarning is returned by ValidateReadingValue when the value is
// saveable but deserves an explicit confirmation from the caller.
type SaveWarning struct {
	Message string
}

// ValidateReadingValue implements the two-phase save guard: a current
// value lower than the previous one is not rejected, but the caller must
// confirm the returned warning before persisting.
func ValidateReadingValue(previous, current Volume) *SaveWarning {
	if current.Milli < previous.Milli {
		return &SaveWarning{
			Message: "Atenção: A leitura atual (" + current.Format(3, '.') +
				") é menor que a anterior (" + previous.Format(3, '.') + "). Deseja salvar mesmo assim?",
		}
	}
	return nil
}
