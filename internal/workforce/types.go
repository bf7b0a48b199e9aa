// RosterHub - Workforce Portal Integration Service
// Copyright 2026 M. Karlsen (mkarlsen)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkarlsen/rosterhub

package workforce

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// FlexID is an identifier that the provider serializes as either a JSON
// string or a number depending on endpoint version. It always decodes
// to its string form.
type FlexID string

// UnmarshalJSON accepts "42", 42, and null (empty ID).
func (f *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id is neither string nor number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// MarshalJSON always emits the string form.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// String returns the ID as a string.
func (f FlexID) String() string { return string(f) }

// FlexNumber is a monetary or numeric value that may arrive as a JSON
// number or a numeric string.
type FlexNumber float64

// UnmarshalJSON accepts 12.5, "12.5", and null (zero).
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("numeric string %q: %w", s, err)
		}
		*f = FlexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = FlexNumber(v)
	return nil
}

// Department mirrors the provider's department resource. Read-only;
// never persisted locally beyond request-scoped caching.
type Department struct {
	ID       FlexID `json:"id"`
	Name     string `json:"name"`
	ParentID FlexID `json:"parentId,omitempty"`
	Active   bool   `json:"active"`
}

// Shift is one scheduled shift as returned by the provider. Employee
// is nullable: open shifts carry no employee reference.
type Shift struct {
	ID              FlexID `json:"id"`
	Start           string `json:"startDateTime"`
	End             string `json:"endDateTime"`
	EmployeeID      FlexID `json:"employeeId"`
	EmployeeName    string `json:"employeeName,omitempty"`
	DepartmentID    FlexID `json:"departmentId"`
	ShiftTypeID     FlexID `json:"shiftTypeId,omitempty"`
	EmployeeGroupID FlexID `json:"employeeGroupId,omitempty"`
	Status          string `json:"status,omitempty"`
}

// ShiftType labels a shift (e.g. "Opening", "Closing").
type ShiftType struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// EmployeeGroup is the provider's grouping of employees (e.g. "Bar",
// "Kitchen").
type EmployeeGroup struct {
	ID   FlexID `json:"id"`
	Name string `json:"name"`
}

// EmployeeDetail is the subset of the employee resource the portal
// needs for labelling shifts.
type EmployeeDetail struct {
	ID        FlexID `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Name      string `json:"name,omitempty"`
	GroupID   FlexID `json:"employeeGroupId,omitempty"`
}

// DisplayName assembles the best human-readable name the record offers.
func (e EmployeeDetail) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	switch {
	case e.FirstName != "" && e.LastName != "":
		return e.FirstName + " " + e.LastName
	case e.FirstName != "":
		return e.FirstName
	case e.LastName != "":
		return e.LastName
	}
	return ""
}

// RevenueRow is one revenue record. The provider expresses the business
// date under several field names and shapes (full timestamp, bare date,
// businessDate); all candidates are captured and resolved by RawDate.
type RevenueRow struct {
	DepartmentID FlexID     `json:"departmentId"`
	Date         string     `json:"date,omitempty"`
	BusinessDate string     `json:"businessDate,omitempty"`
	DateTime     string     `json:"dateTime,omitempty"`
	Amount       FlexNumber `json:"amount,omitempty"`
	Value        FlexNumber `json:"value,omitempty"`
}

// RawDate returns the first populated date field.
func (r RevenueRow) RawDate() string {
	switch {
	case r.Date != "":
		return r.Date
	case r.BusinessDate != "":
		return r.BusinessDate
	default:
		return r.DateTime
	}
}

// MonetaryValue returns the populated value field; the actuals endpoint
// uses "amount" while the budget endpoint uses "value".
func (r RevenueRow) MonetaryValue() float64 {
	if r.Amount != 0 {
		return float64(r.Amount)
	}
	return float64(r.Value)
}
