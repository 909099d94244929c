// Package protocol defines the line protocol spoken with the host decision
// process: the response tokens the host may send and how a received line is
// classified.
package protocol

import (
	"fmt"
	"strings"
)

// Code is the classification of a host response.
type Code int

const (
	Unrecognized Code = iota // a line arrived but matched no token
	EntryOk
	ExitOk
	Unregistered
	NoOwner
	Inactive
	TimeError
	ComputeError
	GeneralError
	ConnectivityTest
	TimedOut // no line arrived within the response budget
)

// ProbeReply is the default line sent back on a connectivity test.
const ProbeReply = "DEVICE_OK"

// LegacyProbeReply is what older host software expects back on a
// connectivity test.
const LegacyProbeReply = "ARDUINO_OK"

var codeNames = map[Code]string{
	Unrecognized:     "unrecognized",
	EntryOk:          "entry_ok",
	ExitOk:           "exit_ok",
	Unregistered:     "unregistered",
	NoOwner:          "no_owner",
	Inactive:         "inactive",
	TimeError:        "time_error",
	ComputeError:     "compute_error",
	GeneralError:     "general_error",
	ConnectivityTest: "connectivity_test",
	TimedOut:         "timed_out",
}

// String returns a lower case name suitable for logs and metric labels.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// Token returns the wire token for the code, or "" for classifications that
// have no token of their own.
func (c Code) Token() string {
	for tok, code := range defaultTokens {
		if code == c && tok != "TEST" {
			return tok
		}
	}
	return ""
}

// Granted reports whether the code is one of the successful registrations.
func (c Code) Granted() bool {
	return c == EntryOk || c == ExitOk
}

var defaultTokens = map[string]Code{
	"ENTRY_OK":          EntryOk,
	"EXIT_OK":           ExitOk,
	"UNREGISTERED":      Unregistered,
	"NO_OWNER":          NoOwner,
	"INACTIVE":          Inactive,
	"TIME_ERROR":        TimeError,
	"COMPUTE_ERROR":     ComputeError,
	"GENERAL_ERROR":     GeneralError,
	"CONNECTIVITY_TEST": ConnectivityTest,
	"TEST":              ConnectivityTest,
}

// LegacyAliases maps the tokens spoken by older host software to their codes'
// current tokens. It can be passed to Table.WithAliases.
var LegacyAliases = map[string]string{
	"ENTRADA_OK":     "ENTRY_OK",
	"SAIDA_OK":       "EXIT_OK",
	"NAO_CADASTRADO": "UNREGISTERED",
	"SEM_DONO":       "NO_OWNER",
	"INATIVO":        "INACTIVE",
	"ERRO_HORA":      "TIME_ERROR",
	"ERRO_CALCULO":   "COMPUTE_ERROR",
	"ERRO_GERAL":     "GENERAL_ERROR",
}

// Table maps response tokens to codes. The zero value is not usable; use
// DefaultTable.
type Table struct {
	tokens map[string]Code
}

// DefaultTable returns the standard token table.
func DefaultTable() *Table {
	t := &Table{tokens: make(map[string]Code, len(defaultTokens))}
	for tok, code := range defaultTokens {
		t.tokens[tok] = code
	}
	return t
}

// WithAliases returns a copy of the table with extra tokens mapped onto the
// codes of existing tokens. Aliases naming an unknown target are rejected.
func (t *Table) WithAliases(aliases map[string]string) (*Table, error) {
	nt := &Table{tokens: make(map[string]Code, len(t.tokens)+len(aliases))}
	for tok, code := range t.tokens {
		nt.tokens[tok] = code
	}
	for alias, target := range aliases {
		code, ok := t.tokens[target]
		if !ok {
			return nil, fmt.Errorf("alias %q: unknown target token %q", alias, target)
		}
		nt.tokens[alias] = code
	}
	return nt, nil
}

// Classify trims surrounding whitespace from a received line and matches it
// exactly, case-sensitively, against the table.
func (t *Table) Classify(line string) Code {
	if code, ok := t.tokens[strings.TrimSpace(line)]; ok {
		return code
	}
	return Unrecognized
}

// Classify matches a line against the default table.
func Classify(line string) Code {
	return defaultTable.Classify(line)
}

var defaultTable = DefaultTable()
