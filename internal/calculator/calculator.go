// Package calculator implements the four-operation state machine driven by
// accepted gestures.
package calculator

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/ayusman/ganita/internal/gesture"
)

// Limits.
const (
	MaxInputLen  = 10
	MaxHistory   = 5
	MaxMagnitude = 1e10
)

// Operator is a pending arithmetic operation. The zero value means none.
type Operator string

const (
	None      Operator = ""
	Plus      Operator = "+"
	Minus     Operator = "-"
	Times     Operator = "*"
	DividedBy Operator = "/"
)

// command is what a gesture does to the calculator.
type command string

const (
	cmdEquals command = "="
	cmdClear  command = "C"
)

// operations maps named gestures to operators and commands.
var operations = map[gesture.Label]command{
	gesture.Add:      command(Plus),
	gesture.Subtract: command(Minus),
	gesture.Multiply: command(Times),
	gesture.Divide:   command(DividedBy),
	gesture.Equals:   cmdEquals,
	gesture.Clear:    cmdClear,
}

// Narrations for faults and resets.
const (
	MsgInvalidNumber   = "Invalid number"
	MsgEnterNumber     = "Enter a number first"
	MsgIncomplete      = "Incomplete operation"
	MsgInvalidInput    = "Invalid input"
	MsgTooLarge        = "Number too large"
	MsgDivisionByZero  = "Error: Division by zero"
	MsgCleared         = "Calculator cleared"
	resultNarrationFmt = "The result is %.2f"
)

// State is the calculator's complete state.
type State struct {
	Input    string   `json:"input"`
	Stored   float64  `json:"stored"`
	Operator Operator `json:"operator"`
	History  []string `json:"history"`
}

// Fault classifies a rejected gesture.
type Fault int

const (
	NoFault Fault = iota
	// InputFault covers unparsable numbers and out-of-order gestures.
	InputFault
	// DomainFault covers division by zero and oversized operands.
	DomainFault
)

func (f Fault) String() string {
	switch f {
	case InputFault:
		return "input"
	case DomainFault:
		return "domain"
	default:
		return "none"
	}
}

// Calculation is a completed equals operation.
type Calculation struct {
	Left     float64
	Operator Operator
	Right    float64
	Result   float64
	Entry    string
}

// Outcome describes what applying a gesture did.
type Outcome struct {
	Label       gesture.Label
	Narration   string
	Fault       Fault
	Calculation *Calculation
}

// Apply returns the state that results from an accepted gesture. s is not
// modified.
func Apply(s State, label gesture.Label) (State, Outcome) {
	out := Outcome{Label: label}

	cmd, ok := operations[label]
	if !ok {
		if !label.IsDigit() || len(s.Input) >= MaxInputLen {
			return s, out
		}
		s.Input += string(label)
		out.Narration = string(label)
		return s, out
	}

	switch cmd {
	case cmdClear:
		s.Input = ""
		s.Stored = 0
		s.Operator = None
		out.Narration = MsgCleared
		return s, out
	case cmdEquals:
		return equals(s, out)
	default:
		return setOperator(s, Operator(cmd), out)
	}
}

func setOperator(s State, op Operator, out Outcome) (State, Outcome) {
	if s.Input == "" {
		out.Narration = MsgEnterNumber
		out.Fault = InputFault
		return s, out
	}

	n, err := parseNumber(s.Input)
	if err != nil {
		out.Narration = MsgInvalidNumber
		out.Fault = InputFault
		return s, out
	}

	s.Stored = n
	s.Operator = op
	s.Input = ""
	out.Narration = FormatNumber(n) + " " + string(op)
	return s, out
}

func equals(s State, out Outcome) (State, Outcome) {
	if s.Input == "" || s.Operator == None {
		out.Narration = MsgIncomplete
		out.Fault = InputFault
		return s, out
	}

	right, err := parseNumber(s.Input)
	if err != nil {
		out.Narration = MsgInvalidInput
		out.Fault = InputFault
		return s, out
	}

	if math.Abs(right) > MaxMagnitude || math.Abs(s.Stored) > MaxMagnitude {
		out.Narration = MsgTooLarge
		out.Fault = DomainFault
		return s, out
	}

	var result float64
	switch s.Operator {
	case Plus:
		result = s.Stored + right
	case Minus:
		result = s.Stored - right
	case Times:
		result = s.Stored * right
	case DividedBy:
		if right == 0 {
			out.Narration = MsgDivisionByZero
			out.Fault = DomainFault
			return s, out
		}
		result = s.Stored / right
	}

	entry := fmt.Sprintf("%s %s %s = %.2f", FormatNumber(s.Stored), s.Operator, FormatNumber(right), result)
	out.Calculation = &Calculation{
		Left:     s.Stored,
		Operator: s.Operator,
		Right:    right,
		Result:   result,
		Entry:    entry,
	}
	out.Narration = fmt.Sprintf(resultNarrationFmt, result)

	s.History = appendHistory(s.History, entry)
	s.Input = FormatNumber(Round2(result))
	s.Stored = 0
	s.Operator = None
	return s, out
}

// appendHistory returns a new slice holding the most recent MaxHistory entries.
func appendHistory(history []string, entry string) []string {
	next := append(slices.Clone(history), entry)
	if len(next) > MaxHistory {
		next = next[len(next)-MaxHistory:]
	}
	return next
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// Round2 rounds to two decimal places the same way the result is printed
// with %.2f, so exact halves go to the even digit (0.125 becomes 0.12).
func Round2(f float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(f, 'f', 2, 64), 64)
	if err != nil {
		return f
	}
	return r
}
