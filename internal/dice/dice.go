// Package dice resolves reward expressions. A reward is either a literal amount
// ("20", "4.50") or tabletop dice notation ("2d6+3", "d20 - 2", "3d4+1d6"), which
// is rolled and totalled as an integer.
package dice

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"

	"github.com/TalShar783/Taskmaster/internal/ledgererror"

	"github.com/shopspring/decimal"
)

// Limits on a single dice term.
const (
	MaxDiceCount = 1000
	MaxDiceSides = 1000000
)

// Source draws a uniform integer in [0, n).
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Term is one signed component of an expression: either Count dice with Sides
// faces, or a constant when Sides is zero.
type Term struct {
	Negative bool
	Count    int
	Sides    int
	Constant decimal.Decimal
}

// IsDice reports whether the term rolls dice.
func (t Term) IsDice() bool {
	return t.Sides > 0
}

// Expression is a parsed dice expression.
type Expression struct {
	Source string
	Terms  []Term
}

// IsDiceExpression reports whether expr uses dice notation, i.e. contains a "d".
// Anything else is treated as a literal amount.
func IsDiceExpression(expr string) bool {
	return strings.ContainsAny(expr, "dD")
}

// Parse parses dice notation. A trailing "t" (total) marker is accepted and ignored,
// since totals are always integers.
func Parse(expr string) (Expression, error) {
	compact := strings.Join(strings.Fields(expr), "")
	compact = strings.TrimSuffix(compact, "t")
	if compact == "" {
		return Expression{}, invalid(expr, "empty expression", nil)
	}

	var terms []Term
	negative := false
	start := 0
	if compact[0] == '+' || compact[0] == '-' {
		negative = compact[0] == '-'
		start = 1
	}
	for i := start; i <= len(compact); i++ {
		if i < len(compact) && compact[i] != '+' && compact[i] != '-' {
			continue
		}
		term, err := parseTerm(compact[start:i])
		if err != nil {
			return Expression{}, invalid(expr, "bad term", err)
		}
		term.Negative = negative
		terms = append(terms, term)
		if i < len(compact) {
			negative = compact[i] == '-'
		}
		start = i + 1
	}

	hasDice := false
	for _, t := range terms {
		if t.IsDice() {
			hasDice = true
			break
		}
	}
	if !hasDice {
		return Expression{}, invalid(expr, "no dice term", nil)
	}
	return Expression{Source: expr, Terms: terms}, nil
}

func parseTerm(s string) (Term, error) {
	if s == "" {
		return Term{}, fmt.Errorf("missing term")
	}
	idx := strings.IndexAny(s, "dD")
	if idx < 0 {
		c, err := decimal.NewFromString(s)
		if err != nil {
			return Term{}, fmt.Errorf("modifier %q is not a number", s)
		}
		return Term{Constant: c}, nil
	}

	count := 1
	if idx > 0 {
		n, err := strconv.Atoi(s[:idx])
		if err != nil {
			return Term{}, fmt.Errorf("dice count %q is not an integer", s[:idx])
		}
		count = n
	}
	sides, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return Term{}, fmt.Errorf("dice sides %q is not an integer", s[idx+1:])
	}
	if count < 1 || count > MaxDiceCount {
		return Term{}, fmt.Errorf("dice count must be between 1 and %d, got %d", MaxDiceCount, count)
	}
	if sides < 1 || sides > MaxDiceSides {
		return Term{}, fmt.Errorf("dice sides must be between 1 and %d, got %d", MaxDiceSides, sides)
	}
	return Term{Count: count, Sides: sides}, nil
}

// Roll draws every die independently and returns the total truncated to an integer.
func (e Expression) Roll(src Source) decimal.Decimal {
	total := decimal.Zero
	for _, t := range e.Terms {
		v := t.Constant
		if t.IsDice() {
			sum := 0
			for i := 0; i < t.Count; i++ {
				sum += src.IntN(t.Sides) + 1
			}
			v = decimal.NewFromInt(int64(sum))
		}
		if t.Negative {
			v = v.Neg()
		}
		total = total.Add(v)
	}
	return total.Truncate(0)
}

// Min returns the smallest total the expression can produce.
func (e Expression) Min() decimal.Decimal {
	return e.bound(false)
}

// Max returns the largest total the expression can produce.
func (e Expression) Max() decimal.Decimal {
	return e.bound(true)
}

func (e Expression) bound(upper bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range e.Terms {
		v := t.Constant
		if t.IsDice() {
			// a subtracted die is largest when it rolls low
			high := upper != t.Negative
			if high {
				v = decimal.NewFromInt(int64(t.Count * t.Sides))
			} else {
				v = decimal.NewFromInt(int64(t.Count))
			}
		}
		if t.Negative {
			v = v.Neg()
		}
		total = total.Add(v)
	}
	return total.Truncate(0)
}

// Resolver turns reward expressions into amounts.
type Resolver struct {
	mu  sync.Mutex
	src Source
}

// NewResolver returns a Resolver drawing from src. A nil src uses the
// process-wide generator from math/rand/v2.
func NewResolver(src Source) *Resolver {
	if src == nil {
		src = globalSource{}
	}
	return &Resolver{src: src}
}

// NewSeededResolver returns a Resolver with a reproducible PCG source.
func NewSeededResolver(seed1, seed2 uint64) *Resolver {
	return NewResolver(rand.New(rand.NewPCG(seed1, seed2)))
}

// Resolve evaluates expr. Dice notation is rolled; anything else must be a literal
// number, optionally prefixed with "$".
func (r *Resolver) Resolve(expr string) (decimal.Decimal, error) {
	if IsDiceExpression(expr) {
		parsed, err := Parse(expr)
		if err != nil {
			return decimal.Zero, err
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		return parsed.Roll(r.src), nil
	}
	return ParseLiteral(expr)
}

// ParseLiteral parses a static reward such as "20", "4.50" or "$3".
func ParseLiteral(expr string) (decimal.Decimal, error) {
	s := strings.TrimSpace(expr)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return decimal.Zero, invalid(expr, "empty expression", nil)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(expr, "not a number or dice roll", nil)
	}
	return d, nil
}

func invalid(expr, reason string, err error) error {
	return &ledgererror.InvalidRewardExpressionError{Expression: expr, Reason: reason, Err: err}
}
