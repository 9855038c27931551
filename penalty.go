package heli

import (
	"math"
	"strconv"
)

// Penalty is the per-language score stored in the model and
// accumulated during scoring: the negative base-10 logarithm of a
// conditional relative frequency (§3 "Penalty"). Lower is better.
// Storage is single precision (§5); accumulation during scoring uses
// float64 to avoid drift (§4.5, §9 "Precision").
type Penalty float32

// String/Set let Penalty be used directly as a flag.Var, mirroring
// the teacher's Weight type in basic.go.
func (p *Penalty) String() string {
	return strconv.FormatFloat(float64(*p), 'g', -1, 32)
}

func (p *Penalty) Set(s string) error {
	f, err := strconv.ParseFloat(s, 32)
	if err == nil {
		*p = Penalty(f)
	}
	return err
}

// absentPenalty is never stored; it is only used as a sentinel during
// staging in the binarizer, to mark a language slot no count table has
// filled in yet (distinct from MAX[order], which is a real, observed
// worst-case penalty within a submodel). Every slot still at this
// sentinel once a submodel is finished staging is overwritten with
// MAX[order]+penaltyEpsilon before the submodel is built (§4.4).
const absentPenalty = Penalty(math.MaxFloat32)

// penaltyEpsilon is added to MAX[order] when filling in a language
// slot that order never observed, so that backing off past an absent
// key is always strictly worse than any penalty actually seen in that
// submodel (§4.4 "MAX[order]+ε").
const penaltyEpsilon = Penalty(1e-3)

// Order identifies one of the seven submodels: whole words, and
// character n-grams of length 1 through 6.
type Order int

const (
	OrderWord Order = iota
	Order6
	Order5
	Order4
	Order3
	Order2
	Order1
)

// numOrders is the number of submodels in a Model (§3 "Model (M)").
const numOrders = 7

// orderN returns the character n-gram length for orders Order1..Order6,
// and panics for OrderWord (which has no fixed length).
func orderN(o Order) int {
	switch o {
	case Order6:
		return 6
	case Order5:
		return 5
	case Order4:
		return 4
	case Order3:
		return 3
	case Order2:
		return 2
	case Order1:
		return 1
	default:
		panic("heli: orderN called on OrderWord")
	}
}

func (o Order) String() string {
	switch o {
	case OrderWord:
		return "word"
	case Order6:
		return "6gram"
	case Order5:
		return "5gram"
	case Order4:
		return "4gram"
	case Order3:
		return "3gram"
	case Order2:
		return "2gram"
	case Order1:
		return "1gram"
	default:
		return "unknown"
	}
}

// orders lists every submodel in the scan order used when
// writing/reading a model image: the word submodel first, then the
// character orders from 6 down to 1, matching §6's blob listing. The
// scorer likewise consults the word submodel before any character
// order.
var orders = [numOrders]Order{OrderWord, Order6, Order5, Order4, Order3, Order2, Order1}

// backoffOrders lists the character orders consulted during backoff,
// from highest to lowest (§4.5 step 2).
var backoffOrders = [6]Order{Order6, Order5, Order4, Order3, Order2, Order1}
