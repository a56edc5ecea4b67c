package bundle

import "errors"

// Constraint violations, returned by Validate in rule order. A caller that
// only needs to know "why did this fail" can errors.Is against these; a
// caller that needs detail can type-assert to read the wrapped fields.
var (
	ErrStockExceeded      = errors.New("bundle: quantity exceeds available stock")
	ErrDemandUnmet        = errors.New("bundle: total servings below required headcount")
	ErrDietUnmet          = errors.New("bundle: per-diet required servings not met")
	ErrBudgetExceeded     = errors.New("bundle: total cost exceeds budget")
	ErrKitchenCapExceeded = errors.New("bundle: total load exceeds kitchen capacity")
	ErrVarietyUnmet       = errors.New("bundle: too few distinct items selected")
	ErrPortionBand        = errors.New("bundle: item quantity outside its portion band")
	ErrPairwiseSpread     = errors.New("bundle: quantity spread between selected items too wide")

	// ErrEmptyMenu is InvalidInput: the menu has no items with stock after
	// filtering. It is the only error the orchestrator surfaces to callers.
	ErrEmptyMenu = errors.New("bundle: menu has no items in stock")
)
