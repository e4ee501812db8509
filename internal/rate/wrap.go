package rate

import (
	"math"

	"github.com/shopspring/decimal"
)

// Wrap normalizes a caller-supplied rate override. A nil value means "no override" and
// yields ok == false. Numeric values and Source implementations are converted to exact
// decimals; anything else, strings included, is rejected with *InvalidRateValueError.
func Wrap(v any) (r Rate, ok bool, err error) {
	if v == nil {
		return Rate{}, false, nil
	}

	var d decimal.Decimal
	switch x := v.(type) {
	case Rate:
		d = x.value
	case *Rate:
		if x == nil {
			return Rate{}, false, nil
		}
		d = x.value
	case decimal.Decimal:
		d = x
	case *decimal.Decimal:
		if x == nil {
			return Rate{}, false, nil
		}
		d = *x
	case int:
		d = decimal.NewFromInt(int64(x))
	case int8:
		d = decimal.NewFromInt(int64(x))
	case int16:
		d = decimal.NewFromInt(int64(x))
	case int32:
		d = decimal.NewFromInt32(x)
	case int64:
		d = decimal.NewFromInt(x)
	case uint:
		d = decimal.NewFromUint64(uint64(x))
	case uint8:
		d = decimal.NewFromUint64(uint64(x))
	case uint16:
		d = decimal.NewFromUint64(uint64(x))
	case uint32:
		d = decimal.NewFromUint64(uint64(x))
	case uint64:
		d = decimal.NewFromUint64(x)
	case float32:
		if !finite(float64(x)) {
			return Rate{}, false, &InvalidRateValueError{Value: v, Err: ErrNotFinite}
		}
		d = decimal.NewFromFloat32(x)
	case float64:
		if !finite(x) {
			return Rate{}, false, &InvalidRateValueError{Value: v, Err: ErrNotFinite}
		}
		d = decimal.NewFromFloat(x)
	case Source:
		d = x.Rate()
	default:
		return Rate{}, false, &InvalidRateValueError{Value: v}
	}

	r, err = New(d)
	if err != nil {
		return Rate{}, false, err
	}
	return r, true, nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
