package engine

import (
	"database/sql/driver"
	"fmt"
	"sync"

	sqlite "modernc.org/sqlite"
)

// Dist2Function is the name of the squared Euclidean distance SQL function:
//
//	point_dist2(x, y, z, cx, cy, cz)
const Dist2Function = "point_dist2"

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterPointFunctions registers point_dist2 with the driver so it is
// available on connections opened after this call. Existing open connections
// will not see the function. Open calls it before connecting; repeated calls
// are no-ops.
func RegisterPointFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction(Dist2Function, 6, dist2Impl)
	})
	return registerErr
}

func asFloat(arg driver.Value) (float64, bool, error) {
	switch v := arg.(type) {
	case nil:
		return 0, false, nil
	case float64:
		return v, true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("%s: unsupported argument type %T; want REAL", Dist2Function, arg)
	}
}

func dist2Impl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 6 {
		return nil, fmt.Errorf("%s: expected 6 arguments, got %d", Dist2Function, len(args))
	}
	var v [6]float64
	for i, arg := range args {
		f, ok, err := asFloat(arg)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		v[i] = f
	}
	return dist2(v[0], v[1], v[2], v[3], v[4], v[5]), nil
}

// dist2 mirrors point.Point.Dist2 so SQL ordering matches the Go helpers.
// The conversions keep each square rounded on its own, without fused
// multiply-add.
func dist2(x, y, z, cx, cy, cz float64) float64 {
	dx := x - cx
	dy := y - cy
	dz := z - cz
	return float64(dx*dx) + float64(dy*dy) + float64(dz*dz)
}
