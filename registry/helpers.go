package registry

import (
	"fmt"
	"math"

	"github.com/gwframe/frame/errs"
)

func errUnderrun(ctx *Context) error {
	return errs.NewOffsetError(errs.ErrUnderrun, ctx.Path, 0)
}

// requireNonEmpty implements the verify rule spec.md §4.5 names first:
// "non-empty required strings."
func requireNonEmpty(name string) error {
	if name == "" {
		return fmt.Errorf("%w: required name field is empty", errs.ErrFormat)
	}

	return nil
}

func float64ToBits(f float64) uint64 { return math.Float64bits(f) }
func bitsToFloat64(b uint64) float64 { return math.Float64frombits(b) }
func float32ToBits(f float32) uint32 { return math.Float32bits(f) }
func bitsToFloat32(b uint32) float32 { return math.Float32frombits(b) }
