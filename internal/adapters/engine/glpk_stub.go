//go:build !glpk

package engine

import "fixture-trip-planner/internal/ports"

const glpkAvailable = false

func newGLPK() ports.OptimizationEngine { return nil }
