package rigidscene

import "math"

func checkAngle(node, field string, v float64) error {
	if v < -math.Pi || v > math.Pi || math.IsNaN(v) {
		return fieldError(node, field, v, ErrOutOfRange)
	}
	return nil
}

func checkUnit(node, field string, v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fieldError(node, field, v, ErrOutOfRange)
	}
	return nil
}

func checkNonNegative(node, field string, v float64) error {
	if v < 0 || math.IsNaN(v) {
		return fieldError(node, field, v, ErrNegative)
	}
	return nil
}

func checkPositive(node, field string, v float64) error {
	if v <= 0 || math.IsNaN(v) {
		return fieldError(node, field, v, ErrNonPositive)
	}
	return nil
}
