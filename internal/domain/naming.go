package domain

import (
	"strconv"
	"strings"
)

// Decision variable names follow x_{day}_{route}, e_{branch}_{day} and
// t_{branch}_{day}_{route}.

func XName(day, route int) string {
	return "x_" + strconv.Itoa(day) + "_" + strconv.Itoa(route)
}

func EName(branch, day int) string {
	return "e_" + strconv.Itoa(branch) + "_" + strconv.Itoa(day)
}

func TName(branch, day, route int) string {
	return "t_" + strconv.Itoa(branch) + "_" + strconv.Itoa(day) + "_" + strconv.Itoa(route)
}

// VarRef is a parsed decision variable name. Unused indices are -1.
type VarRef struct {
	Kind   byte
	Branch int
	Day    int
	Route  int
}

// ParseVarName decodes a decision variable name.
func ParseVarName(name string) (VarRef, bool) {
	parts := strings.Split(name, "_")
	if len(parts) < 3 || len(parts[0]) != 1 {
		return VarRef{}, false
	}

	nums := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return VarRef{}, false
		}
		nums = append(nums, n)
	}

	ref := VarRef{Kind: parts[0][0], Branch: -1, Day: -1, Route: -1}
	switch {
	case ref.Kind == 'x' && len(nums) == 2:
		ref.Day, ref.Route = nums[0], nums[1]
	case ref.Kind == 'e' && len(nums) == 2:
		ref.Branch, ref.Day = nums[0], nums[1]
	case ref.Kind == 't' && len(nums) == 3:
		ref.Branch, ref.Day, ref.Route = nums[0], nums[1], nums[2]
	default:
		return VarRef{}, false
	}
	return ref, true
}
