// Package query compiles user-supplied selection and ordering arguments into
// predicate and comparator objects.
//
// The compilers are pure: they do not depend on any collection type and can be
// evaluated against anything that exposes per-key metadata. Invalid arguments
// fail at construction time, never at match time.
//
// # Selection
//
//	sel, err := query.NewSelection(map[string]any{
//	    "param": "2t",
//	    "level": []int{500, 850},
//	    "date":  query.All,
//	})
//	ok := sel.MatchElement(e)
//
// Membership lists are coerced lazily: on the first non-nil probe every member
// is cast to the probe's runtime type, so metadata stored as strings still
// matches numeric query values and vice versa.
//
// # Order
//
//	order, err := query.NewOrder("date", query.Desc("level"),
//	    query.ByRank("param", "z", "t", "q"))
//	n, err := order.CompareElements(a, b)
//
// Keys compare in declaration order; the first nonzero comparison wins.
package query
