// Package availability summarizes which metadata combinations exist in a
// collection.
//
// An Availability is a read-only view over a factorization tree built from
// the metadata of every element. Transforming operations (Select, Missing)
// return new Availability values over transformed trees; nothing is mutated
// in place.
//
//	av := availability.FromRecords(records)
//	fmt.Print(av.Render())
//	missing := av.Missing(availability.Request{"level": {"500", "850"}})
//
// Trees are consumed through the Tree interface, so factorization strategies
// other than the default (package factorise) can be plugged in.
package availability
