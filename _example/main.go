package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/longtsing/metagrid"
	"github.com/longtsing/metagrid/invidx"
	"github.com/longtsing/metagrid/query"
	"github.com/longtsing/metagrid/testutil"
)

func main() {
	records := testutil.GridRecords(map[string][]any{
		"class":    {"od"},
		"param":    {"2t", "msl", "tp", "10u", "10v"},
		"levelist": {100, 200, 300, 500, 700, 850, 925, 1000},
		"date":     {"2020-01-01", "2020-01-02", "2020-01-03"},
		"number":   {0, 1, 2, 3},
	})

	ix, err := metagrid.NewRecordIndex(records, metagrid.WithAliases(metagrid.DefaultAliases))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("--- Select ---")
	fmt.Println("Size:", ix.Len())

	start := time.Now()

	out, err := ix.Sel(map[string]any{
		"param": []string{"2t", "msl"},
		"level": []int{500, 850}, // alias for levelist
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Matches:", out.Len())
	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Order ---")

	out, err = out.OrderBy(query.Desc("levelist"), query.ByRank("param", "msl", "2t"), "date")
	if err != nil {
		log.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		e, err := out.Get(i)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s level=%v date=%v number=%v\n",
			e.Metadata("param"), e.Metadata("levelist"), e.Metadata("date"), e.Metadata("number"))
	}
	fmt.Println()

	fmt.Println("--- Inverted index ---")

	inv, err := invidx.Build(ix, "param", "levelist", "number")
	if err != nil {
		log.Fatal(err)
	}

	start = time.Now()
	fast, err := invidx.Sel(ix, inv, map[string]any{"param": "tp", "number": 0})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("Matches:", fast.Len())
	fmt.Printf("Seconds: %.4f\n\n", time.Since(start).Seconds())

	fmt.Println("--- Availability ---")

	av, err := metagrid.BuildAvailability(ix, []string{"param", "levelist", "date", "number"})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Combinations:", av.Count())
	fmt.Println("Full hypercube:", metagrid.IsFullHypercube(ix, av))
	fmt.Print(av.Render())

	fmt.Println()
	fmt.Println("--- Graph ---")
	metagrid.Graph(os.Stdout, out)
}
