package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"tpchq5/internal/engine"
)

// Example: --r_name ASIA --start_date 1994-01-01 --end_date 1995-01-01 --threads 4
// --table_path /path/to/tables --result_path /path/to/result.txt
var (
	fRegion     = flag.String("r_name", "", "region name to report revenue for")
	fStartDate  = flag.String("start_date", "", "first order date included (YYYY-MM-DD)")
	fEndDate    = flag.String("end_date", "", "first order date excluded (YYYY-MM-DD)")
	fThreads    = flag.Int("threads", 1, "number of worker goroutines")
	fTablePath  = flag.String("table_path", "", "directory holding the <table>.tbl files")
	fResultPath = flag.String("result_path", "", "file the sorted result is written to")
)

func oops(stage string, err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "ERROR [%s] %s\n", stage, err)
	os.Exit(1)
}

func main() {
	flag.Parse()
	if flag.NArg() > 0 {
		oops("args", fmt.Errorf("unknown argument: %s", flag.Arg(0)))
	}
	for _, name := range []string{"r_name", "start_date", "end_date", "table_path", "result_path"} {
		if flag.Lookup(name).Value.String() == "" {
			oops("args", fmt.Errorf("missing value for --%s", name))
		}
	}
	params := engine.Params{
		Region:    *fRegion,
		StartDate: *fStartDate,
		EndDate:   *fEndDate,
		Threads:   *fThreads,
	}
	if err := params.Validate(); err != nil {
		oops("args", err)
	}

	store, err := engine.LoadStore(*fTablePath)
	if err != nil {
		oops("load", err)
	}
	eng, err := engine.NewEngine(store)
	if err != nil {
		oops("index", err)
	}
	result, err := eng.Run(params)
	if err != nil {
		oops("query", err)
	}
	if err := engine.WriteResult(*fResultPath, result); err != nil {
		oops("output", err)
	}
	fmt.Printf("Wrote %d nations to %s\n", len(result), *fResultPath)
}
