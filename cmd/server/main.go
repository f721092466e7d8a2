package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"tpchq5/internal/api"
	"tpchq5/internal/engine"
)

var (
	fAddr      = flag.String("addr", ":8080", "listen address")
	fTablePath = flag.String("table_path", ".", "directory holding the <table>.tbl files")
	fThreads   = flag.Int("threads", runtime.NumCPU(), "worker count for requests that do not set threads")
)

func main() {
	flag.Parse()

	e := echo.New()
	e.JSONSerializer = api.JSONSerializer{}
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// The API is live immediately and answers 503 until the tables are in.
	h := api.NewHandler(nil, *fThreads)
	h.RegisterRoutes(e)

	go func() {
		log.Println("BACKGROUND: Loading tables...")
		t0 := time.Now()

		store, err := engine.LoadStore(*fTablePath)
		if err != nil {
			log.Fatalf("BACKGROUND: %v", err)
		}
		eng, err := engine.NewEngine(store)
		if err != nil {
			log.Fatalf("BACKGROUND: %v", err)
		}
		h.SetEngine(eng)

		log.Printf("BACKGROUND: Tables indexed in %v. API is fully ready.", time.Since(t0))
	}()

	log.Printf("Server ready on %s (tables loading in background...)", *fAddr)
	e.Logger.Fatal(e.Start(*fAddr))
}
