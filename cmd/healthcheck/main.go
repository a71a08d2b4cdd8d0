package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/valyala/fasthttp"
)

// Lean liveness probe for container HEALTHCHECK directives: GET /healthz on
// the running server and exit 0 only on a 200.
func main() {
	addr := flag.String("addr", "http://127.0.0.1:8080", "base URL of the server to probe")
	timeout := flag.Duration("timeout", 3*time.Second, "probe timeout")
	flag.Parse()

	status, body, err := fasthttp.GetTimeout(nil, *addr+"/healthz", *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "health probe failed: %v\n", err)
		os.Exit(1)
	}
	if status != fasthttp.StatusOK {
		fmt.Fprintf(os.Stderr, "health probe status %d: %s\n", status, body)
		os.Exit(1)
	}
	fmt.Println(string(body))
}
