package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/aashari/go-report-analyzer/internal/client"
	"github.com/aashari/go-report-analyzer/internal/httpclient"
)

var (
	server   = flag.String("server", client.DefaultBaseURL, "Analyzer base URL.")
	language = flag.String("language", "English", "Language of the analysis.")
	timeout  = flag.Duration("timeout", 2*time.Minute, "Request timeout.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <image>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	analysis, err := client.New(*server, httpclient.NewFactory(httpclient.Options{Timeout: *timeout}).CreateDefaultClient()).AnalyzeFile(ctx, flag.Arg(0), *language)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	fmt.Println(analysis)
}
