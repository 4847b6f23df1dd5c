package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"

	"texls/internal/lsp"
	"texls/internal/server"
)

const version = "0.1.0"

var (
	tcpMode   bool
	tcpPort   int
	verbosity int
	logFile   string
)

func init() {
	flag.BoolVar(&tcpMode, "tcp", false, "Run server in TCP mode (for debugging)")
	flag.IntVar(&tcpPort, "port", 8765, "TCP port to listen on (used with -tcp)")
	flag.IntVar(&verbosity, "verbosity", 0, "Log verbosity (0 = warnings, higher is chattier)")
	flag.StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	flag.Usage = usage
}

func usage() {
	fmt.Fprintf(os.Stderr, "texls version %s\n\n", version)
	fmt.Fprintf(os.Stderr, "Usage: texls [options]\n\n")
	fmt.Fprintf(os.Stderr, "Language Server Protocol implementation for LaTeX and BibTeX\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Parse()

	if flag.NArg() > 0 && flag.Arg(0) == "version" {
		fmt.Printf("texls version %s\n", version)
		os.Exit(0)
	}

	// Logging goes to a file or stderr; stdout belongs to the protocol in
	// stdio mode.
	if logFile != "" {
		commonlog.Configure(verbosity, &logFile)
	} else {
		commonlog.Configure(verbosity, nil)
	}

	srv := server.New()
	lsp.SetServer(srv)

	glspServer := glspserver.NewServer(lsp.NewHandler(), "texls", false)

	if tcpMode {
		if err := glspServer.RunTCP(fmt.Sprintf("127.0.0.1:%d", tcpPort)); err != nil {
			fmt.Fprintf(os.Stderr, "TCP server error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := glspServer.RunStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "STDIO server error: %v\n", err)
			os.Exit(1)
		}
	}
}
