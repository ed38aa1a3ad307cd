// Command nomina-introspectd loads one or more modules and serves their
// diagnostics and finalized declaration types over the Introspection gRPC
// service (internal/introspect), the way the teacher's cmd/funxy wires a
// CLI driver directly on top of internal/pipeline rather than going
// through internal/evaluator's VM.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/config"
	"github.com/nomina-lang/nomina/internal/introspect"
	"github.com/nomina-lang/nomina/internal/modulesys"
)

func main() {
	addr := flag.String("addr", ":7711", "address to serve the Introspection gRPC service on")
	solverConfigPath := flag.String("solver-config", "", "path to a YAML solver configuration file (optional)")
	flag.Parse()

	solverCfg := config.DefaultSolverConfig()
	if *solverConfigPath != "" {
		doc, err := os.ReadFile(*solverConfigPath)
		if err != nil {
			log.Fatalf("nomina-introspectd: reading solver config: %v", err)
		}
		parsed, err := config.ParseSolverConfig(doc)
		if err != nil {
			log.Fatalf("nomina-introspectd: parsing solver config: %v", err)
		}
		solverCfg = parsed
	}

	cc := compiler.New(solverCfg)
	loader := modulesys.New(cc)

	for _, path := range flag.Args() {
		src, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("nomina-introspectd: reading %s: %v", path, err)
		}
		mod, err := loader.Load(compiler.LocalModuleID(moduleNameFor(path)), string(src))
		if err != nil {
			log.Fatalf("nomina-introspectd: loading %s: %v", path, err)
		}
		if mod.Sink.HasErrors() {
			log.Printf("nomina-introspectd: %s loaded with errors", path)
		}
	}

	svc, err := introspect.NewService(introspect.NewProvider(cc, loader))
	if err != nil {
		log.Fatalf("nomina-introspectd: building introspection service: %v", err)
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("nomina-introspectd: listen %s: %v", *addr, err)
	}

	server := grpc.NewServer()
	svc.Register(server)

	fmt.Printf("nomina-introspectd: serving on %s\n", *addr)
	if err := server.Serve(lis); err != nil {
		log.Fatalf("nomina-introspectd: serve: %v", err)
	}
}

func moduleNameFor(path string) string {
	base := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			base = path[i+1:]
			break
		}
	}
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '.' {
			return base[:i]
		}
	}
	return base
}
