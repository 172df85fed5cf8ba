package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
)

// boolFlags take no separate value argument.
var boolFlags = map[string]bool{"-migrate": true}

// filterArgs keeps only the allowed flags and their values. Like flag.Parse it
// stops at "--" or the first positional argument.
func filterArgs(args []string, allowed ...string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || a == "-" || !strings.HasPrefix(a, "-") {
			break
		}
		name, _, hasValue := strings.Cut(a, "=")
		name = "-" + strings.TrimLeft(name, "-")
		takesValue := !hasValue && !boolFlags[name] && i+1 < len(args)

		if slices.Contains(allowed, name) {
			out = append(out, a)
			if takesValue {
				out = append(out, args[i+1])
			}
		}
		if takesValue {
			i++
		}
	}
	return out
}

// configPath extracts -config (or -c) from args.
func configPath(args []string) (string, error) {
	var path string
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	if err := fs.Parse(filterArgs(args, "-config", "-c")); err != nil {
		return "", fmt.Errorf("config: %w", err)
	}
	return path, nil
}

// newFlagSet registers every program flag on a fresh set bound to cfg.
func newFlagSet(cfg *Config, kdfTime, kdfMem, kdfThreads *uint) *flag.FlagSet {
	fs := flag.NewFlagSet("vault", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var ignored string
	fs.StringVar(&ignored, "config", "", "path to JSON config file")
	fs.StringVar(&ignored, "c", "", "path to JSON config file (short)")

	fs.StringVar(&cfg.Store, "store", cfg.Store, "storage backend: file or postgres")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for the file store")
	fs.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.BoolVar(&cfg.MigrateOnStart, "migrate", cfg.MigrateOnStart, "apply migrations on start (postgres)")
	fs.UintVar(kdfTime, "kdf-time", uint(cfg.KDF.Time), "argon2id iterations")
	fs.UintVar(kdfMem, "kdf-memory", uint(cfg.KDF.MemoryKiB), "argon2id memory in KiB")
	fs.UintVar(kdfThreads, "kdf-threads", uint(cfg.KDF.Threads), "argon2id parallelism")
	return fs
}

// parseFlags overlays cfg with command-line flags and returns positional arguments.
func parseFlags(cfg *Config, args []string) ([]string, error) {
	var kdfTime, kdfMem, kdfThreads uint
	fs := newFlagSet(cfg, &kdfTime, &kdfMem, &kdfThreads)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if kdfTime > math.MaxUint32 || kdfMem > math.MaxUint32 || kdfThreads > math.MaxUint8 {
		return nil, fmt.Errorf("config: kdf parameter out of range")
	}
	cfg.KDF.Time = uint32(kdfTime)
	cfg.KDF.MemoryKiB = uint32(kdfMem)
	cfg.KDF.Threads = uint8(kdfThreads)
	return fs.Args(), nil
}

// Usage writes the flag summary to w.
func Usage(w io.Writer) {
	var cfg Config
	cfg.LoadDefaults()
	var a, b, c uint
	fs := newFlagSet(&cfg, &a, &b, &c)
	fs.SetOutput(w)
	fs.PrintDefaults()
}
