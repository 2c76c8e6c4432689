package main

import (
	"encoding/hex"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/bitpack/archive"
	"github.com/wippyai/bitpack/errors"
	"github.com/wippyai/bitpack/layout"
	"github.com/wippyai/bitpack/record"
	"github.com/wippyai/bitpack/schema"
)

type options struct {
	schemaPath  string
	recordName  string
	hexInput    string
	sets        []string
	outPath     string
	appendOut   bool
	compression string
	dumpPath    string
	list        bool
	interactive bool
	verbose     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (*options, error) {
	var opts options
	flagSet := pflag.NewFlagSet("bitpack", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.schemaPath, "schema", "s", os.Getenv("BITPACK_SCHEMA"), "schema file (.yaml, .yml, .json, .jsonc); defaults to $BITPACK_SCHEMA")
	flagSet.StringVarP(&opts.recordName, "record", "r", "", "record layout to use")
	flagSet.StringVar(&opts.hexInput, "hex", "", "packed record bytes as hex (default: all zero)")
	flagSet.StringArrayVar(&opts.sets, "set", nil, "assign field=value (repeatable)")
	flagSet.StringVarP(&opts.outPath, "out", "o", "", "write the record to this archive")
	flagSet.BoolVar(&opts.appendOut, "append", false, "keep the records already in --out")
	flagSet.StringVar(&opts.compression, "compress", "none", "archive compression: none, lz4, zstd")
	flagSet.StringVar(&opts.dumpPath, "dump", "", "print every record in this archive")
	flagSet.BoolVarP(&opts.list, "list", "l", false, "list the schema's layouts and exit")
	flagSet.BoolVarP(&opts.interactive, "interactive", "i", false, "edit the record in a terminal UI")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging to stderr")
	flagSet.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bitpack --schema <file> --list")
		fmt.Fprintln(os.Stderr, "       bitpack --schema <file> --record <name> [--hex <bytes>] [--set f=v ...] [--out a.bpak]")
		fmt.Fprintln(os.Stderr, "       bitpack --schema <file> --record <name> --dump a.bpak")
		fmt.Fprintln(os.Stderr, "       bitpack --schema <file> --record <name> -i")
		fmt.Fprintln(os.Stderr)
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if opts.schemaPath == "" {
		return nil, fmt.Errorf("--schema is required (or set BITPACK_SCHEMA)")
	}
	if !opts.list && opts.recordName == "" {
		return nil, fmt.Errorf("--record is required")
	}
	if opts.dumpPath != "" && (opts.outPath != "" || len(opts.sets) > 0 || opts.interactive) {
		return nil, fmt.Errorf("--dump cannot be combined with --out, --set or -i")
	}
	return &opts, nil
}

func run(args []string, stdout io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer logger.Sync()
		layout.SetLogger(logger.Named("layout"))
		schema.SetLogger(logger.Named("schema"))
		archive.SetLogger(logger.Named("archive"))
	}

	s, err := schema.Load(opts.schemaPath)
	if err != nil {
		return fmt.Errorf("load schema:\n%s", formatErrors(err))
	}

	if opts.list {
		listLayouts(stdout, s)
		return nil
	}

	l, ok := s.Record(opts.recordName)
	if !ok {
		return errors.NotFound(errors.PhaseLoad, "record", opts.recordName)
	}

	if opts.dumpPath != "" {
		return dumpArchive(stdout, opts.dumpPath, l)
	}

	r, err := initialRecord(l, opts.hexInput)
	if err != nil {
		return err
	}
	for _, a := range opts.sets {
		field, value, err := parseAssignment(a)
		if err != nil {
			return err
		}
		if err := assign(r, field, value); err != nil {
			return err
		}
	}

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		if r, err = runInteractive(r); err != nil {
			return err
		}
	}

	printRecord(stdout, r)

	if opts.outPath != "" {
		c, err := archive.ParseCompression(opts.compression)
		if err != nil {
			return err
		}
		n, err := writeArchive(opts.outPath, r, c, opts.appendOut)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "wrote %d record(s) to %s\n", n, opts.outPath)
	}
	return nil
}

func initialRecord(l *layout.Layout, hexInput string) (*record.Record, error) {
	if hexInput == "" {
		return record.New(l), nil
	}
	b, err := hex.DecodeString(strings.TrimPrefix(strings.ReplaceAll(hexInput, " ", ""), "0x"))
	if err != nil {
		return nil, errors.ParseFailed("hex record", err)
	}
	return record.FromBytes(l, b)
}

func listLayouts(w io.Writer, s *schema.Schema) {
	for _, m := range s.Enums() {
		fmt.Fprintf(w, "enum %s (%s, %d bits)\n", m.Name(), m.Policy(), m.Bits())
		for _, v := range m.Variants() {
			fmt.Fprintf(w, "  %-16s %d\n", v.Name, v.Ordinal)
		}
	}
	for _, l := range s.Records() {
		fmt.Fprintf(w, "record %s (%d bits, %d bytes)\n", l.Name(), l.TotalBits(), l.ByteSize())
		for _, f := range l.Fields() {
			kind := f.Kind.String()
			if f.Kind == layout.KindEnum {
				kind += " " + f.Enum.Name()
			}
			fmt.Fprintf(w, "  %-16s @%-4d %2d bits  %s\n", f.Name, f.Offset, f.Bits, kind)
		}
	}
}

func printRecord(w io.Writer, r *record.Record) {
	fmt.Fprintln(w, r.String())
	fmt.Fprintln(w, hex.EncodeToString(r.Bytes()))
}

func dumpArchive(w io.Writer, path string, l *layout.Layout) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	ar, err := archive.NewReader(f, l)
	if err != nil {
		return err
	}
	defer ar.Close()

	h := ar.Header()
	fmt.Fprintf(w, "archive %s: layout %s, %d-byte records, %s\n", path, h.Layout, h.RecordSize, h.Compression)
	for {
		r, err := ar.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%6d  %s  %s\n", ar.Count()-1, hex.EncodeToString(r.Bytes()), r)
	}
	fmt.Fprintf(w, "%d record(s)\n", ar.Count())
	return nil
}

// writeArchive writes r to path, after the records already there when
// keep is set.
func writeArchive(path string, r *record.Record, c archive.Compression, keep bool) (uint64, error) {
	var prior []*record.Record
	if keep {
		existing, err := readAll(path, r.Layout())
		if err != nil && !stderrors.Is(err, os.ErrNotExist) {
			return 0, err
		}
		prior = existing
	}

	// the new archive replaces path only once it is complete
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	tmp := f.Name()
	n, err := writeRecords(f, r.Layout(), c, append(prior, r))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

func writeRecords(w io.Writer, l *layout.Layout, c archive.Compression, recs []*record.Record) (uint64, error) {
	aw, err := archive.NewWriter(w, l, archive.WithCompression(c))
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		if err := aw.Write(rec); err != nil {
			return 0, err
		}
	}
	if err := aw.Close(); err != nil {
		return 0, err
	}
	return aw.Count(), nil
}

func readAll(path string, l *layout.Layout) ([]*record.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ar, err := archive.NewReader(f, l)
	if err != nil {
		return nil, err
	}
	defer ar.Close()
	return ar.ReadAll()
}
