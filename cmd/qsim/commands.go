package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qsim"
	"github.com/theapemachine/qsim/circuit"
	"github.com/theapemachine/qsim/render"
	"github.com/theapemachine/qsim/server"
	"github.com/theapemachine/qsim/tableau"
)

var (
	v          = qsim.NewViper()
	configPath string
	cfg        *qsim.Config

	shots     int
	seed      int64
	chartPath string
	asJSON    bool
	showAll   bool
	codeType  string
	errorSpec []string

	rootCmd = &cobra.Command{
		Use:   "qsim",
		Short: "State-vector and stabilizer quantum circuit simulator",
		Long: `qsim simulates small quantum circuits either as full state vectors
or as stabilizer tableaus with Pauli error injection and syndrome decoding.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = qsim.LoadConfig(v, configPath)
			return err
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulators over HTTP",
		RunE:  runServe,
	}

	circuitCmd = &cobra.Command{
		Use:   "circuit [request.json|-]",
		Short: "Run a state-vector circuit request",
		Args:  cobra.ExactArgs(1),
		RunE:  runCircuit,
	}

	stabilizerCmd = &cobra.Command{
		Use:   "stabilizer [request.json|-]",
		Short: "Run a stabilizer tableau request",
		Args:  cobra.ExactArgs(1),
		RunE:  runStabilizer,
	}

	qecCmd = &cobra.Command{
		Use:     "qec",
		Short:   "Inject errors into a preset code and correct them",
		Example: "  qsim qec --code steane --error Y:4",
		RunE:    runQEC,
	}

	codesCmd = &cobra.Command{
		Use:   "codes",
		Short: "List the preset error-correcting codes",
		Run:   runCodes,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().Int("max-qubits", 0, "largest state-vector register accepted")
	_ = v.BindPFlag("max_qubits", rootCmd.PersistentFlags().Lookup("max-qubits"))

	serveCmd.Flags().String("host", "", "listen host")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("static", "", "directory of frontend files to serve")
	_ = v.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = v.BindPFlag("server.static_dir", serveCmd.Flags().Lookup("static"))
	serveCmd.Flags().Int("rate-burst", 0, "simulations admitted in a burst, 0 for no rate limit")
	_ = v.BindPFlag("rate_burst", serveCmd.Flags().Lookup("rate-burst"))

	circuitCmd.Flags().IntVar(&shots, "shots", 0, "sample this many measurements")
	circuitCmd.Flags().Int64Var(&seed, "seed", 0, "sampling seed, 0 for time-based")
	circuitCmd.Flags().StringVar(&chartPath, "chart", "", "write an HTML probability chart here")
	circuitCmd.Flags().BoolVar(&showAll, "all", false, "include zero-probability basis states")

	qecCmd.Flags().StringVar(&codeType, "code", "bit_flip", "bit_flip, phase_flip or steane")
	qecCmd.Flags().StringSliceVar(&errorSpec, "error", nil, "Pauli error as TYPE:QUBIT, repeatable")

	for _, c := range []*cobra.Command{circuitCmd, stabilizerCmd, qecCmd} {
		c.Flags().BoolVar(&asJSON, "json", false, "print the raw JSON result")
	}

	rootCmd.AddCommand(serveCmd, circuitCmd, stabilizerCmd, qecCmd, codesCmd)
}

func options() circuit.Options {
	return circuit.Options{
		MaxQubits:           cfg.MaxQubits,
		MaxStabilizerQubits: cfg.MaxStabilizerQubits,
	}
}

func readRequest(path string, into any) error {
	var (
		data []byte
		err  error
	)

	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}

	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("parse request %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := qsim.NewQ(ctx, cfg)
	defer pool.Close()

	srv, err := server.NewServer(pool, cfg)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runCircuit(cmd *cobra.Command, args []string) error {
	var req circuit.CircuitRequest
	if err := readRequest(args[0], &req); err != nil {
		return err
	}

	if cmd.Flags().Changed("shots") {
		req.Shots = shots
	}
	if cmd.Flags().Changed("seed") {
		req.Seed = seed
	}

	res, err := circuit.RunCircuit(cmd.Context(), req, options())
	if err != nil {
		return err
	}

	if chartPath != "" {
		f, err := os.Create(chartPath)
		if err != nil {
			return fmt.Errorf("create chart: %w", err)
		}
		defer f.Close()

		if err := render.WriteChart(f, "Circuit probabilities", res); err != nil {
			return err
		}
		errnie.Info("runCircuit - chart written to %s", chartPath)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, res)
	}

	render.Steps(out, res)
	render.Probabilities(out, res, !showAll)
	for _, w := range res.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	return nil
}

func runStabilizer(cmd *cobra.Command, args []string) error {
	var req circuit.StabilizerRequest
	if err := readRequest(args[0], &req); err != nil {
		return err
	}

	res, err := circuit.RunStabilizer(cmd.Context(), req, options())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, res)
	}

	render.Tableau(out, res.AfterRecovery)
	render.Correction(out, res)
	return nil
}

func runQEC(cmd *cobra.Command, args []string) error {
	errs, err := parseErrors(errorSpec)
	if err != nil {
		return err
	}

	res, err := circuit.RunStabilizer(cmd.Context(), circuit.StabilizerRequest{
		CodeType: codeType,
		Errors:   errs,
	}, options())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, &circuit.QECResult{
			Initial:       res.Initial,
			AfterErrors:   res.AfterErrors,
			HasError:      res.HasError,
			Recovery:      res.Recovery,
			AfterRecovery: res.AfterRecovery,
		})
	}

	render.Correction(out, res)
	return nil
}

// parseErrors reads specs such as "X:0" or "z:2".
func parseErrors(specs []string) ([]circuit.PauliError, error) {
	out := make([]circuit.PauliError, 0, len(specs))

	for _, spec := range specs {
		kind, qubit, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("error %q: want TYPE:QUBIT", spec)
		}

		p, err := tableau.ParsePauli(kind)
		if err != nil {
			return nil, err
		}

		q, err := strconv.Atoi(strings.TrimSpace(qubit))
		if err != nil {
			return nil, fmt.Errorf("error %q: %w", spec, err)
		}

		out = append(out, circuit.PauliError{Type: p, Qubit: q})
	}

	return out, nil
}

func runCodes(cmd *cobra.Command, args []string) {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Code", "Qubits", "Corrects"})

	for _, c := range tableau.Codes() {
		n, summary, _ := tableau.Describe(c)
		table.Append([]string{string(c), strconv.Itoa(n), summary})
	}

	table.Render()
}
