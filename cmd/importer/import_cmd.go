package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Custodia-api/internal/application/importer"
	"github.com/jhoicas/Custodia-api/internal/application/ledger"
	"github.com/jhoicas/Custodia-api/internal/domain"
	"github.com/jhoicas/Custodia-api/internal/domain/location"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/redisstream"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/storage"
	"github.com/jhoicas/Custodia-api/internal/infrastructure/xlsx"
	"github.com/jhoicas/Custodia-api/pkg/config"
	"github.com/jhoicas/Custodia-api/pkg/logger"
)

type importOptions struct {
	file    string
	batch   string
	invoice string
	sheet   string
	actor   string
	apply   bool
}

func newRootCmd() *cobra.Command {
	var opts importOptions

	root := &cobra.Command{
		Use:           "importer",
		Short:         "Importación de lotes de embarque (.xlsx)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.file, "file", "", "Hoja del proveedor .xlsx (requerido)")
	root.PersistentFlags().StringVar(&opts.batch, "batch", "", "Código del lote de embarque (requerido)")
	root.PersistentFlags().StringVar(&opts.invoice, "invoice", "", "Factura del proveedor (requerido)")
	root.PersistentFlags().StringVar(&opts.sheet, "sheet", "", "Hoja a leer (por defecto la primera)")
	root.PersistentFlags().StringVar(&opts.actor, "actor", defaultActor(), "Usuario que registra la importación")
	for _, f := range []string{"file", "batch", "invoice"} {
		_ = root.MarkPersistentFlagRequired(f)
	}

	preview := &cobra.Command{
		Use:   "preview",
		Short: "Valida el lote sin escribir nada",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, false)
		},
	}
	commit := &cobra.Command{
		Use:   "commit",
		Short: "Crea todas las unidades del lote en una transacción (simulación sin --apply)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), opts, true)
		},
	}
	commit.Flags().BoolVar(&opts.apply, "apply", false, "Aplicar cambios en la base (por defecto es simulación)")

	root.AddCommand(preview, commit)
	return root
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return "cli:" + u
	}
	return "cli"
}

func runImport(ctx context.Context, out io.Writer, opts importOptions, commit bool) error {
	if strings.TrimSpace(opts.actor) == "" {
		return withCode(exitUsage, errors.New("--actor no puede estar vacío"))
	}
	f, err := os.Open(opts.file)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("abrir --file: %w", err))
	}
	rows, err := xlsx.Read(f, opts.sheet)
	_ = f.Close()
	if err != nil {
		return withCode(exitInvalid, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, App: "importer", Out: os.Stderr})

	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	locations, err := location.New(location.Config{
		Warehouse: cfg.Locations.Warehouse,
		Workshop:  cfg.Locations.Workshop,
		Branches:  cfg.Locations.Branches,
	})
	if err != nil {
		return err
	}
	ledgerOpts := []ledger.Option{ledger.WithLogger(log.Component("ledger")), ledger.WithTimeout(cfg.OperationTimeout)}
	if cfg.Redis.Enabled() {
		client, err := redisstream.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		ledgerOpts = append(ledgerOpts, ledger.WithPublisher(redisstream.NewPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen)))
	}
	l := ledger.NewService(store.TxRunner, store.Units, store.Events, store.Transfers, locations, ledgerOpts...)
	svc := importer.NewService(store.Units, l, cfg.Import.MaxRows, log.Component("importer"))

	batch := importer.Batch{ShipmentBatch: opts.batch, SupplierInvoice: opts.invoice, Rows: rows}
	if !commit {
		p, err := svc.Preview(ctx, batch)
		if err != nil {
			return classify(err)
		}
		writePreview(out, p)
		if !p.Clean() {
			return withCode(exitInvalid, fmt.Errorf("el lote tiene %d problemas", len(p.Problems())))
		}
		return nil
	}

	res, err := svc.Commit(ctx, batch, !opts.apply, opts.actor)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				fmt.Fprintln(out, "  -", p)
			}
		}
		return classify(err)
	}
	writePreview(out, res.Preview)
	switch {
	case res.Committed:
		fmt.Fprintf(out, "Lote %s confirmado: %d unidades creadas en %s\n",
			res.Preview.ShipmentBatch, len(res.Units), locations.Warehouse().Code)
	case res.Preview.Clean():
		fmt.Fprintln(out, "Simulación: el lote es válido. Use --apply para confirmarlo.")
	default:
		return withCode(exitInvalid, fmt.Errorf("el lote tiene %d problemas", len(res.Preview.Problems())))
	}
	return nil
}

func classify(err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
		return withCode(exitInvalid, err)
	}
	return err
}

func writePreview(out io.Writer, p *importer.Preview) {
	fmt.Fprintf(out, "Lote %s, factura %s: %d filas, %d válidas\n",
		p.ShipmentBatch, p.SupplierInvoice, p.TotalRows, p.CleanRows)
	for _, problem := range p.Problems() {
		fmt.Fprintln(out, "  -", problem)
	}
}
