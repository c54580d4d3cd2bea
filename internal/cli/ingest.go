package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/almanac/internal/decoder"
	"github.com/mesh-intelligence/almanac/internal/ingest"
	"github.com/mesh-intelligence/almanac/internal/metrics"
	"github.com/mesh-intelligence/almanac/internal/sqlite"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

type ingestFlags struct {
	playthrough string
}

func (a *app) newIngestCmd() *cobra.Command {
	var f ingestFlags
	cmd := &cobra.Command{
		Use:   "ingest <save>...",
		Short: "Ingest save snapshots into the database",
		Long: "Decode each save file and commit it as one snapshot of the playthrough.\n" +
			"Files ending in .json are read as already decoded documents; any other\n" +
			"file is converted with rakaly. Each file is its own transaction and\n" +
			"ingestion stops at the first failure.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return userError{fmt.Errorf("requires at least one save file")}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runIngest(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.playthrough, "playthrough", "p", "", "playthrough id the snapshots belong to (required)")
	fl.String("decoder", "", "path to the rakaly executable (default: rakaly on PATH)")
	fl.Duration("timeout", 0, "maximum run time of one decoder invocation")
	fl.String("metrics-file", "", "write Prometheus metrics to this textfile")
	_ = a.viper.BindPFlag(cfgKeyDecoderPath, fl.Lookup("decoder"))
	_ = a.viper.BindPFlag(cfgKeyDecoderTimeout, fl.Lookup("timeout"))
	_ = a.viper.BindPFlag(cfgKeyMetricsFile, fl.Lookup("metrics-file"))
	return cmd
}

func (a *app) runIngest(cmd *cobra.Command, f ingestFlags, files []string) error {
	if err := types.ValidatePlaythroughID(f.playthrough); err != nil {
		return userError{err}
	}
	s, err := a.settings()
	if err != nil {
		return err
	}

	m := metrics.New()
	defer func() {
		if werr := m.WriteTextfile(s.MetricsFile); werr != nil {
			a.logger.Warn("write metrics textfile", zap.String("path", s.MetricsFile), zap.Error(werr))
		}
	}()

	backend := sqlite.NewBackend()
	if err := backend.Attach(s.Store); err != nil {
		return fmt.Errorf("attach store: %w", err)
	}
	defer backend.Detach()

	ctx := cmd.Context()
	ing := ingest.New(backend, ingest.WithLogger(a.logger), ingest.WithMetrics(m))
	rakaly := decoder.RakalySource{Path: s.DecoderPath, Timeout: s.DecoderTimeout}

	for _, path := range files {
		raw, info, err := decoder.ForFile(path, rakaly).Load(ctx, path)
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		res, err := ing.Ingest(ctx, raw, f.playthrough, info)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s save_date=%q countries=%d wars=%d dropped=%d\n",
			info.Filename, res.State, res.Snapshot.SaveDate,
			res.Rows[types.TableCountries], res.Rows[types.TableWars], res.Dropped)
	}
	return nil
}
