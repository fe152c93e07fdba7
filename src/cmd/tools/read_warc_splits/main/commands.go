// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/m3db/m3warc/src/split"
	"github.com/m3db/m3warc/src/split/ledger"
	"github.com/m3db/m3warc/src/split/runner"
	"github.com/m3db/m3warc/src/warc"
	"github.com/m3db/m3warc/src/x/config"
	"github.com/m3db/m3warc/src/x/instrument"

	"github.com/c2h5oh/datasize"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var errNoLedger = errors.New("no ledger configured, set runner.ledger")

const (
	profileNone = ""
	profileCPU  = "cpu"
	profileMem  = "mem"
)

type profiler interface {
	Stop()
}

type noopProfiler struct{}

func (noopProfiler) Stop() {}

// startProfile starts a cpu or heap profile written to dir on Stop.
func startProfile(mode, dir string) (profiler, error) {
	opts := []func(*profile.Profile){profile.Quiet, profile.NoShutdownHook}
	if dir != "" {
		opts = append(opts, profile.ProfilePath(dir))
	}
	switch mode {
	case profileNone:
		return noopProfiler{}, nil
	case profileCPU:
		return profile.Start(append(opts, profile.CPUProfile)...), nil
	case profileMem:
		return profile.Start(append(opts, profile.MemProfile)...), nil
	default:
		return nil, fmt.Errorf("unknown profile %q, expected %s or %s", mode, profileCPU, profileMem)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var configFiles []string
	root := &cobra.Command{
		Use:          "read_warc_splits",
		Short:        "Command line tool to list and read WARC archives as splits",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSliceVarP(&configFiles, "config-file", "f", nil,
		"YAML configuration files, later files override earlier ones")
	root.SetOut(out)
	root.AddCommand(
		newSplitsCmd(&configFiles),
		newReadCmd(&configFiles),
		newCompletedCmd(&configFiles),
	)
	return root
}

func newSplitsCmd(configFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:     "splits PATH...",
		Short:   "List the whole-file splits of archive files and directories",
		Example: `./read_warc_splits splits -f config.yml /data/crawl`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := newEnvironment(*configFiles)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, env.Close())
			}()

			splits, err := split.ListSplits(env.fs, args...)
			if err != nil {
				return err
			}
			var total int64
			for _, s := range splits {
				// Use fmt so splits go to stdout rather than to the logger.
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", s)
				total += s.Length
			}
			env.logger.Info("listed splits",
				zap.Int("splits", len(splits)),
				zap.Int64("bytes", total),
				zap.String("size", datasize.ByteSize(total).HR()))
			return nil
		},
	}
}

func newReadCmd(configFiles *[]string) *cobra.Command {
	var (
		concurrency  int
		printContent bool
		profileMode  string
		profileDir   string
	)
	cmd := &cobra.Command{
		Use:   "read PATH...",
		Short: "Read every record of the splits of archive files and directories",
		Long: `
	Lists one split per archive file, reads the splits in parallel and prints
	one line per record with its location, identity and the xxhash64 of its
	content. Failed splits are retried from their first record, so records
	may be printed more than once.
`,
		Example: `./read_warc_splits read -f config.yml --concurrency 4 /data/crawl`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			prof, err := startProfile(profileMode, profileDir)
			if err != nil {
				return err
			}
			defer prof.Stop()

			env, err := newEnvironment(*configFiles)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, env.Close())
			}()

			splits, err := split.ListSplits(env.fs, args...)
			if err != nil {
				return err
			}

			runnerCfg := env.cfg.Runner
			if concurrency > 0 {
				runnerCfg.Concurrency = concurrency
			}
			readerOpts := env.cfg.Reader.NewOptions(env.iopts)
			runnerOpts := runnerCfg.NewOptions(env.iopts, readerOpts)
			if runnerCfg.Ledger != "" {
				l, openErr := ledger.Open(runnerCfg.Ledger, env.iopts)
				if openErr != nil {
					return openErr
				}
				defer func() {
					err = multierr.Append(err, l.Close())
				}()
				runnerOpts = runnerOpts.SetLedger(l)
			}
			r, err := runner.NewRunner(env.fs, runnerOpts)
			if err != nil {
				return err
			}

			p := &recordPrinter{out: cmd.OutOrStdout(), content: printContent}
			report, err := r.Run(context.Background(), splits, p.print)
			fmt.Fprintf(cmd.OutOrStdout(), "read %d records from %d splits, %d failed, %d skipped\n",
				report.Records(), len(report.Splits), len(report.Failed()), report.Skipped())
			return err
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0,
		"Number of splits read at once, overrides the configuration")
	cmd.Flags().BoolVar(&printContent, "content", false,
		"Print record content after each record")
	cmd.Flags().StringVar(&profileMode, "profile", profileNone,
		"Profile the read, either cpu or mem")
	cmd.Flags().StringVar(&profileDir, "profile-dir", "",
		"Directory profiles are written to, defaults to a temporary directory")
	return cmd
}

func newCompletedCmd(configFiles *[]string) *cobra.Command {
	return &cobra.Command{
		Use:     "completed",
		Short:   "List the splits recorded as completed in the ledger",
		Example: `./read_warc_splits completed -f config.yml`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			env, err := newEnvironment(*configFiles)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, env.Close())
			}()

			if env.cfg.Runner.Ledger == "" {
				return errNoLedger
			}
			l, err := ledger.Open(env.cfg.Runner.Ledger, env.iopts)
			if err != nil {
				return err
			}
			defer func() {
				err = multierr.Append(err, l.Close())
			}()

			completed, err := l.List()
			if err != nil {
				return err
			}
			for _, c := range completed {
				fmt.Fprintf(cmd.OutOrStdout(), "{split: %s, records: %d, attempts: %d, completedAt: %s}\n",
					c.Split(), c.Records, c.Attempts, c.CompletedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}

type recordPrinter struct {
	sync.Mutex
	out     io.Writer
	content bool
}

func (p *recordPrinter) print(s split.Split, attempt int, _ split.Key, value *split.Value) error {
	rec, err := value.Detach()
	if err != nil {
		return err
	}

	p.Lock()
	defer p.Unlock()
	_, err = fmt.Fprintf(p.out,
		"{path: %s, attempt: %d, offset: %d, length: %d, type: %s, id: %s, uri: %s, checksum: %016x}\n",
		s.Path, attempt, rec.Offset, rec.Length, rec.Header.Get(warc.HeaderType),
		rec.Header.Get(warc.HeaderRecordID), rec.Header.Get(warc.HeaderTargetURI), rec.Checksum)
	if err != nil {
		return err
	}
	if p.content {
		if _, err := p.out.Write(append(rec.Content, '\n')); err != nil {
			return err
		}
	}
	return nil
}

type environment struct {
	cfg    Configuration
	logger *zap.Logger
	iopts  instrument.Options
	fs     split.FileSystem
	closer io.Closer
}

func newEnvironment(configFiles []string) (*environment, error) {
	var cfg Configuration
	if len(configFiles) > 0 {
		if err := config.LoadFiles(&cfg, configFiles...); err != nil {
			return nil, fmt.Errorf("unable to load config: %v", err)
		}
	}

	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return nil, fmt.Errorf("unable to create logger: %v", err)
	}

	scope, closer := cfg.Metrics.NewRootScope(logger)
	return &environment{
		cfg:    cfg,
		logger: logger,
		iopts:  cfg.Metrics.NewOptions(logger, scope),
		fs:     cfg.Reader.NewFileSystem(),
		closer: closer,
	}, nil
}

func (e *environment) Close() error {
	err := e.closer.Close()
	// Sync fails on some terminals.
	_ = e.logger.Sync()
	return err
}
