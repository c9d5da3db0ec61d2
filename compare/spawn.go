package compare

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rmera/commpare/engine"
	"github.com/rmera/commpare/logger"
)

type options struct {
	round   int
	rounded bool
	cfg     *engine.Config
	records []engine.Record
}

// Option modifies the behavior of SpawnEngineSimulations.
type Option func(*options)

// WithRoundDecimal rounds the coordinates of the structure to n decimal
// places (in A) before giving it to any engine. The structure given
// by the caller is not modified.
func WithRoundDecimal(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.round = n
			o.rounded = true
		}
	}
}

// WithConfig sets the configuration used by all the engines.
func WithConfig(cfg *engine.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithEngines replaces the records used to build the engine handles.
func WithEngines(records ...engine.Record) Option {
	return func(o *options) {
		o.records = records
	}
}

// SpawnEngineSimulations obtains the energy of st with each of the engines, one
// after the other, and returns the results in a Table. If engines is nil, all
// the engines available are used. Requested engines that are not available
// are skipped with a warning, as are engines that fail to run. Critical errors,
// where an engine's toolchain is found to be missing at run time, stop the
// comparison, and are returned together with the rows obtained until then.
func SpawnEngineSimulations(ctx context.Context, st *engine.Structure, engines []engine.Name, opts ...Option) (*Table, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	o := &options{cfg: engine.DefaultConfig(), records: engine.Records()}
	for _, f := range opts {
		f(o)
	}
	c := *o.cfg
	cfg := &c
	if cfg.Log == nil {
		cfg.Log = logger.Default()
	}
	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	log := cfg.Log.WithField("run", runID)
	recs := make(map[engine.Name]engine.Record, len(o.records))
	detect := engines == nil
	for _, r := range o.records {
		recs[r.Name] = r
		if detect {
			engines = append(engines, r.Name)
		}
	}
	if st == nil {
		return nil, fmt.Errorf("SpawnEngineSimulations: nil structure")
	}
	if o.rounded {
		st = st.Rounded(o.round)
	}
	table := &Table{RunID: runID}
	for _, name := range engines {
		if err := ctx.Err(); err != nil {
			return table, err
		}
		rec, ok := recs[name]
		if !ok {
			log.Warnf("engine %s unknown, skipping", name)
			continue
		}
		h := rec.New(cfg)
		if h == nil || !h.Available() {
			if detect {
				log.Debugf("engine %s not available", name)
			} else {
				log.Warnf("engine %s requested but not available, skipping", name)
			}
			if h != nil {
				h.Close()
			}
			continue
		}
		logger.Progressf("Running %s", name)
		rep, err := runEngine(ctx, h, st, cfg, runID, log.WithPrefix(string(name)))
		if err != nil {
			if engine.IsCritical(err) {
				return table, err
			}
			log.Warnf("%s: %v", name, err)
			continue
		}
		if rep == nil {
			log.Warnf("%s failed, no energies obtained", name)
			continue
		}
		table.Reports = append(table.Reports, rep)
		logger.Successf("%s done", name)
	}
	return table, nil
}

// runEngine takes the handle through a whole run in a new sandbox. It returns
// a nil report if the engine fails. The handle is closed on every path, before
// the sandbox it may still be using is archived, if the configuration requires
// so, and removed.
func runEngine(ctx context.Context, h engine.Handle, st *engine.Structure, cfg *engine.Config, runID string, log logger.Logger) (rep *engine.Report, err error) {
	closeHandle := func() {
		if cerr := h.Close(); cerr != nil {
			log.Debugf("closing handle: %v", cerr)
		}
	}
	sb, err := engine.NewSandbox(cfg.TempDir, string(h.Name()))
	if err != nil {
		closeHandle()
		return nil, fmt.Errorf("can't create sandbox: %w", err)
	}
	defer func() {
		closeHandle()
		if cfg.KeepArtifacts != "" {
			p, aerr := engine.ArchiveSandbox(sb, cfg.KeepArtifacts, fmt.Sprintf("%s-%s", h.Name(), runID))
			if aerr != nil {
				log.Warnf("can't archive the run: %v", aerr)
			} else {
				log.Infof("run files archived in %s", p)
			}
		}
		sb.Close()
	}()
	log.Debugf("sandbox %s", sb.Dir)
	if err := h.BuildInput(sb, st); err != nil {
		return nil, err
	}
	ok, err := h.Run(ctx, sb)
	if err != nil || !ok {
		return nil, err
	}
	return h.Energy(ctx, sb)
}
