// Package pipeline orchestrates a reconciliation run: per-dataset
// scheme normalization, remapping, classification and correction
// passes, then the final merge. The pipeline is single-threaded and
// batch; every stage fully materializes its output back to the
// dataset file before the next stage reads it, matching the
// file-per-stage durability of the original workflow.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/lvonguyen/tagforge/internal/alias"
	"github.com/lvonguyen/tagforge/internal/annotation"
	"github.com/lvonguyen/tagforge/internal/classify"
	"github.com/lvonguyen/tagforge/internal/config"
	"github.com/lvonguyen/tagforge/internal/consistency"
	"github.com/lvonguyen/tagforge/internal/reftable"
	"github.com/lvonguyen/tagforge/internal/remap"
)

// Pipeline runs the reconciliation stages over the input datasets.
type Pipeline struct {
	cfg      *config.Config
	scheme   annotation.Scheme
	resolver alias.EntityResolver
	osTable  *reftable.Lookup
	encTable *reftable.Lookup
	logger   *zap.Logger
}

// New assembles a pipeline. Either lookup may be nil, which degrades
// the corresponding discovery stage to always-miss.
func New(cfg *config.Config, scheme annotation.Scheme, resolver alias.EntityResolver,
	osTable, encTable *reftable.Lookup, logger *zap.Logger) *Pipeline {

	return &Pipeline{
		cfg:      cfg,
		scheme:   scheme,
		resolver: resolver,
		osTable:  osTable,
		encTable: encTable,
		logger:   logger,
	}
}

// Run processes each input dataset in place through every configured
// stage, then concatenates them into mergedPath.
func (p *Pipeline) Run(ctx context.Context, inputs []string, mergedPath string) error {
	for i, path := range inputs {
		if err := p.processDataset(ctx, i, path); err != nil {
			return fmt.Errorf("dataset %d (%s): %w", i+1, path, err)
		}
	}
	return p.merge(inputs, mergedPath)
}

// processDataset applies the stage sequence for one dataset. Stage
// order follows the original workflow; a nil stage config skips the
// stage.
func (p *Pipeline) processDataset(ctx context.Context, index int, path string) error {
	ds := p.cfg.Dataset(index)
	log := p.logger.With(zap.Int("dataset", index+1), zap.String("path", path))

	if err := p.runStage(log, "scheme", path, func(doc *annotation.Document) {
		detected := annotation.Detect(doc)
		if detected != p.scheme {
			annotation.Convert(doc, p.scheme)
			log.Info("Converted tagging scheme",
				zap.String("from", string(detected)),
				zap.String("to", string(p.scheme)),
			)
		}
	}); err != nil {
		return err
	}

	if ds.OneToOne != nil {
		rules, err := remap.PairRules(ds.OneToOne.Sources, ds.OneToOne.Targets)
		if err != nil {
			// Arity mismatch aborts only this stage, never the run.
			log.Error("Skipping one-to-one remap", zap.Error(err))
		} else if err := p.runStage(log, "one_to_one", path, func(doc *annotation.Document) {
			remap.Apply(doc, rules)
		}); err != nil {
			return err
		}
	}

	if ds.ManyToOne != nil {
		rules, err := remap.GroupRules(ds.ManyToOne.Sources, ds.ManyToOne.Targets)
		if err != nil {
			log.Error("Skipping many-to-one remap", zap.Error(err))
		} else if err := p.runStage(log, "many_to_one", path, func(doc *annotation.Document) {
			remap.Apply(doc, rules)
		}); err != nil {
			return err
		}
	}

	if ds.Files != nil && ds.Files.Source != "" {
		if err := p.runStage(log, "files", path, func(doc *annotation.Document) {
			classify.ClassifyFiles(doc, ds.Files.Source, ds.Files.Default)
		}); err != nil {
			return err
		}
	}

	if ds.Exploits != nil && ds.Exploits.Source != "" {
		if err := p.runStage(log, "exploits", path, func(doc *annotation.Document) {
			classify.SplitExploits(doc, ds.Exploits.Source, ds.Exploits.Name, ds.Exploits.ID)
		}); err != nil {
			return err
		}
	}

	for _, relabel := range []struct {
		name string
		cfg  *config.RelabelConfig
	}{
		{"software", ds.Software},
		{"groups", ds.Groups},
	} {
		if relabel.cfg == nil || len(relabel.cfg.Sources) == 0 {
			continue
		}
		rc := relabel.cfg
		if err := p.runStage(log, relabel.name, path, func(doc *annotation.Document) {
			alias.RelabelSpans(ctx, doc, rc.Sources, p.resolver, rc.Targets, rc.Default)
		}); err != nil {
			return err
		}
	}

	if ds.IOC != nil && ds.IOC.Enabled() {
		if err := p.runStage(log, "ioc", path, func(doc *annotation.Document) {
			classify.DiscoverIOCs(doc, p.scheme, *ds.IOC)
		}); err != nil {
			return err
		}
	}

	if ds.Encryption != "" {
		if err := p.runStage(log, "encryption", path, func(doc *annotation.Document) {
			classify.DiscoverEncryption(doc, p.scheme, ds.Encryption, p.encTable)
		}); err != nil {
			return err
		}
	}

	if ds.OS != "" {
		if err := p.runStage(log, "os", path, func(doc *annotation.Document) {
			classify.DiscoverOS(doc, p.scheme, ds.OS, p.osTable)
		}); err != nil {
			return err
		}
	}

	if ds.FixMislabeling {
		if err := p.runStage(log, "consistency", path, consistency.Correct); err != nil {
			return err
		}
	}

	return nil
}

// runStage reads the dataset file, applies one transformation, and
// writes it back. The write completes before the next stage starts;
// no state is carried between stages besides the file contents.
func (p *Pipeline) runStage(log *zap.Logger, name, path string, fn func(*annotation.Document)) error {
	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("stage %s: reading dataset: %w", name, err)
	}

	doc := annotation.Parse(string(text))
	fn(doc)

	if err := os.WriteFile(path, []byte(doc.Render()), 0o644); err != nil {
		return fmt.Errorf("stage %s: writing dataset: %w", name, err)
	}

	log.Info("Stage completed", zap.String("stage", name), zap.Int("lines", len(doc.Lines)))
	return nil
}

// merge concatenates the processed datasets into the merged output.
func (p *Pipeline) merge(inputs []string, mergedPath string) error {
	var merged []byte
	for i, path := range inputs {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("merging %s: %w", path, err)
		}
		if i > 0 {
			merged = append(merged, '\n')
		}
		merged = append(merged, content...)
	}

	if err := os.WriteFile(mergedPath, merged, 0o644); err != nil {
		return fmt.Errorf("writing merged output: %w", err)
	}

	p.logger.Info("Datasets merged", zap.String("output", mergedPath))
	return nil
}
