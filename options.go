package lyra

import (
	"github.com/ColbyCorcoran/Lyra-sub006/batch"
	"github.com/ColbyCorcoran/Lyra-sub006/layout"
	"github.com/ColbyCorcoran/Lyra-sub006/quality"
)

// scanOptions holds configuration for the scanning pipeline.
type scanOptions struct {
	enhance         bool
	enhanceConfig   quality.EnhanceConfig
	analyzerConfig  layout.AnalyzerConfig
	schedulerConfig batch.SchedulerConfig
}

// defaultScanOptions returns the default pipeline options.
func defaultScanOptions() scanOptions {
	return scanOptions{
		enhance:         true,
		enhanceConfig:   quality.DefaultEnhanceConfig(),
		analyzerConfig:  layout.DefaultAnalyzerConfig(),
		schedulerConfig: batch.DefaultSchedulerConfig(),
	}
}

// SkipEnhancement disables the quality enhancement stage; images go straight
// to recognition.
func (p *Pipeline) SkipEnhancement() *Pipeline {
	p.options.enhance = false
	return p
}

// EnhanceConfig replaces the enhancement stage's configuration.
func (p *Pipeline) EnhanceConfig(config quality.EnhanceConfig) *Pipeline {
	p.options.enhanceConfig = config
	return p
}

// AnalyzerConfig replaces the layout analysis configuration.
func (p *Pipeline) AnalyzerConfig(config layout.AnalyzerConfig) *Pipeline {
	p.options.analyzerConfig = config
	return p
}

// SchedulerConfig replaces the batch scheduler configuration used by
// AnalyzeBatch.
func (p *Pipeline) SchedulerConfig(config batch.SchedulerConfig) *Pipeline {
	p.options.schedulerConfig = config
	return p
}
