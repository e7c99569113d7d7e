package staging

import (
	"context"

	"github.com/awantoch/cvdfunctions/blob"
	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/telemetry"
	"github.com/awantoch/cvdfunctions/utils"
)

// Stage builds a Stager from config and runs it. If the source itself cannot
// be opened every model is reported as failed; the caller still gets a Report.
func Stage(ctx context.Context, cfg config.StagingConfig) Report {
	models := cfg.Models
	if len(models) == 0 {
		models = constants.ModelFiles
	}
	srcCfg := blob.ParseSource(cfg.Source, cfg.Region)
	src, err := blob.NewModelSource(ctx, &srcCfg)
	if err != nil {
		var report Report
		for _, name := range models {
			res := failed(ModelFile{Name: name, Source: cfg.Source}, err)
			telemetry.RecordStaging(string(res.Outcome))
			report.Results = append(report.Results, res)
		}
		summarize(report)
		return report
	}
	utils.Debug("staging %d model files from %s into %s", len(models), cfg.Source, cfg.Dest)
	return NewStager(src, cfg.Dest, models).Run(ctx)
}
