package app

import (
	"context"
	"time"

	"goassoc/domain/assoc"
	"goassoc/domain/core"
	"goassoc/internal"
	"goassoc/internal/analysis"
	"goassoc/internal/config"
	"goassoc/internal/errors"
	"goassoc/ports"
)

// AnalysisService runs the full association pipeline: matrix loading,
// pairwise testing, correction, network, patterns, bootstrap, and report
// rendering.
type AnalysisService struct {
	matrixSource ports.MatrixSourcePort
	reportSink   ports.ReportSinkPort
	cfg          *config.Config
	base         *internal.Logger
	log          *internal.Logger
}

// AnalysisRequest defines the inputs for one end-to-end run
type AnalysisRequest struct {
	MatrixPath    string `json:"matrix_path"`
	Transpose     bool   `json:"transpose"`
	OutputDir     string `json:"output_dir,omitempty"` // Defaults to the configured output dir
	WriteHTML     bool   `json:"write_html"`
	WriteWorkbook bool   `json:"write_workbook"`
}

// AnalysisResult contains the complete output of an analysis run
type AnalysisResult struct {
	RunID        core.RunID          `json:"run_id"`
	Bundle       *assoc.ResultBundle `json:"bundle"`
	HTMLPath     string              `json:"html_path,omitempty"`
	WorkbookPath string              `json:"workbook_path,omitempty"`
	Fingerprint  core.BundleHash     `json:"fingerprint"`
	RuntimeMs    int64               `json:"runtime_ms"`
	Success      bool                `json:"success"`
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(matrixSource ports.MatrixSourcePort, reportSink ports.ReportSinkPort, cfg *config.Config, logger *internal.Logger) (*AnalysisService, error) {
	if matrixSource == nil {
		return nil, errors.InvalidInput("matrix source is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &AnalysisService{
		matrixSource: matrixSource,
		reportSink:   reportSink,
		cfg:          cfg,
		base:         logger,
		log:          logger.Component("AnalysisService"),
	}, nil
}

// RunAnalysis loads the matrix, runs the engine, and renders the requested
// reports. A failed report render never loses the analysis: the failure is
// recorded as a bundle warning and the result still carries the bundle.
func (s *AnalysisService) RunAnalysis(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	startTime := time.Now()

	if req.MatrixPath == "" {
		return nil, errors.InvalidInput("matrix path is required")
	}
	if (req.WriteHTML || req.WriteWorkbook) && s.reportSink == nil {
		return nil, errors.InvalidInput("report sink is required to write reports")
	}

	matrix, err := s.matrixSource.LoadMatrix(ctx, ports.MatrixLoadRequest{
		Path:      req.MatrixPath,
		Transpose: req.Transpose,
	})
	if err != nil {
		return nil, errors.Wrap(err, "loading matrix failed")
	}
	s.log.Info("Matrix loaded: %d strains, %d features", matrix.StrainCount(), matrix.FeatureCount())

	engine, err := analysis.NewEngine(s.cfg, s.base)
	if err != nil {
		return nil, errors.Wrap(err, "engine construction failed")
	}
	bundle, err := engine.Run(ctx, matrix)
	if err != nil {
		return nil, err
	}

	result := &AnalysisResult{
		RunID:   bundle.RunID,
		Bundle:  bundle,
		Success: true,
	}
	if bundle.Manifest != nil {
		result.Fingerprint = bundle.Manifest.Fingerprint
	}

	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = s.cfg.Paths.OutputDir
	}
	if req.WriteHTML {
		path, err := s.reportSink.WriteHTML(ctx, bundle, outputDir)
		if err != nil {
			bundle.AddWarning(assoc.Warning{
				Component: "report",
				Code:      assoc.WarningComponentFailed,
				Message:   "HTML report failed: " + err.Error(),
			})
			s.log.Warn("HTML report failed: %v", err)
		} else {
			result.HTMLPath = path
		}
	}
	if req.WriteWorkbook {
		path, err := s.reportSink.WriteWorkbook(ctx, bundle, outputDir)
		if err != nil {
			bundle.AddWarning(assoc.Warning{
				Component: "report",
				Code:      assoc.WarningComponentFailed,
				Message:   "workbook failed: " + err.Error(),
			})
			s.log.Warn("Workbook failed: %v", err)
		} else {
			result.WorkbookPath = path
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	s.log.Info("Analysis complete in %.2fms (run %s)",
		float64(time.Since(startTime).Nanoseconds())/1e6, bundle.RunID)
	return result, nil
}
