package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/DossierFlow/internal/config"
	"github.com/SeakMengs/DossierFlow/internal/model"
	"github.com/SeakMengs/DossierFlow/internal/repository"
	"github.com/SeakMengs/DossierFlow/internal/util"
	"github.com/SeakMengs/DossierFlow/pkg/dossier"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var ErrTooManyRows = errors.New("export exceeds the configured row limit")

// Export is one rendered spreadsheet of a procedure's dossiers.
type Export struct {
	FileName    string
	ContentType string
	Rows        int
	Body        []byte
	// ArchivedAs is the object key of the archived copy, if any.
	ArchivedAs string
}

type Exporter struct {
	repo   *repository.Repository
	s3     *minio.Client
	bucket string
	cfg    config.ExportConfig
	logger *zap.SugaredLogger
	now    func() time.Time
}

func New(repo *repository.Repository, s3 *minio.Client, bucket string, cfg config.ExportConfig, logger *zap.SugaredLogger) *Exporter {
	if logger == nil {
		// For unit test
		logger = util.NewTestLogger()
	}
	return &Exporter{repo: repo, s3: s3, bucket: bucket, cfg: cfg, logger: logger, now: time.Now}
}

// Table flattens every non draft dossier of the procedure against its
// ordered field list. The row limit is checked on a count before any
// dossier is loaded.
func (e *Exporter) Table(ctx context.Context, procedure *model.Procedure) (dossier.Table, error) {
	if e.cfg.MaxRows > 0 {
		total, err := e.repo.Procedure.TotalDossier(ctx, nil, procedure.ID)
		if err != nil {
			return dossier.Table{}, err
		}
		if total > int64(e.cfg.MaxRows) {
			return dossier.Table{}, fmt.Errorf("%d dossiers, limit %d: %w", total, e.cfg.MaxRows, ErrTooManyRows)
		}
	}

	dossiers, err := e.repo.Dossier.ListForExport(ctx, nil, procedure.ID)
	if err != nil {
		return dossier.Table{}, err
	}

	views := make([]dossier.Dossier, 0, len(dossiers))
	for _, d := range dossiers {
		views = append(views, d.ToDossier())
	}
	return dossier.BuildTable(dossier.OrderedFields(procedure.ToProcedure()), views), nil
}

// Export renders the procedure's dossiers in format and, when enabled,
// stores a copy in the bucket. A failed archive is logged only.
func (e *Exporter) Export(ctx context.Context, procedure *model.Procedure, format dossier.Format) (*Export, error) {
	table, err := e.Table(ctx, procedure)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := table.Write(&buf, format); err != nil {
		return nil, fmt.Errorf("failed to write %s export: %w", format, err)
	}

	name := procedure.ID
	if procedure.Path != nil && *procedure.Path != "" {
		name = *procedure.Path
	}
	fileName, err := util.ExportFileName(name, format.Extension(), e.now())
	if err != nil {
		return nil, err
	}

	out := &Export{
		FileName:    fileName,
		ContentType: format.ContentType(),
		Rows:        len(table.Rows),
		Body:        buf.Bytes(),
	}

	if e.cfg.ArchiveToS3 && e.s3 != nil {
		info, err := util.UploadFileToS3(ctx, bytes.NewReader(out.Body), fileName, int64(len(out.Body)), out.ContentType, &util.FileUploadOptions{
			DirectoryPath: util.GetExportDirectoryPath(procedure.ID),
			Bucket:        e.bucket,
			S3:            e.s3,
		})
		if err != nil {
			e.logger.Errorw("Failed to archive export", "error", err, "procedureId", procedure.ID, "fileName", fileName)
		} else {
			out.ArchivedAs = info.Key
		}
	}

	e.logger.Infow("Exported dossiers", "procedureId", procedure.ID, "format", format, "rows", out.Rows)
	return out, nil
}
