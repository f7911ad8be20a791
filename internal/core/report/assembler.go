package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/yomijipsa-art/concrete-ai/constants"
	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/imaging"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm"
	"github.com/yomijipsa-art/concrete-ai/internal/layout"
)

// Photo is one uploaded image. Order in the slice given to Assemble is the
// slot order.
type Photo struct {
	Filename string
	Data     []byte
}

// Result is a finished report.
type Result struct {
	Data      []byte
	Filename  string
	Fields    map[constants.FieldKey]string
	Missing   []constants.FieldKey
	Unmatched []string
}

// Assembler runs the whole photo to workbook flow. It holds no per-call state,
// so one instance can serve concurrent calls.
type Assembler struct {
	logger       *slog.Logger
	extractor    llm.VisionExtractor
	normalizer   *imaging.Normalizer
	schema       *layout.Schema
	templatePath string
	scratchBase  string
}

func NewAssembler(
	logger *slog.Logger,
	extractor llm.VisionExtractor,
	normalizer *imaging.Normalizer,
	schema *layout.Schema,
	templatePath string,
	scratchBase string,
) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if normalizer == nil {
		normalizer = imaging.NewNormalizer(imaging.WithLogger(logger))
	}
	if schema == nil {
		schema = layout.Default()
	}
	return &Assembler{
		logger:       logger,
		extractor:    extractor,
		normalizer:   normalizer,
		schema:       schema,
		templatePath: templatePath,
		scratchBase:  scratchBase,
	}
}

// Assemble validates the photos and template, normalizes both photos, asks
// the model about photo 2, fills the template and returns the serialized workbook. Only the returned
// Result outlives the call.
func (a *Assembler) Assemble(ctx context.Context, photos []Photo) (*Result, error) {
	start := time.Now()
	log := common.LoggerWith(ctx, a.logger)

	if err := a.validate(photos); err != nil {
		log.Warn("report.assemble.rejected", "error", err)
		return nil, err
	}
	log.Info("report.assemble.start",
		"photo1", photos[0].Filename,
		"photo2", photos[1].Filename,
		"template", a.templatePath,
	)

	scratch, err := imaging.NewScratch(a.scratchBase)
	if err != nil {
		return nil, common.NewProcessingError("prepare scratch space", err)
	}
	defer func() {
		if cerr := scratch.Close(); cerr != nil {
			log.Warn("report.scratch.cleanup_failed", "dir", scratch.Dir(), "error", cerr)
		}
	}()

	imgs, err := a.normalizeAll(ctx, scratch, photos)
	if err != nil {
		return nil, err
	}

	// The model sees the normalized JPEG, never the raw upload: providers
	// reject BMP, TIFF and HEIC.
	analyzed := imgs[constants.AnalyzedSlot-1]
	jpegData, err := os.ReadFile(analyzed.Path)
	if err != nil {
		return nil, common.NewProcessingError("read normalized photo", err)
	}
	reply, err := a.extractor.ExtractText(ctx, llm.VisionRequest{
		Prompt:   llm.BuildFieldPrompt(a.schema.Fields()),
		Image:    jpegData,
		MimeType: constants.JPEGMimeType,
		Filename: photos[constants.AnalyzedSlot-1].Filename,
	})
	if err != nil {
		log.Error("report.extract.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.NewProcessingError("vision model call failed", err)
	}

	fields := llm.ParseFields(reply)
	unmatched := llm.UnmatchedLabels(fields, a.schema.Fields())
	if len(unmatched) > 0 {
		log.Info("report.extract.unmatched_labels", "labels", unmatched)
	}
	values := Resolve(fields, a.schema)
	missing := Missing(fields, a.schema)

	wb, err := a.openTemplate()
	if err != nil {
		return nil, err
	}
	defer func() { _ = wb.Close() }()

	textSheet, imageSheet, err := sheetNames(wb, a.schema)
	if err != nil {
		return nil, common.NewUserInputError("template does not have the required sheets", err)
	}

	if err := Populate(wb, textSheet, a.schema, values); err != nil {
		return nil, common.NewProcessingError("fill report fields", err)
	}

	for i, slot := range constants.PhotoSlots {
		addr, _ := a.schema.ImageCell(slot)
		if err := EmbedImage(wb, imageSheet, addr.Cell, imgs[i], slot.Label()); err != nil {
			return nil, common.NewProcessingError(fmt.Sprintf("embed photo %d", slot), err)
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, common.NewProcessingError("write report", err)
	}

	res := &Result{
		Data:      buf.Bytes(),
		Filename:  Filename(values[constants.PourLocation]),
		Fields:    values,
		Missing:   missing,
		Unmatched: unmatched,
	}
	log.Info("report.assemble.ok",
		"filename", res.Filename,
		"bytes", len(res.Data),
		"missing_fields", len(missing),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// normalizeAll prepares every slot concurrently. Results are indexed by slot
// so embedding order does not depend on which finishes first.
func (a *Assembler) normalizeAll(ctx context.Context, scratch *imaging.Scratch, photos []Photo) ([]*imaging.NormalizedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, common.NewProcessingError("report canceled", err)
	}
	out := make([]*imaging.NormalizedImage, len(constants.PhotoSlots))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, slot := range constants.PhotoSlots {
		eg.Go(func() error {
			img, err := a.normalizer.Normalize(egCtx, scratch, slot, photos[i].Filename, photos[i].Data)
			if err != nil {
				return common.NewProcessingError(fmt.Sprintf("prepare photo %d", slot), err)
			}
			out[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *Assembler) validate(photos []Photo) error {
	if len(photos) != constants.RequiredPhotos {
		return common.NewUserInputError(
			fmt.Sprintf("exactly %d photos are required, got %d", constants.RequiredPhotos, len(photos)), nil)
	}
	for i, p := range photos {
		if len(p.Data) == 0 {
			return common.NewUserInputError(fmt.Sprintf("photo %d is empty", i+1), nil)
		}
	}
	st, err := os.Stat(a.templatePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return common.NewUserInputError("template file not found: "+a.templatePath, err)
	case err != nil:
		return common.NewProcessingError("check template file", err)
	case st.IsDir():
		return common.NewUserInputError("template path is a directory: "+a.templatePath, nil)
	}
	return nil
}

// openTemplate loads a fresh copy of the template for this call.
func (a *Assembler) openTemplate() (*excelize.File, error) {
	wb, err := excelize.OpenFile(a.templatePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, common.NewUserInputError("template file not found: "+a.templatePath, err)
	}
	if err != nil {
		return nil, common.NewProcessingError("open template", err)
	}
	return wb, nil
}
