package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
	"github.com/mittenshop/fulfillment/internal/infrastructure/export"
)

// ManifestStore persists a named manifest file. Implementations live in
// infrastructure (local directory, S3).
type ManifestStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

// LabelSink receives domestic label records for rendering by an external
// collaborator.
type LabelSink interface {
	Submit(ctx context.Context, rec manifest.LabelRecord) error
}

// Manifest file names, keyed by run ID on save.
const (
	internationalManifestName = "manifest_international.csv"
	usManifestName            = "manifest_us.csv"
)

// DistributeResult reports where each artifact ended up.
type DistributeResult struct {
	InternationalLocation string `json:"international_location,omitempty"`
	USLocation            string `json:"us_location,omitempty"`
	LabelsSubmitted       int    `json:"labels_submitted"`
}

// Distribute hands a finished run to its collaborators: encodes and persists
// the non-empty manifests and submits the domestic label records. The result
// itself is never mutated; a collaborator failure aborts distribution and is
// returned to the caller.
func (s *Service) Distribute(ctx context.Context, res *Result, store ManifestStore, sink LabelSink) (*DistributeResult, error) {
	writer := export.NewManifestWriter()
	out := &DistributeResult{}

	if store != nil {
		loc, err := s.saveManifest(ctx, writer, store, res, res.Output.International, internationalManifestName)
		if err != nil {
			return nil, err
		}
		out.InternationalLocation = loc

		loc, err = s.saveManifest(ctx, writer, store, res, res.Output.US, usManifestName)
		if err != nil {
			return nil, err
		}
		out.USLocation = loc
	}

	if sink != nil {
		for _, rec := range res.Output.Labels {
			if err := sink.Submit(ctx, rec); err != nil {
				return nil, fmt.Errorf("submitting label for order %s: %w", rec.OrderNumber, err)
			}
			out.LabelsSubmitted++
		}
	}

	return out, nil
}

func (s *Service) saveManifest(ctx context.Context, writer *export.ManifestWriter, store ManifestStore, res *Result, lines []manifest.Line, name string) (string, error) {
	if len(lines) == 0 {
		return "", nil
	}
	if audit := writer.Audit(lines); len(audit) > 0 {
		for _, w := range audit {
			s.log.Warn("manifest line fails carrier constraint", zap.String("manifest", name), zap.String("detail", w.Error()))
		}
	}
	data, err := writer.Encode(lines)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", name, err)
	}
	loc, err := store.Save(ctx, res.RunID.String()+"/"+name, data)
	if err != nil {
		return "", fmt.Errorf("persisting %s: %w", name, err)
	}
	return loc, nil
}
