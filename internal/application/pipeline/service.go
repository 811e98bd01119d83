// Package pipeline orchestrates one conversion run: export intake, order
// reconciliation, classification, and manifest assembly. The run itself is a
// pure function of the input rows; collaborators (storage, label rendering)
// only ever see the finished, immutable result.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mittenshop/fulfillment/internal/domain/manifest"
	"github.com/mittenshop/fulfillment/internal/domain/order"
	"github.com/mittenshop/fulfillment/internal/infrastructure/csvimport"
)

// Result is the immutable outcome of one conversion run.
type Result struct {
	RunID    uuid.UUID
	Output   *manifest.Output
	Report   string
	RowsRead int
	Merged   int

	// Warnings are the non-fatal data-quality conditions hit during the run.
	Warnings          []csvimport.RowError
	WarningsTruncated bool
	TotalWarnings     int
}

// Service runs the conversion pipeline.
type Service struct {
	log *zap.Logger
}

// NewService creates a pipeline service.
func NewService(log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log}
}

// Convert reads a storefront order export and produces manifests, label
// records, and the summary. Structural problems (missing columns, bad
// encoding, empty file) return an error and no partial output; data-quality
// problems are collected as warnings on the result.
//
// Running Convert twice on identical input yields identical results.
func (s *Service) Convert(ctx context.Context, export io.Reader) (*Result, error) {
	parser, err := csvimport.NewParser(export)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders(order.RequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf("export is missing required columns: %v", missing)
	}

	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrNoDataRows
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	warnings := csvimport.NewErrorCollection(0)
	raw := make([]order.RawRow, 0, len(rows))
	for _, row := range rows {
		raw = append(raw, s.rawRow(row, warnings))
	}

	merged, drops := order.Merge(raw)
	for _, d := range drops {
		code := csvimport.WarnMissingIdentity
		if d.Reason == order.DropReasonUnpaid {
			code = csvimport.WarnEmptyPaymentStatus
		}
		warnings.Addf(d.LineNumber, "", code, "order %q dropped: %s", d.OrderNumber, d.Reason)
	}

	classified := order.ClassifyAll(merged)
	for _, c := range classified {
		if c.Product.SizeClass == order.SizeUnknown {
			warnings.Addf(c.LineNumber, order.ColLineitemName, csvimport.WarnUnknownSize,
				"no recognizable size in %q", c.Description)
		}
		if c.Product.TokenMismatch {
			warnings.Addf(c.LineNumber, order.ColLineitemName, csvimport.WarnSizeTokenMismatch,
				"size letter %q disagrees with range-derived class %s", c.Product.SizeToken, c.Product.SizeClass)
		}
		if c.CountryCode == "" {
			warnings.Addf(c.LineNumber, order.ColShippingCountry, csvimport.WarnMissingCountry,
				"order %q has no shipping country, excluded", c.OrderNumber)
		}
	}

	output, err := manifest.Build(classified)
	if err != nil {
		return nil, fmt.Errorf("building manifests: %w", err)
	}

	res := &Result{
		RunID:             uuid.New(),
		Output:            output,
		Report:            manifest.RenderReport(output.Summary),
		RowsRead:          len(rows),
		Merged:            len(merged),
		Warnings:          warnings.Errors(),
		WarningsTruncated: warnings.IsTruncated(),
		TotalWarnings:     warnings.TotalCount(),
	}

	s.log.Info("conversion run complete",
		zap.String("run_id", res.RunID.String()),
		zap.Int("rows_read", res.RowsRead),
		zap.Int("orders", res.Merged),
		zap.Int("international", len(output.International)),
		zap.Int("us", len(output.US)),
		zap.Int("labels", len(output.Labels)),
		zap.Int("excluded", output.Excluded),
		zap.Int("warnings", res.TotalWarnings),
	)

	return res, nil
}

// rawRow maps an export row onto the domain record, collecting warnings for
// unparseable numeric fields.
func (s *Service) rawRow(row *csvimport.Row, warnings *csvimport.ErrorCollection) order.RawRow {
	quantity := 1
	if q := row.Get(order.ColLineitemQty); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			warnings.Addf(row.LineNumber, order.ColLineitemQty, csvimport.WarnInvalidQuantity,
				"invalid quantity %q, assuming 1", q)
		} else {
			quantity = n
		}
	}

	return order.RawRow{
		LineNumber:      row.LineNumber,
		OrderNumber:     order.NormalizeOrderNumber(row.Get(order.ColName)),
		RecordID:        row.Get(order.ColID),
		FinancialStatus: row.Get(order.ColFinancialStatus),
		CustomerName:    row.Get(order.ColShippingName),
		Address1:        row.Get(order.ColShippingAddress1),
		Address2:        row.Get(order.ColShippingAddress2),
		City:            row.Get(order.ColShippingCity),
		Province:        row.Get(order.ColShippingProvince),
		ProvinceName:    row.Get(order.ColShippingProvName),
		PostalCode:      row.Get(order.ColShippingZip),
		Phone:           row.Get(order.ColShippingPhone),
		CountryCode:     row.Get(order.ColShippingCountry),
		Description:     row.Get(order.ColLineitemName),
		Quantity:        quantity,
		Price:           s.amount(row, order.ColLineitemPrice, warnings),
		Discount:        s.amount(row, order.ColLineitemDiscount, warnings),
	}
}

func (s *Service) amount(row *csvimport.Row, column string, warnings *csvimport.ErrorCollection) decimal.Decimal {
	v := row.Get(column)
	if v == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		warnings.Addf(row.LineNumber, column, csvimport.WarnInvalidAmount,
			"invalid amount %q, assuming 0", v)
		return decimal.Zero
	}
	return d
}
